package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountNoise = strings.NewReplacer(
		"vnđ", "", "vnd", "", "đồng", "", "dong", "", "đ", "", "₫", "",
		"%", "", " ", "", " ", "", "\t", "",
	)
	amountShape = regexp.MustCompile(`^-?[0-9][0-9.,]*$`)
)

// ParseAmount converts an amount written with Vietnamese punctuation into a
// plain number. "." groups thousands and "," marks decimals, so "1.000.000"
// yields 1000000 and "10,5" yields 10.5. Inputs whose meaning cannot be
// determined return ok=false.
func ParseAmount(s string) (float64, bool) {
	clean := amountNoise.Replace(strings.ToLower(strings.TrimSpace(s)))
	if clean == "" || !amountShape.MatchString(clean) {
		return 0, false
	}

	negative := strings.HasPrefix(clean, "-")
	clean = strings.TrimPrefix(clean, "-")

	canonical, ok := canonicalDecimal(clean)
	if !ok {
		return 0, false
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), true
}

// canonicalDecimal rewrites digits with separators into "1234.56" form.
func canonicalDecimal(s string) (string, bool) {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots == 0 && commas == 0:
		return s, true

	case commas == 0:
		// dots only: always thousands grouping in Vietnamese notation
		if !validGroups(strings.Split(s, ".")) {
			return "", false
		}
		return strings.ReplaceAll(s, ".", ""), true

	case dots == 0:
		if commas == 1 {
			intPart, frac, _ := strings.Cut(s, ",")
			if intPart == "" || frac == "" {
				return "", false
			}
			return intPart + "." + frac, true
		}
		// several commas cannot be decimal marks; accept only clean grouping
		if !validGroups(strings.Split(s, ",")) {
			return "", false
		}
		return strings.ReplaceAll(s, ",", ""), true
	}

	// both separators: the last one is the decimal mark
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	group, mark := ".", ","
	if lastDot > lastComma {
		group, mark = ",", "."
	}
	if strings.Count(s, mark) != 1 {
		return "", false
	}
	intPart, frac, _ := strings.Cut(s, mark)
	if frac == "" || !validGroups(strings.Split(intPart, group)) {
		return "", false
	}
	return strings.ReplaceAll(intPart, group, "") + "." + frac, true
}

// validGroups checks thousands grouping: a 1-3 digit head followed by
// 3-digit groups.
func validGroups(groups []string) bool {
	if len(groups) < 2 {
		return len(groups) == 1 && groups[0] != ""
	}
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
