package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/garyjia/vat-invoice-ocr/pkg/utils"
)

var jsonNull = []byte("null")

// Amount is a nullable monetary or numeric value. It decodes JSON numbers
// as-is and strings written with Vietnamese separators ("1.000.000",
// "10,5"); anything it cannot read confidently decodes to null.
type Amount struct {
	Value float64
	Valid bool
}

// NewAmount returns a valid Amount
func NewAmount(v float64) Amount {
	return Amount{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.FormatFloat(a.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	f, ok, err := decodeNumber(data)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	if ok {
		*a = NewAmount(f)
	}
	return nil
}

// Tax-rate sentinels used by Circular 78 invoices
const (
	VATNotSubject  = -1 // KCT, "không chịu thuế"
	VATNotDeclared = -2 // KKKNT, "không kê khai, tính nộp thuế"
)

var allowedVATRates = map[int]bool{
	0: true, 5: true, 8: true, 10: true,
	VATNotSubject: true, VATNotDeclared: true,
}

// VATRate is a nullable tax rate restricted to {0, 5, 8, 10, -1, -2}.
type VATRate struct {
	Value int
	Valid bool
}

// NewVATRate returns a VATRate, null when rate is not an allowed value
func NewVATRate(rate int) VATRate {
	if !allowedVATRates[rate] {
		return VATRate{}
	}
	return VATRate{Value: rate, Valid: true}
}

// Label renders the rate as printed on invoices: "10%", "KCT", "KKKNT",
// or "" when null.
func (r VATRate) Label() string {
	switch {
	case !r.Valid:
		return ""
	case r.Value == VATNotSubject:
		return "KCT"
	case r.Value == VATNotDeclared:
		return "KKKNT"
	}
	return strconv.Itoa(r.Value) + "%"
}

// MarshalJSON implements json.Marshaler
func (r VATRate) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(r.Value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *VATRate) UnmarshalJSON(data []byte) error {
	*r = VATRate{}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToUpper(utils.StripWhitespace(s)) {
		case "KCT":
			*r = NewVATRate(VATNotSubject)
			return nil
		case "KKKNT", "KKKTNT":
			*r = NewVATRate(VATNotDeclared)
			return nil
		}
	}

	f, ok, err := decodeNumber(data)
	if err != nil {
		return fmt.Errorf("vat_rate: %w", err)
	}
	if ok && f == math.Trunc(f) {
		*r = NewVATRate(int(f))
	}
	return nil
}

// Integer is a nullable whole number such as a line number.
type Integer struct {
	Value int
	Valid bool
}

// NewInteger returns a valid Integer
func NewInteger(v int) Integer {
	return Integer{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler
func (i Integer) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Integer) UnmarshalJSON(data []byte) error {
	*i = Integer{}
	f, ok, err := decodeNumber(data)
	if err != nil {
		return fmt.Errorf("integer: %w", err)
	}
	if ok && f == math.Trunc(f) {
		*i = NewInteger(int(f))
	}
	return nil
}

// decodeNumber reads a JSON number or numeric string. ok is false for null
// and for strings that are not unambiguous amounts.
func decodeNumber(data []byte) (float64, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return 0, false, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false, err
		}
		f, ok := utils.ParseAmount(s)
		return f, ok, nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, false, err
	}
	return f, true, nil
}
