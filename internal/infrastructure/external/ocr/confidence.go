package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-](19|20)\d{2}\b|ngày\s*\d{1,2}\s*tháng`)
	reCurr    = regexp.MustCompile(`\bvn[dđ]|đồng|₫`)
	reAmount  = regexp.MustCompile(`\b\d{1,3}(\.\d{3})+(,\d+)?\b`)
	reTaxCode = regexp.MustCompile(`\b\d{10}(-\d{3})?\b`)
	reHeading = regexp.MustCompile(`hóa đơn|hoá đơn|mã số thuế|mst|thuế gtgt`)
)

// heuristicConfidence scores recognized text on the 0-100 scale for engines
// that report no confidence, by looking for the artifacts every Vietnamese
// VAT invoice carries.
func heuristicConfidence(txt string) float64 {
	txtL := strings.ToLower(txt)
	score := 20.0
	if reDate.MatchString(txtL) {
		score += 15
	}
	if reCurr.MatchString(txtL) {
		score += 10
	}
	if reAmount.MatchString(txtL) {
		score += 15
	}
	if reTaxCode.MatchString(txtL) {
		score += 15
	}
	if reHeading.MatchString(txtL) {
		score += 15
	}
	if len(txt) > 200 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
