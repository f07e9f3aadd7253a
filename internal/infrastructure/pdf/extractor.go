// Package pdf pulls the embedded text layer out of PDF invoices. Scanned
// PDFs without a text layer yield little or no text; callers decide what
// that means.
package pdf

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by New
const (
	BackendFitz = "fitz"
	BackendPure = "pure"
)

// TextExtractor returns the text layer of a PDF document
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// New returns the extractor for backend. maxPages <= 0 reads every page.
func New(backend string, maxPages int) (TextExtractor, error) {
	switch strings.ToLower(backend) {
	case "", BackendFitz:
		return &FitzExtractor{MaxPages: maxPages}, nil
	case BackendPure:
		return &PureExtractor{MaxPages: maxPages}, nil
	default:
		return nil, fmt.Errorf("unknown PDF backend %q (expected %s or %s)", backend, BackendFitz, BackendPure)
	}
}

func pageLimit(total, max int) int {
	if max > 0 && max < total {
		return max
	}
	return total
}
