package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// FitzExtractor reads PDFs with MuPDF
type FitzExtractor struct {
	MaxPages int
}

// ExtractText implements TextExtractor
func (f *FitzExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for n := 0; n < pageLimit(doc.NumPage(), f.MaxPages); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", n+1, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return strings.Join(pages, "\n\n"), nil
}
