package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// PureExtractor reads PDFs without cgo. Layout fidelity is lower than
// FitzExtractor, rows are rebuilt from glyph positions.
type PureExtractor struct {
	MaxPages int
}

// ExtractText implements TextExtractor
func (p *PureExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var pages []string
	for n := 1; n <= pageLimit(reader.NumPage(), p.MaxPages); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", n, err)
		}

		var sb strings.Builder
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			sb.WriteString(strings.TrimSpace(strings.Join(words, "")))
			sb.WriteString("\n")
		}
		pages = append(pages, strings.TrimSpace(sb.String()))
	}
	return strings.Join(pages, "\n\n"), nil
}
