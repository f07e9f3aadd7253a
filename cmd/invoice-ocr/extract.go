package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/garyjia/vat-invoice-ocr/internal/application/service"
	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/export"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

var extractFlags struct {
	file   string
	text   string
	voice  string
	url    string
	engine string
	model  string
	xlsx   string
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one invoice and print the result as JSON",
	Example: `  invoice-ocr extract --file hoadon.pdf
  invoice-ocr extract --text "Hóa đơn số 0000123 ..." --engine gpt --model mini
  invoice-ocr extract --url https://example.com/hoadon.jpg --xlsx hoadon.xlsx`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	f := extractCmd.Flags()
	f.StringVar(&extractFlags.file, "file", "", "image or PDF file")
	f.StringVar(&extractFlags.text, "text", "", "invoice text")
	f.StringVar(&extractFlags.voice, "voice", "", "audio file describing the invoice")
	f.StringVar(&extractFlags.url, "url", "", "URL of an image or PDF")
	f.StringVar(&extractFlags.engine, "engine", extraction.DefaultEngine, "extraction engine (gemini or gpt)")
	f.StringVar(&extractFlags.model, "model", "", "model name or alias")
	f.StringVar(&extractFlags.xlsx, "xlsx", "", "also write the invoice to this XLSX file")
	extractCmd.MarkFlagsMutuallyExclusive("file", "text", "voice", "url")
	extractCmd.MarkFlagsOneRequired("file", "text", "voice", "url")
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts := service.Options{Engine: extractFlags.engine, Model: extractFlags.model}
	if _, err := extraction.ParseEngine(opts.Engine); err != nil {
		return err
	}

	ctx := cmd.Context()
	c, cleanup, err := bootstrap(ctx, "stderr")
	if err != nil {
		return err
	}
	defer cleanup()
	svc := c.Service()

	var result *entity.ExtractionResult
	switch {
	case extractFlags.file != "":
		data, contentType, err := readInput(extractFlags.file)
		if err != nil {
			return err
		}
		result, err = svc.ProcessFile(ctx, data, contentType, opts)
		if err != nil {
			return err
		}
	case extractFlags.voice != "":
		data, contentType, err := readInput(extractFlags.voice)
		if err != nil {
			return err
		}
		result, err = svc.ProcessVoice(ctx, data, contentType, opts)
		if err != nil {
			return err
		}
	case extractFlags.url != "":
		result, err = svc.ProcessURL(ctx, extractFlags.url, opts)
		if err != nil {
			return err
		}
	default:
		result, err = svc.ProcessText(ctx, extractFlags.text, opts)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return err
	}

	if extractFlags.xlsx == "" {
		return nil
	}
	if result.Document == nil {
		return fmt.Errorf("no invoice document to write: %s", result.NormalizationError)
	}
	data, err := export.InvoiceXLSX(result.Document)
	if err != nil {
		return err
	}
	return os.WriteFile(extractFlags.xlsx, data, 0644)
}

// readInput returns the file bytes and a content type from the extension,
// falling back to sniffing.
func readInput(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
