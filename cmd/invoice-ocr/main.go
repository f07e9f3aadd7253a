// Command invoice-ocr extracts Vietnamese VAT invoices into structured JSON.
//
// Usage:
//
//	invoice-ocr serve                          # HTTP API and metrics
//	invoice-ocr extract --file invoice.pdf     # one-off extraction
//	invoice-ocr check --engine gpt             # provider connectivity probe
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
