package ocr

import "github.com/garyjia/vat-invoice-ocr/internal/domain/entity"

// Result is the text recognized in one image
type Result = entity.RecognizedText
