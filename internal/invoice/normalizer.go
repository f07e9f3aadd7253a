package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/pkg/utils"
)

// Normalizer turns a raw model reply into a validated InvoiceDocument.
// It is safe for concurrent use.
type Normalizer struct {
	strippers []Stripper
	schema    *jsonschema.Schema
}

// NewNormalizer compiles the document schema. Extra strippers run after the
// defaults.
func NewNormalizer(extra ...Stripper) (*Normalizer, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		strippers: append(DefaultStrippers(), extra...),
		schema:    schema,
	}, nil
}

// Unwrap removes presentation wrappers around the JSON payload
func (n *Normalizer) Unwrap(raw string) string {
	s := raw
	for _, strip := range n.strippers {
		s = strip(s)
	}
	return s
}

// Normalize parses, validates and cleans a model reply. Any failure is
// returned as *entity.MalformedExtractionOutput carrying the raw reply.
func (n *Normalizer) Normalize(raw string) (*entity.InvoiceDocument, error) {
	payload := n.Unwrap(raw)
	if payload == "" {
		return nil, malformed(raw, errors.New("empty reply"))
	}

	generic, err := decodeGeneric(payload)
	if err != nil {
		return nil, malformed(raw, fmt.Errorf("reply is not JSON: %w", err))
	}
	generic = coerceText(generic)

	if err := n.schema.Validate(generic); err != nil {
		return nil, malformed(raw, fmt.Errorf("reply does not match invoice schema: %w", err))
	}

	cleaned, err := json.Marshal(generic)
	if err != nil {
		return nil, malformed(raw, err)
	}

	var doc entity.InvoiceDocument
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return nil, malformed(raw, fmt.Errorf("decode invoice: %w", err))
	}

	postNormalize(&doc)
	return &doc, nil
}

// decodeGeneric keeps numbers as json.Number so long totals and numeric
// identifiers survive re-encoding digit for digit.
func decodeGeneric(payload string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func malformed(raw string, err error) error {
	return &entity.MalformedExtractionOutput{Raw: raw, Err: err}
}

// postNormalize enforces the document invariants that decoding alone
// cannot: tax code formatting, ISO dates (signature validity included), the VND exchange-rate default,
// a non-null item list and a null signature block when nothing was found.
func postNormalize(doc *entity.InvoiceDocument) {
	g := &doc.GeneralInfo
	g.InvoiceDate = isoDateOrNil(g.InvoiceDate)
	g.OriginalInvoiceDate = isoDateOrNil(g.OriginalInvoiceDate)
	if g.CurrencyCode != nil {
		code := strings.ToUpper(*g.CurrencyCode)
		g.CurrencyCode = &code
	}
	if !g.ExchangeRate.Valid && (g.CurrencyCode == nil || *g.CurrencyCode == "VND") {
		g.ExchangeRate = entity.NewAmount(1)
	}

	doc.SellerInfo.TaxCode = taxCodeOrNil(doc.SellerInfo.TaxCode)
	doc.BuyerInfo.TaxCode = taxCodeOrNil(doc.BuyerInfo.TaxCode)

	if doc.Items == nil {
		doc.Items = []entity.InvoiceItem{}
	}
	for i := range doc.Items {
		if !doc.Items[i].LineNumber.Valid {
			doc.Items[i].LineNumber = entity.NewInteger(i + 1)
		}
	}

	if len(doc.FinancialSummary.TaxBreakdowns) == 0 {
		doc.FinancialSummary.TaxBreakdowns = nil
	}

	if doc.DigitalSignature.IsEmpty() {
		doc.DigitalSignature = nil
	} else {
		sig := doc.DigitalSignature
		sig.ValidFrom = isoDateOrNil(sig.ValidFrom)
		sig.ValidTo = isoDateOrNil(sig.ValidTo)
	}
}

func isoDateOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	iso, ok := utils.NormalizeDate(*s)
	if !ok {
		return nil
	}
	return &iso
}

func taxCodeOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	code := utils.StripWhitespace(*s)
	if code == "" {
		return nil
	}
	return &code
}
