package invoice

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

const sampleReply = `{
  "general_info": {
    "template_code": "1",
    "invoice_series": "C24TAA",
    "invoice_number": "0000123",
    "invoice_date": "15/01/2024",
    "currency_code": "vnd",
    "exchange_rate": null,
    "payment_method": "TM/CK"
  },
  "seller_info": {
    "name": "CÔNG TY TNHH ABC",
    "tax_code": "0123 456 789",
    "address": "Số 1 Nguyễn Huệ, Quận 1, TP.HCM"
  },
  "buyer_info": {
    "name": "Nguyễn Văn A",
    "tax_code": null
  },
  "items": [
    {
      "line_number": 1,
      "item_name": "Dịch vụ tư vấn",
      "quantity": 2,
      "unit_price": "500.000",
      "total_amount_pre_tax": 1000000,
      "vat_rate": 10,
      "vat_amount": "100.000",
      "total_amount_with_tax": 1100000
    },
    {
      "item_name": "Phí vận chuyển",
      "quantity": 1,
      "unit_price": 50000,
      "vat_rate": "KCT"
    }
  ],
  "financial_summary": {
    "tax_breakdowns": [{"vat_rate": 10, "taxable_amount": 1000000, "tax_amount": 100000}],
    "total_amount_pre_tax": 1050000,
    "total_vat_amount": 100000,
    "total_payment_amount": "1.150.000",
    "amount_in_words": "Một triệu một trăm năm mươi nghìn đồng"
  },
  "digital_signature": null
}`

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer()
	require.NoError(t, err)
	return n
}

func TestNormalizer_Normalize_Sample(t *testing.T) {
	doc, err := newTestNormalizer(t).Normalize(sampleReply)
	require.NoError(t, err)

	assert.Equal(t, "0000123", *doc.GeneralInfo.InvoiceNumber)
	assert.Equal(t, "2024-01-15", *doc.GeneralInfo.InvoiceDate)
	assert.Equal(t, "VND", *doc.GeneralInfo.CurrencyCode)
	assert.Equal(t, entity.NewAmount(1), doc.GeneralInfo.ExchangeRate)

	assert.Equal(t, "0123456789", *doc.SellerInfo.TaxCode)
	assert.Nil(t, doc.BuyerInfo.TaxCode)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, entity.NewAmount(500000), doc.Items[0].UnitPrice)
	assert.Equal(t, entity.NewAmount(100000), doc.Items[0].VATAmount)
	assert.Equal(t, entity.NewVATRate(10), doc.Items[0].VATRate)
	assert.Equal(t, entity.NewVATRate(entity.VATNotSubject), doc.Items[1].VATRate)
	assert.Equal(t, entity.NewInteger(2), doc.Items[1].LineNumber)

	assert.Equal(t, entity.NewAmount(1150000), doc.FinancialSummary.TotalPaymentAmount)
	assert.Len(t, doc.FinancialSummary.TaxBreakdowns, 1)
	assert.Nil(t, doc.DigitalSignature)
}

func TestNormalizer_FencedAndUnfencedAreIdentical(t *testing.T) {
	n := newTestNormalizer(t)

	plain, err := n.Normalize(sampleReply)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"json tag":        "```json\n" + sampleReply + "\n```",
		"no tag":          "```\n" + sampleReply + "\n```",
		"outer spaces":    "\n\n  ```JSON\n" + sampleReply + "\n```  \n",
		"byte order mark": "\ufeff" + sampleReply,
	} {
		t.Run(name, func(t *testing.T) {
			fenced, err := n.Normalize(raw)
			require.NoError(t, err)
			assert.Equal(t, plain, fenced)
		})
	}
}

func TestNormalizer_Unwrap(t *testing.T) {
	n := newTestNormalizer(t)

	assert.Equal(t, `{"a":1}`, n.Unwrap("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, n.Unwrap("```json {\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, n.Unwrap(`  {"a":1}  `))
	assert.Equal(t, "Sorry, I cannot read this invoice.", n.Unwrap("Sorry, I cannot read this invoice."))
}

func TestNormalizer_ExtraStripper(t *testing.T) {
	stripPrefix := func(s string) string {
		const prefix = "JSON:"
		if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
			return s[len(prefix):]
		}
		return s
	}
	n, err := NewNormalizer(stripPrefix)
	require.NoError(t, err)

	_, err = n.Normalize("JSON:" + sampleReply)
	assert.NoError(t, err)
}

func TestNormalizer_Malformed(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "Here is the invoice you asked for."},
		{"empty", "   "},
		{"truncated", `{"general_info": {"invoice_number": "1"`},
		{"array root", `[1, 2, 3]`},
		{"missing root key", `{"general_info": {}, "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {}}`},
		{"items not array", `{"general_info": {}, "seller_info": {}, "buyer_info": {}, "items": {}, "financial_summary": {}, "digital_signature": null}`},
		{"amount as object", `{"general_info": {}, "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {"total_payment_amount": {"value": 1}}, "digital_signature": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := n.Normalize(tt.raw)
			assert.Nil(t, doc)

			var malformed *entity.MalformedExtractionOutput
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.raw, malformed.Raw)
		})
	}
}

func TestNormalizer_MinimalDocumentKeepsAllKeys(t *testing.T) {
	raw := `{"general_info": {}, "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {}, "digital_signature": {"signer_name": ""}}`

	doc, err := newTestNormalizer(t).Normalize(raw)
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &generic))

	for _, key := range []string{"general_info", "seller_info", "buyer_info", "items", "financial_summary", "digital_signature"} {
		assert.Contains(t, generic, key)
	}
	assert.Equal(t, []interface{}{}, generic["items"])
	assert.Nil(t, generic["digital_signature"])

	financial := generic["financial_summary"].(map[string]interface{})
	assert.Contains(t, financial, "tax_breakdowns")
	assert.Nil(t, financial["tax_breakdowns"])
	assert.Contains(t, financial, "total_payment_amount")
	assert.Nil(t, financial["total_payment_amount"])
}

func TestNormalizer_CoercesTextAndDropsBadValues(t *testing.T) {
	raw := `{
	  "general_info": {"invoice_number": 456, "invoice_date": "31/02/2024", "currency_code": "USD", "exchange_rate": "24.500"},
	  "seller_info": {"name": "  ", "tax_code": "0101234567 001"},
	  "buyer_info": {},
	  "items": [{"line_number": "3", "vat_rate": 7, "quantity": "1,000.5,3"}],
	  "financial_summary": {"tax_breakdowns": []},
	  "digital_signature": {"signer_name": "CÔNG TY TNHH ABC", "signing_time": "2024-01-15T10:00:00"}
	}`

	doc, err := newTestNormalizer(t).Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "456", *doc.GeneralInfo.InvoiceNumber)
	assert.Nil(t, doc.GeneralInfo.InvoiceDate)
	assert.Equal(t, entity.NewAmount(24500), doc.GeneralInfo.ExchangeRate)
	assert.Nil(t, doc.SellerInfo.Name)
	assert.Equal(t, "0101234567001", *doc.SellerInfo.TaxCode)

	require.Len(t, doc.Items, 1)
	assert.Equal(t, entity.NewInteger(3), doc.Items[0].LineNumber)
	assert.False(t, doc.Items[0].VATRate.Valid)
	assert.False(t, doc.Items[0].Quantity.Valid)

	assert.Nil(t, doc.FinancialSummary.TaxBreakdowns)
	require.NotNil(t, doc.DigitalSignature)
	assert.Equal(t, "CÔNG TY TNHH ABC", *doc.DigitalSignature.SignerName)
}

func TestNormalizer_ForeignCurrencyKeepsNullRate(t *testing.T) {
	raw := `{"general_info": {"currency_code": "USD"}, "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {}, "digital_signature": null}`

	doc, err := newTestNormalizer(t).Normalize(raw)
	require.NoError(t, err)
	assert.False(t, doc.GeneralInfo.ExchangeRate.Valid)
}

func TestNormalizer_SignatureValidityDates(t *testing.T) {
	raw := `{"general_info": {}, "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {},
	  "digital_signature": {"signer_name": "CÔNG TY TNHH ABC", "valid_from": "15/01/2024", "valid_to": "không rõ"}}`

	doc, err := newTestNormalizer(t).Normalize(raw)
	require.NoError(t, err)

	require.NotNil(t, doc.DigitalSignature)
	require.NotNil(t, doc.DigitalSignature.ValidFrom)
	assert.Equal(t, "2024-01-15", *doc.DigitalSignature.ValidFrom)
	assert.Nil(t, doc.DigitalSignature.ValidTo)
}

func TestNormalizer_NumericIdentifiersKeepAllDigits(t *testing.T) {
	raw := `{"general_info": {"lookup_code": 12345678901234567890, "invoice_number": 100000000000000001},
	  "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {}, "digital_signature": null}`

	doc, err := newTestNormalizer(t).Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "12345678901234567890", *doc.GeneralInfo.LookupCode)
	assert.Equal(t, "100000000000000001", *doc.GeneralInfo.InvoiceNumber)
}

func TestNormalizer_TrailingDataIsMalformed(t *testing.T) {
	raw := `{"general_info": {}, "seller_info": {}, "buyer_info": {}, "items": [], "financial_summary": {}, "digital_signature": null} {"extra": 1}`

	_, err := newTestNormalizer(t).Normalize(raw)

	var malformed *entity.MalformedExtractionOutput
	assert.ErrorAs(t, err, &malformed)
}
