// Package export renders extracted invoices as XLSX workbooks for import
// into accounting software.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

// Sheet names
const (
	SheetInvoice = "HoaDon"
	SheetItems   = "HangHoa"
	SheetTaxes   = "ThueSuat"
)

var itemHeaders = []string{
	"STT", "Mã hàng", "Tên hàng hóa, dịch vụ", "Đơn vị tính", "Số lượng",
	"Đơn giá", "Thành tiền chưa thuế", "Chiết khấu", "Thuế suất",
	"Tiền thuế", "Thành tiền có thuế",
}

var taxHeaders = []string{"Thuế suất", "Tiền chưa thuế", "Tiền thuế"}

// InvoiceXLSX returns a workbook with the invoice header fields, the line
// items and the per-rate tax breakdown. Null values become empty cells.
func InvoiceXLSX(doc *entity.InvoiceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("no invoice document to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInvoice); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetItems, SheetTaxes} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, err
	}

	if err := writeHeader(f, doc, bold, money); err != nil {
		return nil, fmt.Errorf("write %s: %w", SheetInvoice, err)
	}
	if err := writeItems(f, doc.Items, bold, money); err != nil {
		return nil, fmt.Errorf("write %s: %w", SheetItems, err)
	}
	if err := writeTaxes(f, doc.FinancialSummary.TaxBreakdowns, bold, money); err != nil {
		return nil, fmt.Errorf("write %s: %w", SheetTaxes, err)
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

type field struct {
	label string
	value interface{}
}

func writeHeader(f *excelize.File, doc *entity.InvoiceDocument, bold, money int) error {
	g, s, b, t := doc.GeneralInfo, doc.SellerInfo, doc.BuyerInfo, doc.FinancialSummary
	fields := []field{
		{"Ký hiệu mẫu số", text(g.TemplateCode)},
		{"Ký hiệu hóa đơn", text(g.InvoiceSeries)},
		{"Số hóa đơn", text(g.InvoiceNumber)},
		{"Ngày lập", text(g.InvoiceDate)},
		{"Mã tra cứu", text(g.LookupCode)},
		{"Mã CQT", text(g.TaxAuthorityCode)},
		{"Đơn vị tiền tệ", text(g.CurrencyCode)},
		{"Tỷ giá", amount(g.ExchangeRate)},
		{"Hình thức thanh toán", text(g.PaymentMethod)},
		{"Người bán", text(s.Name)},
		{"MST người bán", text(s.TaxCode)},
		{"Địa chỉ người bán", text(s.Address)},
		{"Tài khoản người bán", text(s.BankAccount)},
		{"Người mua", text(b.Name)},
		{"Đơn vị mua", text(b.CompanyName)},
		{"MST người mua", text(b.TaxCode)},
		{"Địa chỉ người mua", text(b.Address)},
		{"Tổng tiền chưa thuế", amount(t.TotalAmountPreTax)},
		{"Tổng chiết khấu", amount(t.TotalDiscountAmount)},
		{"Tổng tiền thuế", amount(t.TotalVATAmount)},
		{"Tổng thanh toán", amount(t.TotalPaymentAmount)},
		{"Số tiền bằng chữ", text(t.AmountInWords)},
	}
	if sig := doc.DigitalSignature; sig != nil {
		fields = append(fields,
			field{"Người ký", text(sig.SignerName)},
			field{"Ngày ký", text(sig.SigningTime)})
	}

	for i, fd := range fields {
		row := i + 1
		if err := setRow(f, SheetInvoice, row, fd.label, fd.value); err != nil {
			return err
		}
		if _, isNumber := fd.value.(float64); isNumber {
			cell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellStyle(SheetInvoice, cell, cell, money); err != nil {
				return err
			}
		}
	}

	last, _ := excelize.CoordinatesToCellName(1, len(fields))
	if err := f.SetCellStyle(SheetInvoice, "A1", last, bold); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetInvoice, "A", "A", 24)
	_ = f.SetColWidth(SheetInvoice, "B", "B", 48)
	return nil
}

func writeItems(f *excelize.File, items []entity.InvoiceItem, bold, money int) error {
	if err := writeTitles(f, SheetItems, itemHeaders, bold); err != nil {
		return err
	}

	for i, it := range items {
		row := i + 2
		if err := setRow(f, SheetItems, row,
			integer(it.LineNumber),
			text(it.ItemCode),
			text(it.ItemName),
			text(it.UnitName),
			amount(it.Quantity),
			amount(it.UnitPrice),
			amount(it.TotalAmountPreTax),
			amount(it.DiscountAmount),
			it.VATRate.Label(),
			amount(it.VATAmount),
			amount(it.TotalAmountWithTax),
		); err != nil {
			return err
		}
	}

	if len(items) > 0 {
		from, _ := excelize.CoordinatesToCellName(6, 2)
		to, _ := excelize.CoordinatesToCellName(len(itemHeaders), len(items)+1)
		if err := f.SetCellStyle(SheetItems, from, to, money); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(SheetItems, "C", "C", 40)
	_ = f.SetColWidth(SheetItems, "F", "K", 16)
	return nil
}

func writeTaxes(f *excelize.File, breakdowns []entity.TaxBreakdown, bold, money int) error {
	if err := writeTitles(f, SheetTaxes, taxHeaders, bold); err != nil {
		return err
	}
	for i, tb := range breakdowns {
		if err := setRow(f, SheetTaxes, i+2, tb.VATRate.Label(), amount(tb.TaxableAmount), amount(tb.TaxAmount)); err != nil {
			return err
		}
	}
	if len(breakdowns) > 0 {
		to, _ := excelize.CoordinatesToCellName(3, len(breakdowns)+1)
		if err := f.SetCellStyle(SheetTaxes, "B2", to, money); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(SheetTaxes, "A", "C", 16)
	return nil
}

func writeTitles(f *excelize.File, sheet string, titles []string, bold int) error {
	values := make([]interface{}, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := setRow(f, sheet, 1, values...); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	return f.SetCellStyle(sheet, "A1", last, bold)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func text(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func amount(a entity.Amount) interface{} {
	if !a.Valid {
		return nil
	}
	return a.Value
}

func integer(i entity.Integer) interface{} {
	if !i.Valid {
		return nil
	}
	return i.Value
}
