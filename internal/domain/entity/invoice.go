package entity

// InvoiceDocument is the canonical extraction output for a Vietnamese VAT
// invoice (Circular 78/2021/TT-BTC). All six root keys are always emitted;
// missing values are encoded as null, never omitted.
type InvoiceDocument struct {
	GeneralInfo      GeneralInfo       `json:"general_info"`
	SellerInfo       SellerInfo        `json:"seller_info"`
	BuyerInfo        BuyerInfo         `json:"buyer_info"`
	Items            []InvoiceItem     `json:"items"`
	FinancialSummary FinancialSummary  `json:"financial_summary"`
	DigitalSignature *DigitalSignature `json:"digital_signature"`
}

// GeneralInfo holds invoice identification (TTChung)
type GeneralInfo struct {
	// Identification
	TemplateCode  *string `json:"template_code"`  // KHMSHDon
	InvoiceSeries *string `json:"invoice_series"` // KHHDon
	InvoiceNumber *string `json:"invoice_number"` // SHDon, leading zeros kept
	InvoiceDate   *string `json:"invoice_date"`   // NLap, YYYY-MM-DD
	InvoiceType   *string `json:"invoice_type"`

	// Tax authority
	LookupCode       *string `json:"lookup_code"`
	TaxAuthorityCode *string `json:"tax_authority_code"`
	InvoiceStatus    *string `json:"invoice_status"`

	// Adjustment / replacement references
	OriginalInvoiceNumber *string `json:"original_invoice_number"`
	OriginalInvoiceDate   *string `json:"original_invoice_date"`
	AdjustmentType        *string `json:"adjustment_type"`

	// Currency & payment
	CurrencyCode  *string `json:"currency_code"` // DVTTe
	ExchangeRate  Amount  `json:"exchange_rate"`
	PaymentMethod *string `json:"payment_method"` // HTTToan
	PaymentStatus *string `json:"payment_status"`
	PaymentTerm   *string `json:"payment_term"`

	ContractNumber      *string `json:"contract_number"`
	PurchaseOrderNumber *string `json:"purchase_order_number"`
	DeliveryNoteNumber  *string `json:"delivery_note_number"`

	InvoiceVersion *string `json:"invoice_version"`
	Notes          *string `json:"notes"`
}

// SellerInfo is the issuing party (NBan). Name, TaxCode and Address are the
// required fields.
type SellerInfo struct {
	Name    *string `json:"name"`
	TaxCode *string `json:"tax_code"`
	Address *string `json:"address"`

	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
	Fax     *string `json:"fax"`

	BankAccount *string `json:"bank_account"`
	BankName    *string `json:"bank_name"`
	BankBranch  *string `json:"bank_branch"`

	LegalRepresentative *string `json:"legal_representative"`
	Position            *string `json:"position"`
}

// BuyerInfo is the receiving party (NMua)
type BuyerInfo struct {
	Name        *string `json:"name"`
	CompanyName *string `json:"company_name"`
	TaxCode     *string `json:"tax_code"`

	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`

	BankAccount *string `json:"bank_account"`
	BankName    *string `json:"bank_name"`

	ContactPerson *string `json:"contact_person"`
	Department    *string `json:"department"`
}

// InvoiceItem is one line of the goods/services table (HHDVu)
type InvoiceItem struct {
	LineNumber Integer `json:"line_number"` // STT

	ItemCode        *string `json:"item_code"`
	ItemName        *string `json:"item_name"`
	ItemDescription *string `json:"item_description"`

	UnitName *string `json:"unit_name"`
	Quantity Amount  `json:"quantity"`

	UnitPrice         Amount `json:"unit_price"`
	TotalAmountPreTax Amount `json:"total_amount_pre_tax"`

	DiscountRate   Amount `json:"discount_rate"`
	DiscountAmount Amount `json:"discount_amount"`

	VATRate            VATRate `json:"vat_rate"`
	VATAmount          Amount  `json:"vat_amount"`
	TotalAmountWithTax Amount  `json:"total_amount_with_tax"`

	Promotion      *string `json:"promotion"`
	WarrantyPeriod *string `json:"warranty_period"`
	Origin         *string `json:"origin"`
}

// FinancialSummary holds invoice totals (TToan)
type FinancialSummary struct {
	// nil when the invoice does not allow telling rates apart
	TaxBreakdowns []TaxBreakdown `json:"tax_breakdowns"`

	TotalAmountPreTax   Amount `json:"total_amount_pre_tax"`
	TotalDiscountAmount Amount `json:"total_discount_amount"`
	TotalVATAmount      Amount `json:"total_vat_amount"`
	TotalPaymentAmount  Amount `json:"total_payment_amount"`

	AmountInWords *string `json:"amount_in_words"`

	ShippingFee  Amount `json:"shipping_fee"`
	InsuranceFee Amount `json:"insurance_fee"`
	OtherFees    Amount `json:"other_fees"`

	PrepaidAmount   Amount `json:"prepaid_amount"`
	RemainingAmount Amount `json:"remaining_amount"`
}

// TaxBreakdown aggregates taxable and tax amounts for one VAT rate (LTSuat)
type TaxBreakdown struct {
	VATRate       VATRate `json:"vat_rate"`
	TaxableAmount Amount  `json:"taxable_amount"`
	TaxAmount     Amount  `json:"tax_amount"`
}

// DigitalSignature holds e-signature metadata (DSCKS)
type DigitalSignature struct {
	SignerName   *string `json:"signer_name"`
	SigningTime  *string `json:"signing_time"`
	SerialNumber *string `json:"serial_number"`
	Authority    *string `json:"authority"`
	ValidFrom    *string `json:"valid_from"`
	ValidTo      *string `json:"valid_to"`
	HashValue    *string `json:"hash_value"`
}

// IsEmpty reports whether no signature field carries a value.
func (s *DigitalSignature) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, v := range []*string{s.SignerName, s.SigningTime, s.SerialNumber, s.Authority, s.ValidFrom, s.ValidTo, s.HashValue} {
		if v != nil && *v != "" {
			return false
		}
	}
	return true
}
