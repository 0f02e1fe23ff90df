package entity

import "github.com/shopspring/decimal"

// PaymentRequest asks financial to pay one or more amounts
type PaymentRequest struct {
	Record
	RequestNumber    string          `json:"request_number"`
	RequesterID      string          `json:"requester_id"`
	RequesterName    string          `json:"requester_name"`
	RequestType      string          `json:"request_type"`
	RequestTypeOther string          `json:"request_type_other,omitempty"`
	Description      string          `json:"description,omitempty"`
	Rows             []PaymentRow    `json:"rows"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Attachment       AttachmentRef   `json:"attachment,omitempty"`
	Invoice          AttachmentRef   `json:"invoice,omitempty"`
	PaymentDate      string          `json:"payment_date,omitempty"`
	PaymentNotes     string          `json:"payment_notes,omitempty"`
}

// PaymentRow is one payable amount. PaymentType and PaymentDate are filled in by financial.
type PaymentRow struct {
	ID                    string          `json:"id"`
	Amount                decimal.Decimal `json:"amount"`
	InvoiceContractNumber string          `json:"invoice_contract_number,omitempty"`
	Reason                string          `json:"reason"`
	CostCenter            string          `json:"cost_center,omitempty"`
	PaymentMethod         string          `json:"payment_method,omitempty"`
	PaymentMethodOther    string          `json:"payment_method_other,omitempty"`
	AccountNumber         string          `json:"account_number,omitempty"`
	BankName              string          `json:"bank_name,omitempty"`
	AccountHolderName     string          `json:"account_holder_name,omitempty"`
	PaymentType           string          `json:"payment_type,omitempty"`
	PaymentDate           string          `json:"payment_date,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
}

func (p *PaymentRequest) Kind() Kind             { return KindPaymentRequest }
func (p *PaymentRequest) Number() string         { return p.RequestNumber }
func (p *PaymentRequest) OwnerID() string        { return p.RequesterID }
func (p *PaymentRequest) Participants() []string { return nil }

// RecomputeTotal sets TotalAmount to the sum of row amounts
func (p *PaymentRequest) RecomputeTotal() {
	total := decimal.Zero
	for _, row := range p.Rows {
		total = total.Add(row.Amount)
	}
	p.TotalAmount = total
}

// FindRow returns the row with the given id, or nil
func (p *PaymentRequest) FindRow(id string) *PaymentRow {
	for i := range p.Rows {
		if p.Rows[i].ID == id {
			return &p.Rows[i]
		}
	}
	return nil
}
