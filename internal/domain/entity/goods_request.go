package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InquiryCount is the number of candidate quotes procurement must supply
const InquiryCount = 3

// GoodsRequest asks procurement to source and buy an item
type GoodsRequest struct {
	Record
	RequestNumber string        `json:"request_number"`
	RequesterID   string        `json:"requester_id"`
	RequesterName string        `json:"requester_name"`
	ItemName      string        `json:"item_name"`
	Quantity      int           `json:"quantity"`
	CostCenter    string        `json:"cost_center"`
	NeedDate      string        `json:"need_date,omitempty"`
	Description   string        `json:"description,omitempty"`
	Image         AttachmentRef `json:"image,omitempty"`
	Inquiries     []Inquiry     `json:"inquiries"`
	Receipts      []Receipt     `json:"receipts"`
	Invoice       AttachmentRef `json:"invoice,omitempty"`
}

// Inquiry is a candidate price quote
type Inquiry struct {
	ID         string          `json:"id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Image      AttachmentRef   `json:"image,omitempty"`
	IsSelected bool            `json:"is_selected"`
}

// Receipt records a delivery that both procurement and the requester confirm
type Receipt struct {
	ID                     string          `json:"id"`
	ReceiptNumber          string          `json:"receipt_number"`
	Quantity               int             `json:"quantity"`
	UnitPrice              decimal.Decimal `json:"unit_price"`
	TotalPrice             decimal.Decimal `json:"total_price"`
	ConfirmedByProcurement bool            `json:"confirmed_by_procurement"`
	ConfirmedByRequester   bool            `json:"confirmed_by_requester"`
	ReceiptDate            string          `json:"receipt_date,omitempty"`
	ReceiptTime            string          `json:"receipt_time,omitempty"`
	ConfirmedAt            *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}

// FullyConfirmed returns true when both sides confirmed the delivery
func (r *Receipt) FullyConfirmed() bool {
	return r.ConfirmedByProcurement && r.ConfirmedByRequester
}

func (g *GoodsRequest) Kind() Kind             { return KindGoodsRequest }
func (g *GoodsRequest) Number() string         { return g.RequestNumber }
func (g *GoodsRequest) OwnerID() string        { return g.RequesterID }
func (g *GoodsRequest) Participants() []string { return nil }

// FindInquiry returns the inquiry with the given id, or nil
func (g *GoodsRequest) FindInquiry(id string) *Inquiry {
	for i := range g.Inquiries {
		if g.Inquiries[i].ID == id {
			return &g.Inquiries[i]
		}
	}
	return nil
}

// SelectedInquiry returns the winning inquiry, or nil before management approval
func (g *GoodsRequest) SelectedInquiry() *Inquiry {
	for i := range g.Inquiries {
		if g.Inquiries[i].IsSelected {
			return &g.Inquiries[i]
		}
	}
	return nil
}

// FindReceipt returns the receipt with the given id, or nil
func (g *GoodsRequest) FindReceipt(id string) *Receipt {
	for i := range g.Receipts {
		if g.Receipts[i].ID == id {
			return &g.Receipts[i]
		}
	}
	return nil
}

// FullyReceived returns true once at least one receipt is confirmed by both sides
func (g *GoodsRequest) FullyReceived() bool {
	for i := range g.Receipts {
		if g.Receipts[i].FullyConfirmed() {
			return true
		}
	}
	return false
}
