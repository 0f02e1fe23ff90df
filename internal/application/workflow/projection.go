package workflow

import (
	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/permission"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// InquiryView is an inquiry as shown to one actor. Price fields are nil when withheld.
type InquiryView struct {
	ID         string               `json:"id"`
	UnitPrice  *decimal.Decimal     `json:"unit_price"`
	Quantity   *int                 `json:"quantity"`
	TotalPrice *decimal.Decimal     `json:"total_price"`
	Image      entity.AttachmentRef `json:"image,omitempty"`
	IsSelected bool                 `json:"is_selected"`
}

// ReceiptView is a receipt as shown to one actor
type ReceiptView struct {
	entity.Receipt
	Quantity   *int             `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	TotalPrice *decimal.Decimal `json:"total_price"`
}

// GoodsRequestView is the role-filtered projection of a goods request
type GoodsRequestView struct {
	entity.GoodsRequest
	Inquiries      []InquiryView      `json:"inquiries"`
	Receipts       []ReceiptView      `json:"receipts"`
	PricesHidden   bool               `json:"prices_hidden"`
	AllowedActions []domainwf.Trigger `json:"allowed_actions"`
}

// PaymentRequestView is the projection of a payment request
type PaymentRequestView struct {
	entity.PaymentRequest
	AllowedActions []domainwf.Trigger `json:"allowed_actions"`
}

// ProjectProposalView is the projection of a project proposal
type ProjectProposalView struct {
	entity.ProjectProposal
	AllowedActions []domainwf.Trigger `json:"allowed_actions"`
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
func intPtr(i int) *int                             { return &i }

func allowedActions(r *permission.Resolver, actor entity.Actor, doc entity.Document) []domainwf.Trigger {
	actions := r.Allowed(actor, doc.Kind(), doc.Base().Status, doc.OwnerID())
	if actions == nil {
		actions = []domainwf.Trigger{}
	}
	return actions
}

func projectGoods(r *permission.Resolver, actor entity.Actor, g *entity.GoodsRequest) *GoodsRequestView {
	showPrices := r.CanSee(actor, entity.KindGoodsRequest, permission.FieldPrices)

	v := &GoodsRequestView{
		GoodsRequest:   *g,
		Inquiries:      make([]InquiryView, 0, len(g.Inquiries)),
		Receipts:       make([]ReceiptView, 0, len(g.Receipts)),
		PricesHidden:   !showPrices,
		AllowedActions: allowedActions(r, actor, g),
	}
	v.GoodsRequest.Inquiries = nil
	v.GoodsRequest.Receipts = nil

	for _, inq := range g.Inquiries {
		iv := InquiryView{ID: inq.ID, Image: inq.Image, IsSelected: inq.IsSelected}
		if showPrices {
			iv.UnitPrice = decimalPtr(inq.UnitPrice)
			iv.Quantity = intPtr(inq.Quantity)
			iv.TotalPrice = decimalPtr(inq.TotalPrice)
		}
		v.Inquiries = append(v.Inquiries, iv)
	}

	for _, rc := range g.Receipts {
		rv := ReceiptView{Receipt: rc}
		rv.Receipt.UnitPrice = decimal.Zero
		rv.Receipt.TotalPrice = decimal.Zero
		rv.Receipt.Quantity = 0
		if showPrices {
			rv.Quantity = intPtr(rc.Quantity)
			rv.UnitPrice = decimalPtr(rc.UnitPrice)
			rv.TotalPrice = decimalPtr(rc.TotalPrice)
		}
		v.Receipts = append(v.Receipts, rv)
	}
	return v
}

func projectPayment(r *permission.Resolver, actor entity.Actor, p *entity.PaymentRequest) *PaymentRequestView {
	return &PaymentRequestView{PaymentRequest: *p, AllowedActions: allowedActions(r, actor, p)}
}

func projectProposal(r *permission.Resolver, actor entity.Actor, p *entity.ProjectProposal) *ProjectProposalView {
	return &ProjectProposalView{ProjectProposal: *p, AllowedActions: allowedActions(r, actor, p)}
}

// ListFilter narrows entity listings
type ListFilter = port.ListFilter

// visibleFilter narrows filter to what actor may see of kind.
// It returns false when the actor may see nothing.
func visibleFilter(r *permission.Resolver, actor entity.Actor, kind entity.Kind, filter ListFilter) (ListFilter, bool) {
	if r.ViewsAll(actor, kind) {
		return filter, true
	}
	if actor.ID == "" {
		return filter, false
	}
	filter.OwnerID = actor.ID
	filter.ParticipantID = actor.ID
	return filter, true
}
