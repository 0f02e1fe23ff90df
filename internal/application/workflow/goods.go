package workflow

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// GoodsRequestInput is the requester-editable part of a goods request
type GoodsRequestInput struct {
	ItemName    string               `json:"item_name"`
	Quantity    int                  `json:"quantity"`
	CostCenter  string               `json:"cost_center"`
	NeedDate    string               `json:"need_date"`
	Description string               `json:"description"`
	Image       entity.AttachmentRef `json:"image"`
}

// InquiryInput is one candidate quote supplied by procurement
type InquiryInput struct {
	UnitPrice  decimal.Decimal      `json:"unit_price"`
	Quantity   int                  `json:"quantity"`
	TotalPrice decimal.Decimal      `json:"total_price"`
	Image      entity.AttachmentRef `json:"image"`
}

// ReceiptInput records a delivery
type ReceiptInput struct {
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ConfirmReceiptInput carries the requester's delivery date and time; procurement leaves it empty
type ConfirmReceiptInput struct {
	ReceiptDate string `json:"receipt_date"`
	ReceiptTime string `json:"receipt_time"`
}

// SelectAction is management's decision on the inquiries
type SelectAction string

const (
	SelectApprove        SelectAction = "approve"
	SelectRejectWithEdit SelectAction = "reject_with_edit"
	SelectRejectComplete SelectAction = "reject_complete"
)

// GoodsWorkflow is the goods request lifecycle
type GoodsWorkflow interface {
	Create(ctx context.Context, actor entity.Actor, in GoodsRequestInput) (*GoodsRequestView, error)
	Edit(ctx context.Context, id string, version int64, actor entity.Actor, in GoodsRequestInput) (*GoodsRequestView, error)
	Submit(ctx context.Context, id string, version int64, actor entity.Actor) (*GoodsRequestView, error)
	AddInquiries(ctx context.Context, id string, version int64, actor entity.Actor, inquiries []InquiryInput) (*GoodsRequestView, error)
	SelectInquiry(ctx context.Context, id string, version int64, actor entity.Actor, inquiryID string, action SelectAction, notes string) (*GoodsRequestView, error)
	AddReceipt(ctx context.Context, id string, version int64, actor entity.Actor, in ReceiptInput) (*GoodsRequestView, error)
	// ConfirmReceipt confirms as procurement or as the requester
	ConfirmReceipt(ctx context.Context, id string, version int64, actor entity.Actor, receiptID string, as entity.Role, in ConfirmReceiptInput) (*GoodsRequestView, error)
	UploadInvoice(ctx context.Context, id string, version int64, actor entity.Actor, invoice entity.AttachmentRef) (*GoodsRequestView, error)
	ApproveFinancial(ctx context.Context, id string, version int64, actor entity.Actor) (*GoodsRequestView, error)
	Reject(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*GoodsRequestView, error)
	Get(ctx context.Context, id string, actor entity.Actor) (*GoodsRequestView, error)
	List(ctx context.Context, actor entity.Actor, filter ListFilter) ([]*GoodsRequestView, error)
}

type goodsWorkflow struct {
	e *Engine
}

type goodsStep = step[*entity.GoodsRequest]

func (w *goodsWorkflow) run(ctx context.Context, id string, version int64, actor entity.Actor, s goodsStep) (*GoodsRequestView, error) {
	g, err := transition[*entity.GoodsRequest](ctx, w.e, w.e.repos.Goods, entity.KindGoodsRequest, id, version, actor, s)
	if err != nil {
		return nil, err
	}
	return projectGoods(w.e.resolver, actor, g), nil
}

func validateGoodsInput(op string, in GoodsRequestInput) error {
	if strings.TrimSpace(in.ItemName) == "" {
		return apperr.InvalidInput(op, "item_name is required")
	}
	if in.Quantity <= 0 {
		return apperr.InvalidInput(op, "quantity must be positive")
	}
	if strings.TrimSpace(in.CostCenter) == "" {
		return apperr.InvalidInput(op, "cost_center is required")
	}
	return nil
}

func applyGoodsInput(g *entity.GoodsRequest, in GoodsRequestInput) {
	g.ItemName = strings.TrimSpace(in.ItemName)
	g.Quantity = in.Quantity
	g.CostCenter = strings.TrimSpace(in.CostCenter)
	g.NeedDate = in.NeedDate
	g.Description = in.Description
	g.Image = in.Image
}

func (w *goodsWorkflow) Create(ctx context.Context, actor entity.Actor, in GoodsRequestInput) (*GoodsRequestView, error) {
	if err := validateGoodsInput("create", in); err != nil {
		return nil, err
	}

	g, err := create[*entity.GoodsRequest](ctx, w.e, w.e.repos.Goods, entity.KindGoodsRequest, actor, func(number string) (*entity.GoodsRequest, error) {
		g := &entity.GoodsRequest{
			RequestNumber: number,
			RequesterID:   actor.ID,
			RequesterName: actor.Name,
			Inquiries:     []entity.Inquiry{},
			Receipts:      []entity.Receipt{},
		}
		applyGoodsInput(g, in)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return projectGoods(w.e.resolver, actor, g), nil
}

func (w *goodsWorkflow) Edit(ctx context.Context, id string, version int64, actor entity.Actor, in GoodsRequestInput) (*GoodsRequestView, error) {
	return w.run(ctx, id, version, actor, goodsStep{
		op:      "edit",
		trigger: domainwf.TriggerEdit,
		action:  entity.ActionEdited,
		apply: func(ctx context.Context, g *entity.GoodsRequest) error {
			if err := validateGoodsInput("edit", in); err != nil {
				return err
			}
			applyGoodsInput(g, in)
			return nil
		},
	})
}

func (w *goodsWorkflow) Submit(ctx context.Context, id string, version int64, actor entity.Actor) (*GoodsRequestView, error) {
	return w.run(ctx, id, version, actor, goodsStep{
		op:      "submit",
		trigger: domainwf.TriggerSubmit,
		action:  entity.ActionSubmitted,
	})
}

func (w *goodsWorkflow) AddInquiries(ctx context.Context, id string, version int64, actor entity.Actor, inquiries []InquiryInput) (*GoodsRequestView, error) {
	const op = "add inquiries"
	return w.run(ctx, id, version, actor, goodsStep{
		op:      op,
		trigger: domainwf.TriggerAddInquiries,
		action:  entity.ActionInquiriesAdded,
		apply: func(ctx context.Context, g *entity.GoodsRequest) error {
			if len(inquiries) != entity.InquiryCount {
				return apperr.InvalidInput(op, "exactly %d inquiries are required, got %d", entity.InquiryCount, len(inquiries))
			}
			out := make([]entity.Inquiry, 0, len(inquiries))
			for i, in := range inquiries {
				if !in.UnitPrice.IsPositive() || in.Quantity <= 0 || !in.TotalPrice.IsPositive() {
					return apperr.InvalidInput(op, "inquiry %d: unit_price, quantity and total_price must be positive", i+1)
				}
				out = append(out, entity.Inquiry{
					ID:         w.e.newID(),
					UnitPrice:  in.UnitPrice,
					Quantity:   in.Quantity,
					TotalPrice: in.TotalPrice,
					Image:      in.Image,
				})
			}
			g.Inquiries = out
			return nil
		},
	})
}

func (w *goodsWorkflow) SelectInquiry(ctx context.Context, id string, version int64, actor entity.Actor, inquiryID string, action SelectAction, notes string) (*GoodsRequestView, error) {
	const op = "select inquiry"

	s := goodsStep{op: op, notes: notes}
	switch action {
	case SelectApprove:
		s.trigger = domainwf.TriggerApproveInquiry
		s.action = entity.ActionInquiryApproved
		s.apply = func(ctx context.Context, g *entity.GoodsRequest) error {
			if g.FindInquiry(inquiryID) == nil {
				return apperr.NotFound(op, "inquiry %s", inquiryID)
			}
			for i := range g.Inquiries {
				g.Inquiries[i].IsSelected = g.Inquiries[i].ID == inquiryID
			}
			return nil
		}
	case SelectRejectWithEdit:
		s.trigger = domainwf.TriggerReturnInquiries
		s.action = entity.ActionInquiriesReturned
		// rejections act on the whole inquiry set; inquiryID is ignored
		s.apply = func(ctx context.Context, g *entity.GoodsRequest) error {
			for i := range g.Inquiries {
				g.Inquiries[i].IsSelected = false
			}
			return nil
		}
	case SelectRejectComplete:
		s.trigger = domainwf.TriggerRejectInquiries
		s.action = entity.ActionRejected
		s.apply = func(ctx context.Context, g *entity.GoodsRequest) error {
			return requireNotes(op, notes)
		}
	default:
		return nil, apperr.InvalidInput(op, "unknown action %q", action)
	}

	return w.run(ctx, id, version, actor, s)
}

func (w *goodsWorkflow) AddReceipt(ctx context.Context, id string, version int64, actor entity.Actor, in ReceiptInput) (*GoodsRequestView, error) {
	const op = "add receipt"
	return w.run(ctx, id, version, actor, goodsStep{
		op:      op,
		trigger: domainwf.TriggerAddReceipt,
		action:  entity.ActionReceiptAdded,
		apply: func(ctx context.Context, g *entity.GoodsRequest) error {
			if in.Quantity <= 0 || !in.UnitPrice.IsPositive() || !in.TotalPrice.IsPositive() {
				return apperr.InvalidInput(op, "quantity, unit_price and total_price must be positive")
			}
			number, err := w.e.nextReceiptNumber(ctx)
			if err != nil {
				return err
			}
			g.Receipts = append(g.Receipts, entity.Receipt{
				ID:            w.e.newID(),
				ReceiptNumber: number,
				Quantity:      in.Quantity,
				UnitPrice:     in.UnitPrice,
				TotalPrice:    in.TotalPrice,
				CreatedAt:     w.e.now(),
			})
			return nil
		},
	})
}

func (w *goodsWorkflow) ConfirmReceipt(ctx context.Context, id string, version int64, actor entity.Actor, receiptID string, as entity.Role, in ConfirmReceiptInput) (*GoodsRequestView, error) {
	const op = "confirm receipt"

	var trigger domainwf.Trigger
	switch as {
	case entity.RoleProcurement:
		trigger = domainwf.TriggerConfirmReceiptProcurement
	case entity.RoleRequester:
		trigger = domainwf.TriggerConfirmReceiptRequester
	default:
		return nil, apperr.InvalidInput(op, "confirm as %q: must be procurement or requester", as)
	}

	return w.run(ctx, id, version, actor, goodsStep{
		op:      op,
		trigger: trigger,
		action:  entity.ActionReceiptConfirmed,
		apply: func(ctx context.Context, g *entity.GoodsRequest) error {
			r := g.FindReceipt(receiptID)
			if r == nil {
				return apperr.NotFound(op, "receipt %s", receiptID)
			}
			if as == entity.RoleProcurement {
				r.ConfirmedByProcurement = true
			} else {
				r.ConfirmedByRequester = true
				r.ReceiptDate = in.ReceiptDate
				r.ReceiptTime = in.ReceiptTime
			}
			if r.FullyConfirmed() && r.ConfirmedAt == nil {
				now := w.e.now()
				r.ConfirmedAt = &now
			}
			return nil
		},
		follow: func(g *entity.GoodsRequest) (domainwf.Trigger, string, bool) {
			return domainwf.TriggerReceiptsCompleted, entity.ActionReceiptsCompleted, g.FullyReceived()
		},
	})
}

func (w *goodsWorkflow) UploadInvoice(ctx context.Context, id string, version int64, actor entity.Actor, invoice entity.AttachmentRef) (*GoodsRequestView, error) {
	const op = "upload invoice"
	return w.run(ctx, id, version, actor, goodsStep{
		op:      op,
		trigger: domainwf.TriggerUploadInvoice,
		action:  entity.ActionInvoiceUploaded,
		apply: func(ctx context.Context, g *entity.GoodsRequest) error {
			if invoice.IsZero() {
				return apperr.InvalidInput(op, "invoice reference is required")
			}
			g.Invoice = invoice
			return nil
		},
	})
}

func (w *goodsWorkflow) ApproveFinancial(ctx context.Context, id string, version int64, actor entity.Actor) (*GoodsRequestView, error) {
	return w.run(ctx, id, version, actor, goodsStep{
		op:      "approve financial",
		trigger: domainwf.TriggerApproveFinancial,
		action:  entity.ActionFinancialApproved,
	})
}

func (w *goodsWorkflow) Reject(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*GoodsRequestView, error) {
	const op = "reject"
	return w.run(ctx, id, version, actor, goodsStep{
		op:      op,
		trigger: domainwf.TriggerReject,
		action:  entity.ActionRejected,
		notes:   notes,
		apply: func(ctx context.Context, g *entity.GoodsRequest) error {
			return requireNotes(op, notes)
		},
	})
}

func (w *goodsWorkflow) Get(ctx context.Context, id string, actor entity.Actor) (*GoodsRequestView, error) {
	g, err := load[*entity.GoodsRequest](ctx, w.e, w.e.repos.Goods, entity.KindGoodsRequest, id, actor)
	if err != nil {
		return nil, err
	}
	return projectGoods(w.e.resolver, actor, g), nil
}

func (w *goodsWorkflow) List(ctx context.Context, actor entity.Actor, filter ListFilter) ([]*GoodsRequestView, error) {
	filter, ok := visibleFilter(w.e.resolver, actor, entity.KindGoodsRequest, filter)
	if !ok {
		return []*GoodsRequestView{}, nil
	}

	items, err := w.e.repos.Goods.List(ctx, filter)
	if err != nil {
		return nil, classify("list", err)
	}

	views := make([]*GoodsRequestView, 0, len(items))
	for _, g := range items {
		views = append(views, projectGoods(w.e.resolver, actor, g))
	}
	return views, nil
}
