package workflow

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// PaymentRowInput is one requested payment
type PaymentRowInput struct {
	Amount                decimal.Decimal `json:"amount"`
	InvoiceContractNumber string          `json:"invoice_contract_number"`
	Reason                string          `json:"reason"`
	CostCenter            string          `json:"cost_center"`
	PaymentMethod         string          `json:"payment_method"`
	PaymentMethodOther    string          `json:"payment_method_other"`
	AccountNumber         string          `json:"account_number"`
	BankName              string          `json:"bank_name"`
	AccountHolderName     string          `json:"account_holder_name"`
	Notes                 string          `json:"notes"`
}

// PaymentRequestInput is the requester-editable part of a payment request
type PaymentRequestInput struct {
	RequestType      string               `json:"request_type"`
	RequestTypeOther string               `json:"request_type_other"`
	Description      string               `json:"description"`
	Rows             []PaymentRowInput    `json:"rows"`
	Attachment       entity.AttachmentRef `json:"attachment"`
}

// PaymentTypeAssignment sets the payment type financial chose for one row
type PaymentTypeAssignment struct {
	RowID       string `json:"row_id"`
	PaymentType string `json:"payment_type"`
	PaymentDate string `json:"payment_date"`
}

// ProcessPaymentInput closes a payment request
type ProcessPaymentInput struct {
	PaymentDate string               `json:"payment_date"`
	Invoice     entity.AttachmentRef `json:"invoice"`
	Notes       string               `json:"notes"`
}

// PaymentWorkflow is the payment request lifecycle
type PaymentWorkflow interface {
	Create(ctx context.Context, actor entity.Actor, in PaymentRequestInput) (*PaymentRequestView, error)
	Edit(ctx context.Context, id string, version int64, actor entity.Actor, in PaymentRequestInput) (*PaymentRequestView, error)
	Submit(ctx context.Context, id string, version int64, actor entity.Actor) (*PaymentRequestView, error)
	SetPaymentTypes(ctx context.Context, id string, version int64, actor entity.Actor, assignments []PaymentTypeAssignment) (*PaymentRequestView, error)
	Review(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*PaymentRequestView, error)
	ApproveDevManager(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*PaymentRequestView, error)
	ProcessPayment(ctx context.Context, id string, version int64, actor entity.Actor, in ProcessPaymentInput) (*PaymentRequestView, error)
	// Reject returns the request to draft from financial review and terminates it from dev manager review
	Reject(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*PaymentRequestView, error)
	Get(ctx context.Context, id string, actor entity.Actor) (*PaymentRequestView, error)
	List(ctx context.Context, actor entity.Actor, filter ListFilter) ([]*PaymentRequestView, error)
}

type paymentWorkflow struct {
	e *Engine
}

type paymentStep = step[*entity.PaymentRequest]

func (w *paymentWorkflow) run(ctx context.Context, id string, version int64, actor entity.Actor, s paymentStep) (*PaymentRequestView, error) {
	p, err := transition[*entity.PaymentRequest](ctx, w.e, w.e.repos.Payments, entity.KindPaymentRequest, id, version, actor, s)
	if err != nil {
		return nil, err
	}
	return projectPayment(w.e.resolver, actor, p), nil
}

func validatePaymentInput(op string, in PaymentRequestInput) error {
	if !entity.IsValidPaymentRequestType(in.RequestType) {
		return apperr.InvalidInput(op, "unknown request_type %q", in.RequestType)
	}
	if in.RequestType == entity.PaymentRequestOther && strings.TrimSpace(in.RequestTypeOther) == "" {
		return apperr.InvalidInput(op, "request_type_other is required when request_type is other")
	}
	if len(in.Rows) == 0 {
		return apperr.InvalidInput(op, "at least one payment row is required")
	}
	for i, row := range in.Rows {
		if !row.Amount.IsPositive() {
			return apperr.InvalidInput(op, "row %d: amount must be positive", i+1)
		}
		if !entity.IsValidPaymentReason(row.Reason) {
			return apperr.InvalidInput(op, "row %d: unknown reason %q", i+1, row.Reason)
		}
		if !entity.IsValidPaymentMethod(row.PaymentMethod) {
			return apperr.InvalidInput(op, "row %d: unknown payment_method %q", i+1, row.PaymentMethod)
		}
		if row.PaymentMethod == entity.PaymentMethodOther && strings.TrimSpace(row.PaymentMethodOther) == "" {
			return apperr.InvalidInput(op, "row %d: payment_method_other is required", i+1)
		}
	}
	return nil
}

func (w *paymentWorkflow) applyInput(p *entity.PaymentRequest, in PaymentRequestInput) {
	p.RequestType = in.RequestType
	p.RequestTypeOther = in.RequestTypeOther
	p.Description = in.Description
	p.Attachment = in.Attachment

	rows := make([]entity.PaymentRow, 0, len(in.Rows))
	for _, r := range in.Rows {
		rows = append(rows, entity.PaymentRow{
			ID:                    w.e.newID(),
			Amount:                r.Amount,
			InvoiceContractNumber: r.InvoiceContractNumber,
			Reason:                r.Reason,
			CostCenter:            r.CostCenter,
			PaymentMethod:         r.PaymentMethod,
			PaymentMethodOther:    r.PaymentMethodOther,
			AccountNumber:         r.AccountNumber,
			BankName:              r.BankName,
			AccountHolderName:     r.AccountHolderName,
			Notes:                 r.Notes,
		})
	}
	p.Rows = rows
	p.RecomputeTotal()
}

func (w *paymentWorkflow) Create(ctx context.Context, actor entity.Actor, in PaymentRequestInput) (*PaymentRequestView, error) {
	if err := validatePaymentInput("create", in); err != nil {
		return nil, err
	}

	p, err := create[*entity.PaymentRequest](ctx, w.e, w.e.repos.Payments, entity.KindPaymentRequest, actor, func(number string) (*entity.PaymentRequest, error) {
		p := &entity.PaymentRequest{
			RequestNumber: number,
			RequesterID:   actor.ID,
			RequesterName: actor.Name,
		}
		w.applyInput(p, in)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return projectPayment(w.e.resolver, actor, p), nil
}

func (w *paymentWorkflow) Edit(ctx context.Context, id string, version int64, actor entity.Actor, in PaymentRequestInput) (*PaymentRequestView, error) {
	return w.run(ctx, id, version, actor, paymentStep{
		op:      "edit",
		trigger: domainwf.TriggerEdit,
		action:  entity.ActionEdited,
		apply: func(ctx context.Context, p *entity.PaymentRequest) error {
			if err := validatePaymentInput("edit", in); err != nil {
				return err
			}
			w.applyInput(p, in)
			return nil
		},
	})
}

func (w *paymentWorkflow) Submit(ctx context.Context, id string, version int64, actor entity.Actor) (*PaymentRequestView, error) {
	const op = "submit"
	return w.run(ctx, id, version, actor, paymentStep{
		op:      op,
		trigger: domainwf.TriggerSubmit,
		action:  entity.ActionSubmitted,
		apply: func(ctx context.Context, p *entity.PaymentRequest) error {
			if len(p.Rows) == 0 {
				return apperr.InvalidInput(op, "at least one payment row is required")
			}
			p.RecomputeTotal()
			return nil
		},
	})
}

func (w *paymentWorkflow) SetPaymentTypes(ctx context.Context, id string, version int64, actor entity.Actor, assignments []PaymentTypeAssignment) (*PaymentRequestView, error) {
	const op = "set payment types"
	return w.run(ctx, id, version, actor, paymentStep{
		op:      op,
		trigger: domainwf.TriggerSetPaymentTypes,
		action:  entity.ActionPaymentTypesSet,
		apply: func(ctx context.Context, p *entity.PaymentRequest) error {
			if len(assignments) == 0 {
				return apperr.InvalidInput(op, "at least one assignment is required")
			}
			seen := make(map[string]bool, len(assignments))
			for _, a := range assignments {
				if seen[a.RowID] {
					return apperr.InvalidInput(op, "row %s assigned twice", a.RowID)
				}
				seen[a.RowID] = true
				if p.FindRow(a.RowID) == nil {
					return apperr.NotFound(op, "payment row %s", a.RowID)
				}
				if !entity.IsValidPaymentType(a.PaymentType) {
					return apperr.InvalidInput(op, "unknown payment_type %q", a.PaymentType)
				}
			}
			for _, a := range assignments {
				row := p.FindRow(a.RowID)
				row.PaymentType = a.PaymentType
				if a.PaymentDate != "" {
					row.PaymentDate = a.PaymentDate
				}
			}
			p.RecomputeTotal()
			return nil
		},
	})
}

func (w *paymentWorkflow) Review(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*PaymentRequestView, error) {
	const op = "review"
	return w.run(ctx, id, version, actor, paymentStep{
		op:      op,
		trigger: domainwf.TriggerApproveReview,
		action:  entity.ActionReviewApproved,
		notes:   notes,
		apply: func(ctx context.Context, p *entity.PaymentRequest) error {
			for _, row := range p.Rows {
				if row.PaymentType == "" {
					return apperr.InvalidInput(op, "payment row %s has no payment type", row.ID)
				}
			}
			return nil
		},
	})
}

func (w *paymentWorkflow) ApproveDevManager(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*PaymentRequestView, error) {
	return w.run(ctx, id, version, actor, paymentStep{
		op:      "approve dev manager",
		trigger: domainwf.TriggerApproveDevManager,
		action:  entity.ActionDevManagerApproved,
		notes:   notes,
	})
}

func (w *paymentWorkflow) ProcessPayment(ctx context.Context, id string, version int64, actor entity.Actor, in ProcessPaymentInput) (*PaymentRequestView, error) {
	const op = "process payment"
	return w.run(ctx, id, version, actor, paymentStep{
		op:      op,
		trigger: domainwf.TriggerProcessPayment,
		action:  entity.ActionPaymentProcessed,
		notes:   in.Notes,
		apply: func(ctx context.Context, p *entity.PaymentRequest) error {
			if strings.TrimSpace(in.PaymentDate) == "" {
				return apperr.InvalidInput(op, "payment_date is required")
			}
			p.PaymentDate = in.PaymentDate
			p.PaymentNotes = in.Notes
			if !in.Invoice.IsZero() {
				p.Invoice = in.Invoice
			}
			for i := range p.Rows {
				if p.Rows[i].PaymentDate == "" {
					p.Rows[i].PaymentDate = in.PaymentDate
				}
			}
			p.RecomputeTotal()
			return nil
		},
	})
}

func (w *paymentWorkflow) Reject(ctx context.Context, id string, version int64, actor entity.Actor, notes string) (*PaymentRequestView, error) {
	const op = "reject"
	return w.run(ctx, id, version, actor, paymentStep{
		op:      op,
		trigger: domainwf.TriggerReject,
		action:  entity.ActionRejected,
		actionFrom: map[domainwf.State]string{
			domainwf.StatePendingFinancial: entity.ActionReturnedToRequester,
		},
		notes: notes,
		apply: func(ctx context.Context, p *entity.PaymentRequest) error {
			return requireNotes(op, notes)
		},
	})
}

func (w *paymentWorkflow) Get(ctx context.Context, id string, actor entity.Actor) (*PaymentRequestView, error) {
	p, err := load[*entity.PaymentRequest](ctx, w.e, w.e.repos.Payments, entity.KindPaymentRequest, id, actor)
	if err != nil {
		return nil, err
	}
	return projectPayment(w.e.resolver, actor, p), nil
}

func (w *paymentWorkflow) List(ctx context.Context, actor entity.Actor, filter ListFilter) ([]*PaymentRequestView, error) {
	filter, ok := visibleFilter(w.e.resolver, actor, entity.KindPaymentRequest, filter)
	if !ok {
		return []*PaymentRequestView{}, nil
	}

	items, err := w.e.repos.Payments.List(ctx, filter)
	if err != nil {
		return nil, classify("list", err)
	}

	views := make([]*PaymentRequestView, 0, len(items))
	for _, p := range items {
		views = append(views, projectPayment(w.e.resolver, actor, p))
	}
	return views, nil
}
