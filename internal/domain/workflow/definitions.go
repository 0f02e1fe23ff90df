package workflow

// Kind names used by the definitions below. They match entity.Kind values.
const (
	GoodsRequestKind    = "goods_request"
	PaymentRequestKind  = "payment_request"
	ProjectProposalKind = "project_proposal"
)

// GoodsRequest is the goods procurement lifecycle.
var GoodsRequest = buildGoodsRequest()

// PaymentRequest is the payment approval lifecycle.
var PaymentRequest = buildPaymentRequest()

// ProjectProposal is the project intake lifecycle.
var ProjectProposal = buildProjectProposal()

// DefinitionFor returns the definition registered for a kind name
func DefinitionFor(kind string) (*Definition, bool) {
	switch kind {
	case GoodsRequestKind:
		return GoodsRequest, true
	case PaymentRequestKind:
		return PaymentRequest, true
	case ProjectProposalKind:
		return ProjectProposal, true
	default:
		return nil, false
	}
}

func buildGoodsRequest() *Definition {
	b := NewBuilder(GoodsRequestKind,
		StateDraft,
		StatePendingProcurement,
		StatePendingManagement,
		StatePendingPurchase,
		StatePendingReceipt,
		StatePendingInvoice,
		StatePendingFinancial,
		StateCompleted,
		StateRejected,
	).
		Terminal(StateCompleted, StateRejected).
		Internal(TriggerReceiptsCompleted)

	b.Configure(StateDraft).
		Permit(TriggerSubmit, StatePendingProcurement).
		PermitReentry(TriggerEdit)

	b.Configure(StatePendingProcurement).
		Permit(TriggerAddInquiries, StatePendingManagement).
		Permit(TriggerReject, StateRejected)

	b.Configure(StatePendingManagement).
		Permit(TriggerApproveInquiry, StatePendingPurchase).
		Permit(TriggerReturnInquiries, StatePendingProcurement).
		Permit(TriggerRejectInquiries, StateRejected).
		Permit(TriggerReject, StateRejected)

	b.Configure(StatePendingPurchase).
		Permit(TriggerAddReceipt, StatePendingReceipt).
		Permit(TriggerReject, StateRejected)

	b.Configure(StatePendingReceipt).
		PermitReentry(TriggerAddReceipt).
		PermitReentry(TriggerConfirmReceiptProcurement).
		PermitReentry(TriggerConfirmReceiptRequester).
		Permit(TriggerReceiptsCompleted, StatePendingInvoice).
		Permit(TriggerReject, StateRejected)

	b.Configure(StatePendingInvoice).
		Permit(TriggerUploadInvoice, StatePendingFinancial).
		Permit(TriggerReject, StateRejected)

	b.Configure(StatePendingFinancial).
		Permit(TriggerApproveFinancial, StateCompleted).
		Permit(TriggerReject, StateRejected)

	return b.Build()
}

func buildPaymentRequest() *Definition {
	b := NewBuilder(PaymentRequestKind,
		StateDraft,
		StatePendingFinancial,
		StatePendingDevManager,
		StatePendingPayment,
		StateCompleted,
		StateRejected,
	).
		Terminal(StateCompleted, StateRejected)

	b.Configure(StateDraft).
		Permit(TriggerSubmit, StatePendingFinancial).
		PermitReentry(TriggerEdit)

	// A financial rejection hands the request back to its requester.
	b.Configure(StatePendingFinancial).
		PermitReentry(TriggerSetPaymentTypes).
		Permit(TriggerApproveReview, StatePendingDevManager).
		Permit(TriggerReject, StateDraft)

	b.Configure(StatePendingDevManager).
		Permit(TriggerApproveDevManager, StatePendingPayment).
		Permit(TriggerReject, StateRejected)

	b.Configure(StatePendingPayment).
		Permit(TriggerProcessPayment, StateCompleted)

	return b.Build()
}

func buildProjectProposal() *Definition {
	b := NewBuilder(ProjectProposalKind,
		StateDraft,
		StatePendingCOO,
		StateRejectedByCOO,
		StatePendingDevManager,
		StatePendingProjectControl,
		StateRegistered,
		StateCompleted,
	).
		Terminal(StateRejectedByCOO, StateCompleted)

	b.Configure(StateDraft).
		Permit(TriggerSubmit, StatePendingCOO).
		PermitReentry(TriggerEdit)

	b.Configure(StatePendingCOO).
		Permit(TriggerCOOApprove, StatePendingDevManager).
		Permit(TriggerCOOReject, StateRejectedByCOO)

	b.Configure(StatePendingDevManager).
		Permit(TriggerAssignManager, StatePendingProjectControl)

	b.Configure(StatePendingProjectControl).
		Permit(TriggerRegister, StateRegistered)

	b.Configure(StateRegistered).
		Permit(TriggerMarkCompleted, StateCompleted)

	return b.Build()
}
