package permission

import (
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

var (
	procurement    = []entity.Role{entity.RoleProcurement}
	management     = []entity.Role{entity.RoleManagement}
	financial      = []entity.Role{entity.RoleFinancial}
	devManager     = []entity.Role{entity.RoleDevManager}
	coo            = []entity.Role{entity.RoleCOO}
	projectControl = []entity.Role{entity.RoleProjectControl}
)

// DefaultRules is the transition authority table. One row per (kind, state, trigger).
var DefaultRules = []Rule{
	// Goods requests
	{Kind: entity.KindGoodsRequest, State: workflow.StateDraft, Trigger: workflow.TriggerEdit, Owner: true},
	{Kind: entity.KindGoodsRequest, State: workflow.StateDraft, Trigger: workflow.TriggerSubmit, Owner: true},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingProcurement, Trigger: workflow.TriggerAddInquiries, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingProcurement, Trigger: workflow.TriggerReject, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingManagement, Trigger: workflow.TriggerApproveInquiry, Roles: management},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingManagement, Trigger: workflow.TriggerReturnInquiries, Roles: management},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingManagement, Trigger: workflow.TriggerRejectInquiries, Roles: management},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingManagement, Trigger: workflow.TriggerReject, Roles: management},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingPurchase, Trigger: workflow.TriggerAddReceipt, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingPurchase, Trigger: workflow.TriggerReject, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingReceipt, Trigger: workflow.TriggerAddReceipt, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingReceipt, Trigger: workflow.TriggerConfirmReceiptProcurement, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingReceipt, Trigger: workflow.TriggerConfirmReceiptRequester, Owner: true},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingReceipt, Trigger: workflow.TriggerReject, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingInvoice, Trigger: workflow.TriggerUploadInvoice, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingInvoice, Trigger: workflow.TriggerReject, Roles: procurement},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingFinancial, Trigger: workflow.TriggerApproveFinancial, Roles: financial},
	{Kind: entity.KindGoodsRequest, State: workflow.StatePendingFinancial, Trigger: workflow.TriggerReject, Roles: financial},

	// Payment requests
	{Kind: entity.KindPaymentRequest, State: workflow.StateDraft, Trigger: workflow.TriggerEdit, Owner: true},
	{Kind: entity.KindPaymentRequest, State: workflow.StateDraft, Trigger: workflow.TriggerSubmit, Owner: true},
	{Kind: entity.KindPaymentRequest, State: workflow.StatePendingFinancial, Trigger: workflow.TriggerSetPaymentTypes, Roles: financial},
	{Kind: entity.KindPaymentRequest, State: workflow.StatePendingFinancial, Trigger: workflow.TriggerApproveReview, Roles: financial},
	{Kind: entity.KindPaymentRequest, State: workflow.StatePendingFinancial, Trigger: workflow.TriggerReject, Roles: financial},
	{Kind: entity.KindPaymentRequest, State: workflow.StatePendingDevManager, Trigger: workflow.TriggerApproveDevManager, Roles: devManager},
	{Kind: entity.KindPaymentRequest, State: workflow.StatePendingDevManager, Trigger: workflow.TriggerReject, Roles: devManager},
	{Kind: entity.KindPaymentRequest, State: workflow.StatePendingPayment, Trigger: workflow.TriggerProcessPayment, Roles: financial},

	// Project proposals
	{Kind: entity.KindProjectProposal, State: workflow.StateDraft, Trigger: workflow.TriggerEdit, Owner: true},
	{Kind: entity.KindProjectProposal, State: workflow.StateDraft, Trigger: workflow.TriggerSubmit, Owner: true},
	{Kind: entity.KindProjectProposal, State: workflow.StatePendingCOO, Trigger: workflow.TriggerCOOApprove, Roles: coo},
	{Kind: entity.KindProjectProposal, State: workflow.StatePendingCOO, Trigger: workflow.TriggerCOOReject, Roles: coo},
	{Kind: entity.KindProjectProposal, State: workflow.StatePendingDevManager, Trigger: workflow.TriggerAssignManager, Roles: devManager},
	{Kind: entity.KindProjectProposal, State: workflow.StatePendingProjectControl, Trigger: workflow.TriggerRegister, Roles: projectControl},
	{Kind: entity.KindProjectProposal, State: workflow.StateRegistered, Trigger: workflow.TriggerMarkCompleted, Roles: []entity.Role{entity.RoleProjectControl, entity.RoleAdmin}},
}

// DefaultReadTable controls who may view which entities and fields.
var DefaultReadTable = ReadTable{
	ViewAll: map[entity.Kind][]entity.Role{
		entity.KindGoodsRequest:    {entity.RoleAdmin, entity.RoleProcurement, entity.RoleManagement, entity.RoleFinancial},
		entity.KindPaymentRequest:  {entity.RoleAdmin, entity.RoleFinancial, entity.RoleDevManager},
		entity.KindProjectProposal: {entity.RoleAdmin, entity.RoleCOO, entity.RoleDevManager, entity.RoleProjectControl},
	},
	Fields: []FieldRule{
		{
			Kind:      entity.KindGoodsRequest,
			Field:     FieldPrices,
			HiddenFor: entity.RoleRequester,
			UnlessAny: []entity.Role{entity.RoleAdmin, entity.RoleManagement, entity.RoleProcurement, entity.RoleFinancial},
		},
	},
}
