package entity

import "github.com/garyjia/procurement-portal/internal/domain/workflow"

// Kind identifies a workflow entity type
type Kind string

const (
	KindGoodsRequest    Kind = workflow.GoodsRequestKind
	KindPaymentRequest  Kind = workflow.PaymentRequestKind
	KindProjectProposal Kind = workflow.ProjectProposalKind
)

// Role is an organizational role held by a user
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleRequester      Role = "requester"
	RoleProcurement    Role = "procurement"
	RoleFinancial      Role = "financial"
	RoleManagement     Role = "management"
	RoleCOO            Role = "coo"
	RoleDevManager     Role = "dev_manager"
	RoleProjectControl Role = "project_control"
)

var validRoles = map[Role]bool{
	RoleAdmin:          true,
	RoleRequester:      true,
	RoleProcurement:    true,
	RoleFinancial:      true,
	RoleManagement:     true,
	RoleCOO:            true,
	RoleDevManager:     true,
	RoleProjectControl: true,
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Payment request types
const (
	PaymentRequestPurchase  = "purchase"
	PaymentRequestProject   = "project"
	PaymentRequestPettyCash = "petty_cash"
	PaymentRequestSalary    = "salary"
	PaymentRequestOther     = "other"
)

// Payment row reasons
const (
	PaymentReasonPrepayment = "prepayment"
	PaymentReasonSettlement = "settlement"
)

// Payment methods requested by the requester
const (
	PaymentMethodCash  = "cash"
	PaymentMethodCheck = "check"
	PaymentMethodOther = "other"
)

// Payment types assigned by financial during review
const (
	PaymentTypeCash         = "cash"
	PaymentTypeCheck        = "check"
	PaymentTypeBankTransfer = "bank_transfer"
)

// Project types
const (
	ProjectTypeCivil          = "civil"
	ProjectTypeIndustrial     = "industrial"
	ProjectTypeEconomic       = "economic"
	ProjectTypeService        = "service"
	ProjectTypeOrganizational = "organizational"
)

// Notification delivery status constants
const (
	DeliveryStatusPending = "pending"
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
)

// History action labels
const (
	ActionCreated             = "created"
	ActionEdited              = "edited"
	ActionSubmitted           = "submitted"
	ActionRejected            = "rejected"
	ActionInquiriesAdded      = "inquiries_added"
	ActionInquiryApproved     = "inquiry_approved"
	ActionInquiriesReturned   = "inquiries_returned"
	ActionReceiptAdded        = "receipt_added"
	ActionReceiptConfirmed    = "receipt_confirmed"
	ActionReceiptsCompleted   = "receipts_completed"
	ActionInvoiceUploaded     = "invoice_uploaded"
	ActionFinancialApproved   = "financial_approved"
	ActionPaymentTypesSet     = "payment_types_set"
	ActionReviewApproved      = "review_approved"
	ActionReturnedToRequester = "returned_to_requester"
	ActionDevManagerApproved  = "dev_manager_approved"
	ActionPaymentProcessed    = "payment_processed"
	ActionCOOApproved         = "coo_approved"
	ActionCOORejected         = "coo_rejected"
	ActionManagerAssigned     = "manager_assigned"
	ActionRegistered          = "registered"
	ActionCompleted           = "completed"
)

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// IsValidPaymentRequestType reports whether t is a known request type
func IsValidPaymentRequestType(t string) bool {
	return oneOf(t, PaymentRequestPurchase, PaymentRequestProject, PaymentRequestPettyCash, PaymentRequestSalary, PaymentRequestOther)
}

// IsValidPaymentReason reports whether r is prepayment or settlement
func IsValidPaymentReason(r string) bool {
	return oneOf(r, PaymentReasonPrepayment, PaymentReasonSettlement)
}

// IsValidPaymentMethod reports whether m is a known requested method; empty is allowed
func IsValidPaymentMethod(m string) bool {
	return m == "" || oneOf(m, PaymentMethodCash, PaymentMethodCheck, PaymentMethodOther)
}

// IsValidPaymentType reports whether t is an assignable payment type
func IsValidPaymentType(t string) bool {
	return oneOf(t, PaymentTypeCash, PaymentTypeCheck, PaymentTypeBankTransfer)
}

// IsValidProjectType reports whether t is a known project type
func IsValidProjectType(t string) bool {
	return oneOf(t, ProjectTypeCivil, ProjectTypeIndustrial, ProjectTypeEconomic, ProjectTypeService, ProjectTypeOrganizational)
}
