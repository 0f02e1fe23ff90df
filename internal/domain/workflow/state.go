package workflow

// State is a workflow status. Which states are legal depends on the
// Definition of the entity kind.
type State string

// Shared and goods request states
const (
	StateDraft              State = "draft"
	StatePendingProcurement State = "pending_procurement"
	StatePendingManagement  State = "pending_management"
	StatePendingPurchase    State = "pending_purchase"
	StatePendingReceipt     State = "pending_receipt"
	StatePendingInvoice     State = "pending_invoice"
	StatePendingFinancial   State = "pending_financial"
	StateCompleted          State = "completed"
	StateRejected           State = "rejected"
)

// Payment request states
const (
	StatePendingDevManager State = "pending_dev_manager"
	StatePendingPayment    State = "pending_payment"
)

// Project proposal states
const (
	StatePendingCOO            State = "pending_coo"
	StateRejectedByCOO         State = "rejected_by_coo"
	StatePendingProjectControl State = "pending_project_control"
	StateRegistered            State = "registered"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
