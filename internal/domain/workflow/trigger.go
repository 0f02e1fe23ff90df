package workflow

// Trigger is an operation that may move an entity between states
type Trigger string

const (
	TriggerSubmit Trigger = "submit"
	TriggerEdit   Trigger = "edit"
	TriggerReject Trigger = "reject"

	TriggerAddInquiries              Trigger = "add_inquiries"
	TriggerApproveInquiry            Trigger = "approve_inquiry"
	TriggerReturnInquiries           Trigger = "return_inquiries"
	TriggerRejectInquiries           Trigger = "reject_inquiries"
	TriggerAddReceipt                Trigger = "add_receipt"
	TriggerConfirmReceiptProcurement Trigger = "confirm_receipt_procurement"
	TriggerConfirmReceiptRequester   Trigger = "confirm_receipt_requester"
	TriggerReceiptsCompleted         Trigger = "receipts_completed"
	TriggerUploadInvoice             Trigger = "upload_invoice"
	TriggerApproveFinancial          Trigger = "approve_financial"

	TriggerSetPaymentTypes   Trigger = "set_payment_types"
	TriggerApproveReview     Trigger = "approve_review"
	TriggerApproveDevManager Trigger = "approve_dev_manager"
	TriggerProcessPayment    Trigger = "process_payment"

	TriggerCOOApprove    Trigger = "coo_approve"
	TriggerCOOReject     Trigger = "coo_reject"
	TriggerAssignManager Trigger = "assign_manager"
	TriggerRegister      Trigger = "register"
	TriggerMarkCompleted Trigger = "mark_completed"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
