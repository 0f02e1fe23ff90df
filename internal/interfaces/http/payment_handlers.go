package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-portal/internal/application/workflow"
)

// SetPaymentTypesRequest is the body of POST /payment-requests/:id/payment-types
type SetPaymentTypesRequest struct {
	Assignments []workflow.PaymentTypeAssignment `json:"assignments"`
}

// ListPaymentRequests handles GET /api/payment-requests
func (h *Handlers) ListPaymentRequests(c *gin.Context) {
	const op = "list payment requests"
	filter, ok := h.listFilter(c, op)
	if !ok {
		return
	}
	views, err := h.payments.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	if views == nil {
		views = []*workflow.PaymentRequestView{}
	}
	h.ok(c, http.StatusOK, views)
}

// CreatePaymentRequest handles POST /api/payment-requests
func (h *Handlers) CreatePaymentRequest(c *gin.Context) {
	const op = "create payment request"
	var in workflow.PaymentRequestInput
	if !h.bind(c, op, &in) {
		return
	}
	view, err := h.payments.Create(c.Request.Context(), actorFrom(c), in)
	h.respondDoc(c, http.StatusCreated, op, view, err)
}

// GetPaymentRequest handles GET /api/payment-requests/:id
func (h *Handlers) GetPaymentRequest(c *gin.Context) {
	view, err := h.payments.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	h.respondDoc(c, http.StatusOK, "get payment request", view, err)
}

// EditPaymentRequest handles PUT /api/payment-requests/:id
func (h *Handlers) EditPaymentRequest(c *gin.Context) {
	const op = "edit payment request"
	var in workflow.PaymentRequestInput
	if !h.bind(c, op, &in) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.Edit(c.Request.Context(), c.Param("id"), version, actorFrom(c), in)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// SubmitPaymentRequest handles POST /api/payment-requests/:id/submit
func (h *Handlers) SubmitPaymentRequest(c *gin.Context) {
	const op = "submit payment request"
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.Submit(c.Request.Context(), c.Param("id"), version, actorFrom(c))
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// SetPaymentTypes handles POST /api/payment-requests/:id/payment-types
func (h *Handlers) SetPaymentTypes(c *gin.Context) {
	const op = "set payment types"
	var req SetPaymentTypesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.SetPaymentTypes(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Assignments)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// ReviewPaymentRequest handles POST /api/payment-requests/:id/review
func (h *Handlers) ReviewPaymentRequest(c *gin.Context) {
	const op = "review payment request"
	var req NotesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.Review(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// ApproveDevManager handles POST /api/payment-requests/:id/approve-dev-manager
func (h *Handlers) ApproveDevManager(c *gin.Context) {
	const op = "approve dev manager"
	var req NotesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.ApproveDevManager(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// ProcessPayment handles POST /api/payment-requests/:id/process-payment
func (h *Handlers) ProcessPayment(c *gin.Context) {
	const op = "process payment"
	var in workflow.ProcessPaymentInput
	if !h.bind(c, op, &in) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.ProcessPayment(c.Request.Context(), c.Param("id"), version, actorFrom(c), in)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// RejectPaymentRequest handles POST /api/payment-requests/:id/reject
func (h *Handlers) RejectPaymentRequest(c *gin.Context) {
	const op = "reject payment request"
	var req NotesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.payments.Reject(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}
