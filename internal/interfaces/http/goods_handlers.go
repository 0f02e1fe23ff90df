package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-portal/internal/application/workflow"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// AddInquiriesRequest is the body of POST /goods-requests/:id/inquiries
type AddInquiriesRequest struct {
	Inquiries []workflow.InquiryInput `json:"inquiries"`
}

// SelectInquiryRequest is the body of POST /goods-requests/:id/select-inquiry
type SelectInquiryRequest struct {
	InquiryID string                `json:"inquiry_id"`
	Action    workflow.SelectAction `json:"action"`
	Notes     string                `json:"notes"`
}

// ConfirmReceiptRequest is the body of POST /goods-requests/:id/receipts/:rid/confirm.
// As is "procurement" or "requester".
type ConfirmReceiptRequest struct {
	As          entity.Role `json:"as"`
	ReceiptDate string      `json:"receipt_date"`
	ReceiptTime string      `json:"receipt_time"`
}

// UploadInvoiceRequest is the body of POST /goods-requests/:id/invoice
type UploadInvoiceRequest struct {
	Invoice entity.AttachmentRef `json:"invoice"`
}

// ListGoodsRequests handles GET /api/goods-requests
func (h *Handlers) ListGoodsRequests(c *gin.Context) {
	const op = "list goods requests"
	filter, ok := h.listFilter(c, op)
	if !ok {
		return
	}
	views, err := h.goods.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	if views == nil {
		views = []*workflow.GoodsRequestView{}
	}
	h.ok(c, http.StatusOK, views)
}

// CreateGoodsRequest handles POST /api/goods-requests
func (h *Handlers) CreateGoodsRequest(c *gin.Context) {
	const op = "create goods request"
	var in workflow.GoodsRequestInput
	if !h.bind(c, op, &in) {
		return
	}
	view, err := h.goods.Create(c.Request.Context(), actorFrom(c), in)
	h.respondDoc(c, http.StatusCreated, op, view, err)
}

// GetGoodsRequest handles GET /api/goods-requests/:id
func (h *Handlers) GetGoodsRequest(c *gin.Context) {
	view, err := h.goods.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	h.respondDoc(c, http.StatusOK, "get goods request", view, err)
}

// EditGoodsRequest handles PUT /api/goods-requests/:id
func (h *Handlers) EditGoodsRequest(c *gin.Context) {
	const op = "edit goods request"
	var in workflow.GoodsRequestInput
	if !h.bind(c, op, &in) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.Edit(c.Request.Context(), c.Param("id"), version, actorFrom(c), in)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// SubmitGoodsRequest handles POST /api/goods-requests/:id/submit
func (h *Handlers) SubmitGoodsRequest(c *gin.Context) {
	const op = "submit goods request"
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.Submit(c.Request.Context(), c.Param("id"), version, actorFrom(c))
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// AddInquiries handles POST /api/goods-requests/:id/inquiries
func (h *Handlers) AddInquiries(c *gin.Context) {
	const op = "add inquiries"
	var req AddInquiriesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.AddInquiries(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Inquiries)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// SelectInquiry handles POST /api/goods-requests/:id/select-inquiry
func (h *Handlers) SelectInquiry(c *gin.Context) {
	const op = "select inquiry"
	var req SelectInquiryRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.SelectInquiry(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.InquiryID, req.Action, req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// AddReceipt handles POST /api/goods-requests/:id/receipts
func (h *Handlers) AddReceipt(c *gin.Context) {
	const op = "add receipt"
	var in workflow.ReceiptInput
	if !h.bind(c, op, &in) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.AddReceipt(c.Request.Context(), c.Param("id"), version, actorFrom(c), in)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// ConfirmReceipt handles POST /api/goods-requests/:id/receipts/:rid/confirm
func (h *Handlers) ConfirmReceipt(c *gin.Context) {
	const op = "confirm receipt"
	var req ConfirmReceiptRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.ConfirmReceipt(c.Request.Context(), c.Param("id"), version, actorFrom(c), c.Param("rid"), req.As,
		workflow.ConfirmReceiptInput{ReceiptDate: req.ReceiptDate, ReceiptTime: req.ReceiptTime})
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// UploadInvoice handles POST /api/goods-requests/:id/invoice
func (h *Handlers) UploadInvoice(c *gin.Context) {
	const op = "upload invoice"
	var req UploadInvoiceRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.UploadInvoice(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Invoice)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// ApproveFinancial handles POST /api/goods-requests/:id/approve-financial
func (h *Handlers) ApproveFinancial(c *gin.Context) {
	const op = "approve financial"
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.ApproveFinancial(c.Request.Context(), c.Param("id"), version, actorFrom(c))
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// RejectGoodsRequest handles POST /api/goods-requests/:id/reject
func (h *Handlers) RejectGoodsRequest(c *gin.Context) {
	const op = "reject goods request"
	var req NotesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.goods.Reject(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}
