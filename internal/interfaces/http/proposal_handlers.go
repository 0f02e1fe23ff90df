package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-portal/internal/application/workflow"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
)

// COOReviewRequest is the body of POST /project-proposals/:id/coo-review
type COOReviewRequest struct {
	IsAligned *bool  `json:"is_aligned"`
	Notes     string `json:"notes"`
}

// AssignManagerRequest is the body of POST /project-proposals/:id/assign-manager
type AssignManagerRequest struct {
	ManagerID string `json:"manager_id"`
	Notes     string `json:"notes"`
}

// ListProposals handles GET /api/project-proposals
func (h *Handlers) ListProposals(c *gin.Context) {
	const op = "list project proposals"
	filter, ok := h.listFilter(c, op)
	if !ok {
		return
	}
	views, err := h.proposals.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	if views == nil {
		views = []*workflow.ProjectProposalView{}
	}
	h.ok(c, http.StatusOK, views)
}

// CreateProposal handles POST /api/project-proposals
func (h *Handlers) CreateProposal(c *gin.Context) {
	const op = "create project proposal"
	var in workflow.ProjectProposalInput
	if !h.bind(c, op, &in) {
		return
	}
	view, err := h.proposals.Create(c.Request.Context(), actorFrom(c), in)
	h.respondDoc(c, http.StatusCreated, op, view, err)
}

// GetProposal handles GET /api/project-proposals/:id
func (h *Handlers) GetProposal(c *gin.Context) {
	view, err := h.proposals.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	h.respondDoc(c, http.StatusOK, "get project proposal", view, err)
}

// EditProposal handles PUT /api/project-proposals/:id
func (h *Handlers) EditProposal(c *gin.Context) {
	const op = "edit project proposal"
	var in workflow.ProjectProposalInput
	if !h.bind(c, op, &in) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.proposals.Edit(c.Request.Context(), c.Param("id"), version, actorFrom(c), in)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// SubmitProposal handles POST /api/project-proposals/:id/submit
func (h *Handlers) SubmitProposal(c *gin.Context) {
	const op = "submit project proposal"
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.proposals.Submit(c.Request.Context(), c.Param("id"), version, actorFrom(c))
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// COOReview handles POST /api/project-proposals/:id/coo-review
func (h *Handlers) COOReview(c *gin.Context) {
	const op = "coo review"
	var req COOReviewRequest
	if !h.bind(c, op, &req) {
		return
	}
	if req.IsAligned == nil {
		h.fail(c, op, apperr.InvalidInput(op, "is_aligned is required"))
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.proposals.COOReview(c.Request.Context(), c.Param("id"), version, actorFrom(c), *req.IsAligned, req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// AssignManager handles POST /api/project-proposals/:id/assign-manager
func (h *Handlers) AssignManager(c *gin.Context) {
	const op = "assign manager"
	var req AssignManagerRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.proposals.AssignManager(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.ManagerID, req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// RegisterProposal handles POST /api/project-proposals/:id/register
func (h *Handlers) RegisterProposal(c *gin.Context) {
	const op = "register project"
	var in workflow.RegisterInput
	if !h.bind(c, op, &in) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.proposals.Register(c.Request.Context(), c.Param("id"), version, actorFrom(c), in)
	h.respondDoc(c, http.StatusOK, op, view, err)
}

// CompleteProposal handles POST /api/project-proposals/:id/complete
func (h *Handlers) CompleteProposal(c *gin.Context) {
	const op = "complete project"
	var req NotesRequest
	if !h.bind(c, op, &req) {
		return
	}
	version, ok := h.ifMatch(c, op)
	if !ok {
		return
	}
	view, err := h.proposals.MarkCompleted(c.Request.Context(), c.Param("id"), version, actorFrom(c), req.Notes)
	h.respondDoc(c, http.StatusOK, op, view, err)
}
