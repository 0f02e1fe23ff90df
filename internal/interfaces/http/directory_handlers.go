package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-portal/internal/application/service"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// UnreadCountResponse is returned by GET /notifications/unread-count
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	const op = "list notifications"
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, op, apperr.InvalidInput(op, "limit %q is not a number", raw))
			return
		}
		limit = n
	}

	items, err := h.notifications.List(c.Request.Context(), actorFrom(c), limit)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	if items == nil {
		items = []*entity.Notification{}
	}
	h.ok(c, http.StatusOK, items)
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *Handlers) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, "unread count", err)
		return
	}
	h.ok(c, http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	n, err := h.notifications.MarkRead(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "mark notification read", err)
		return
	}
	h.ok(c, http.StatusOK, n)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, "list users", err)
		return
	}
	if users == nil {
		users = []*entity.User{}
	}
	h.ok(c, http.StatusOK, users)
}

// GetUser handles GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get user", err)
		return
	}
	h.ok(c, http.StatusOK, u)
}

// SaveUser handles PUT /api/users/:id
func (h *Handlers) SaveUser(c *gin.Context) {
	const op = "save user"
	var in service.UserInput
	if !h.bind(c, op, &in) {
		return
	}
	in.ID = c.Param("id")

	u, err := h.users.Save(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.ok(c, http.StatusOK, u)
}

// DeleteUser handles DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCostCenters handles GET /api/cost-centers
func (h *Handlers) ListCostCenters(c *gin.Context) {
	items, err := h.costCenters.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list cost centers", err)
		return
	}
	if items == nil {
		items = []*entity.CostCenter{}
	}
	h.ok(c, http.StatusOK, items)
}

// CreateCostCenter handles POST /api/cost-centers
func (h *Handlers) CreateCostCenter(c *gin.Context) {
	const op = "create cost center"
	var in service.CostCenterInput
	if !h.bind(c, op, &in) {
		return
	}
	cc, err := h.costCenters.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.ok(c, http.StatusCreated, cc)
}

// UpdateCostCenter handles PUT /api/cost-centers/:id
func (h *Handlers) UpdateCostCenter(c *gin.Context) {
	const op = "update cost center"
	var in service.CostCenterInput
	if !h.bind(c, op, &in) {
		return
	}
	cc, err := h.costCenters.Update(c.Request.Context(), actorFrom(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.ok(c, http.StatusOK, cc)
}

// DeleteCostCenter handles DELETE /api/cost-centers/:id
func (h *Handlers) DeleteCostCenter(c *gin.Context) {
	if err := h.costCenters.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, "delete cost center", err)
		return
	}
	c.Status(http.StatusNoContent)
}
