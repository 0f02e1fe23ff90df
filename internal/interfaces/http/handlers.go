package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-portal/internal/application/service"
	"github.com/garyjia/procurement-portal/internal/application/workflow"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	goods         workflow.GoodsWorkflow
	payments      workflow.PaymentWorkflow
	proposals     workflow.ProposalWorkflow
	notifications service.NotificationService
	users         service.UserService
	costCenters   service.CostCenterService
	socket        NotificationSocket
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		goods:         services.Goods,
		payments:      services.Payments,
		proposals:     services.Proposals,
		notifications: services.Notifications,
		users:         services.Users,
		costCenters:   services.CostCenters,
		socket:        services.Socket,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// NotesRequest carries the free-text notes most decisions accept
type NotesRequest struct {
	Notes string `json:"notes"`
}

// listQuery represents query parameters for listing entities
type listQuery struct {
	Status string `form:"status"`
	Mine   bool   `form:"mine"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type versioned interface {
	Base() *entity.Record
}

// fail writes err as a JSON error. Internal failures are logged and not echoed.
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "op", op, "path", c.Request.URL.Path, "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	c.JSON(status, Response{Success: false, Code: code, Error: msg})
}

func (h *Handlers) ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// respondDoc writes a workflow projection with its version as ETag
func (h *Handlers) respondDoc(c *gin.Context, status int, op string, doc versioned, err error) {
	if err != nil {
		h.fail(c, op, err)
		return
	}
	c.Header("ETag", strconv.Quote(strconv.FormatInt(doc.Base().Version, 10)))
	h.ok(c, status, doc)
}

// bind decodes an optional JSON body into dst. An empty body leaves dst untouched.
func (h *Handlers) bind(c *gin.Context, op string, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, op, apperr.InvalidInput(op, "malformed request body: %v", err))
		return false
	}
	return true
}

// ifMatch reads the expected version every mutating route must send in If-Match
func (h *Handlers) ifMatch(c *gin.Context, op string) (int64, bool) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" {
		h.fail(c, op, apperr.InvalidInput(op, "If-Match header with the current version is required"))
		return 0, false
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		h.fail(c, op, apperr.InvalidInput(op, "If-Match %q is not a version", raw))
		return 0, false
	}
	return v, true
}

func (h *Handlers) listFilter(c *gin.Context, op string) (workflow.ListFilter, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, op, apperr.InvalidInput(op, "invalid query parameters: %v", err))
		return workflow.ListFilter{}, false
	}
	if q.Limit <= 0 || q.Limit > maxListLimit {
		q.Limit = defaultListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	filter := workflow.ListFilter{
		Status: domainwf.State(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Mine {
		filter.OwnerID = actorFrom(c).ID
	}
	return filter, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	h.ok(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// Me handles GET /api/me
func (h *Handlers) Me(c *gin.Context) {
	h.ok(c, http.StatusOK, actorFrom(c))
}

// ServeNotifications handles GET /ws/notifications
func (h *Handlers) ServeNotifications(c *gin.Context) {
	h.socket.ServeWS(c, actorFrom(c))
}
