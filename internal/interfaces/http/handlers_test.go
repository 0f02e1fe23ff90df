package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/service"
	"github.com/garyjia/procurement-portal/internal/application/workflow"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/infrastructure/persistence/repository"
	"github.com/garyjia/procurement-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-portal/pkg/database"
)

const testSecret = "test-secret"

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type apiEnv struct {
	router *gin.Engine
	db     *database.DB
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "api.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrator(db, logger).Run(database.Schema()))

	users := repository.NewUserRepository(db.DB, logger)
	notifications := repository.NewNotificationRepository(db.DB, logger)
	engine := workflow.NewEngine(workflow.Repositories{
		Goods:         repository.NewGoodsRequestRepository(db.DB, logger),
		Payments:      repository.NewPaymentRequestRepository(db.DB, logger),
		Proposals:     repository.NewProjectProposalRepository(db.DB, logger),
		History:       repository.NewHistoryRepository(db.DB, logger),
		Notifications: notifications,
		Users:         users,
		Sequences:     repository.NewSequenceRepository(db.DB, logger),
		Tx:            sqlite.NewDB(db.DB, logger),
	}, nil)

	for _, u := range []entity.User{
		{ID: "u1", Name: "Sara", Roles: []entity.Role{entity.RoleRequester}},
		{ID: "p1", Name: "Buyer", Roles: []entity.Role{entity.RoleProcurement}},
		{ID: "c1", Name: "COO", Roles: []entity.Role{entity.RoleCOO}},
		{ID: "a1", Name: "Admin", Roles: []entity.Role{entity.RoleAdmin}},
	} {
		u := u
		require.NoError(t, users.Upsert(context.Background(), &u))
	}

	server := NewServer(ServerConfig{JWTSecret: testSecret}, Services{
		Goods:         engine.Goods(),
		Payments:      engine.Payments(),
		Proposals:     engine.Proposals(),
		Notifications: service.NewNotificationService(notifications, users, nil, nil, service.NotificationConfig{}, nopLogger{}),
		Users:         service.NewUserService(users, nopLogger{}),
		CostCenters:   service.NewCostCenterService(repository.NewCostCenterRepository(db.DB, logger), nopLogger{}),
		Metrics:       http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	}, nopLogger{})

	return &apiEnv{router: server.Router(), db: db}
}

func token(t *testing.T, sub string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: sub}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type call struct {
	method  string
	path    string
	user    string
	body    interface{}
	ifMatch string
}

func (e *apiEnv) do(t *testing.T, c call) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var body *bytes.Reader
	switch b := c.body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, c.user))
	}
	if c.ifMatch != "" {
		req.Header.Set("If-Match", c.ifMatch)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// data decodes the response payload into dst
func data(t *testing.T, resp Response, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func createGoods(t *testing.T, e *apiEnv) string {
	t.Helper()
	w, resp := e.do(t, call{method: http.MethodPost, path: "/api/goods-requests", user: "u1", body: workflow.GoodsRequestInput{
		ItemName: "Laptop", Quantity: 2, CostCenter: "IT", NeedDate: "1404-02-10",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		ID     string `json:"id"`
		Number string `json:"number"`
	}
	data(t, resp, &view)
	require.NotEmpty(t, view.ID)
	return view.ID
}

func TestHealthCheck(t *testing.T) {
	e := setupAPI(t)

	w, resp := e.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, _ = e.do(t, call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthentication(t *testing.T) {
	e := setupAPI(t)

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).SignedString([]byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"unknown user", "Bearer " + token(t, "ghost"), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, "u1"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			e.router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMe(t *testing.T) {
	e := setupAPI(t)

	w, resp := e.do(t, call{method: http.MethodGet, path: "/api/me", user: "p1"})
	require.Equal(t, http.StatusOK, w.Code)

	var actor entity.Actor
	data(t, resp, &actor)
	assert.Equal(t, "p1", actor.ID)
	assert.Equal(t, []entity.Role{entity.RoleProcurement}, actor.Roles)
}

func TestGoodsRequestLifecycleOverHTTP(t *testing.T) {
	e := setupAPI(t)
	id := createGoods(t, e)
	base := "/api/goods-requests/" + id

	w, _ := e.do(t, call{method: http.MethodGet, path: base, user: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"1"`, w.Header().Get("ETag"))

	w, resp := e.do(t, call{method: http.MethodPost, path: base + "/submit", user: "u1", ifMatch: `"7"`})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", resp.Code)

	w, _ = e.do(t, call{method: http.MethodPost, path: base + "/submit", user: "u1", ifMatch: `"1"`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"2"`, w.Header().Get("ETag"))

	inquiries := AddInquiriesRequest{Inquiries: []workflow.InquiryInput{
		{Quantity: 2}, {Quantity: 2}, {Quantity: 2},
	}}
	raw := `{"inquiries":[` +
		`{"unit_price":"100","quantity":2,"total_price":"200"},` +
		`{"unit_price":90,"quantity":2,"total_price":180},` +
		`{"unit_price":"120","quantity":2,"total_price":"240"}]}`

	w, resp = e.do(t, call{method: http.MethodPost, path: base + "/inquiries", user: "u1", body: raw, ifMatch: `"2"`})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", resp.Code)

	w, _ = e.do(t, call{method: http.MethodPost, path: base + "/inquiries", user: "p1", body: inquiries, ifMatch: `"2"`})
	assert.Equal(t, http.StatusBadRequest, w.Code, "inquiry without prices")

	w, _ = e.do(t, call{method: http.MethodPost, path: base + "/inquiries", user: "p1", body: raw, ifMatch: `"2"`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"3"`, w.Header().Get("ETag"))

	w, resp = e.do(t, call{method: http.MethodGet, path: base, user: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Status       string `json:"status"`
		PricesHidden bool   `json:"prices_hidden"`
		Inquiries    []struct {
			UnitPrice *string `json:"unit_price"`
		} `json:"inquiries"`
	}
	data(t, resp, &view)
	assert.Equal(t, "pending_management", view.Status)
	assert.True(t, view.PricesHidden)
	require.Len(t, view.Inquiries, 3)
	assert.Nil(t, view.Inquiries[0].UnitPrice)

	w, _ = e.do(t, call{method: http.MethodPost, path: base + "/approve-financial", user: "p1", ifMatch: `"3"`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = e.do(t, call{method: http.MethodPost, path: base + "/reject", user: "p1", body: NotesRequest{Notes: "no"}, ifMatch: `"3"`})
	assert.Equal(t, http.StatusForbidden, w.Code, "management decides in pending_management")
}

func TestGoodsRequestRejectIsTerminal(t *testing.T) {
	e := setupAPI(t)
	id := createGoods(t, e)
	base := "/api/goods-requests/" + id

	w, _ := e.do(t, call{method: http.MethodPost, path: base + "/submit", user: "u1", ifMatch: `"1"`})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, call{method: http.MethodPost, path: base + "/reject", user: "p1", body: NotesRequest{Notes: "out of budget"}, ifMatch: `"2"`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := e.do(t, call{method: http.MethodPost, path: base + "/reject", user: "p1", body: NotesRequest{Notes: "again"}, ifMatch: `"3"`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_state", resp.Code)
}

func TestRequestErrors(t *testing.T) {
	e := setupAPI(t)
	id := createGoods(t, e)

	tests := []struct {
		name string
		c    call
		want int
	}{
		{"unknown entity", call{method: http.MethodGet, path: "/api/goods-requests/missing", user: "u1"}, http.StatusNotFound},
		{"not visible", call{method: http.MethodGet, path: "/api/goods-requests/" + id, user: "c1"}, http.StatusForbidden},
		{"malformed body", call{method: http.MethodPost, path: "/api/goods-requests", user: "u1", body: "{"}, http.StatusBadRequest},
		{"missing fields", call{method: http.MethodPost, path: "/api/goods-requests", user: "u1", body: workflow.GoodsRequestInput{}}, http.StatusBadRequest},
		{"bad if-match", call{method: http.MethodPost, path: "/api/goods-requests/" + id + "/submit", user: "u1", ifMatch: "abc"}, http.StatusBadRequest},
		{"zero if-match", call{method: http.MethodPost, path: "/api/goods-requests/" + id + "/submit", user: "u1", ifMatch: `"0"`}, http.StatusBadRequest},
		{"bad confirm role", call{method: http.MethodPost, path: "/api/goods-requests/" + id + "/receipts/r1/confirm", user: "u1", body: ConfirmReceiptRequest{As: "coo"}, ifMatch: `"1"`}, http.StatusBadRequest},
		{"coo review without decision", call{method: http.MethodPost, path: "/api/project-proposals/x/coo-review", user: "c1", body: COOReviewRequest{Notes: "?"}}, http.StatusBadRequest},
		{"bad list limit", call{method: http.MethodGet, path: "/api/notifications?limit=ten", user: "u1"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := e.do(t, tt.c)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.False(t, resp.Success)
		})
	}
}

func TestMutatingRoutesRequireIfMatch(t *testing.T) {
	e := setupAPI(t)
	id := createGoods(t, e)
	base := "/api/goods-requests/" + id

	tests := []struct {
		name string
		c    call
	}{
		{"submit", call{method: http.MethodPost, path: base + "/submit", user: "u1"}},
		{"edit", call{method: http.MethodPut, path: base, user: "u1", body: workflow.GoodsRequestInput{
			ItemName: "Desk", Quantity: 1, CostCenter: "IT",
		}}},
		{"reject", call{method: http.MethodPost, path: base + "/reject", user: "p1", body: NotesRequest{Notes: "no"}}},
		{"payment submit", call{method: http.MethodPost, path: "/api/payment-requests/x/submit", user: "u1"}},
		{"proposal submit", call{method: http.MethodPost, path: "/api/project-proposals/x/submit", user: "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := e.do(t, tt.c)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "invalid_input", resp.Code)
		})
	}

	w, resp := e.do(t, call{method: http.MethodGet, path: base, user: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Status  string `json:"status"`
		Version int64  `json:"version"`
	}
	data(t, resp, &view)
	assert.Equal(t, "draft", view.Status)
	assert.Equal(t, int64(1), view.Version)
}

func TestListGoodsRequests(t *testing.T) {
	e := setupAPI(t)
	createGoods(t, e)

	w, resp := e.do(t, call{method: http.MethodGet, path: "/api/goods-requests", user: "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]interface{}
	data(t, resp, &all)
	assert.Len(t, all, 1)

	w, resp = e.do(t, call{method: http.MethodGet, path: "/api/goods-requests?status=completed", user: "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	var none []map[string]interface{}
	data(t, resp, &none)
	assert.Empty(t, none)

	w, resp = e.do(t, call{method: http.MethodGet, path: "/api/goods-requests", user: "c1"})
	require.Equal(t, http.StatusOK, w.Code)
	var hidden []map[string]interface{}
	data(t, resp, &hidden)
	assert.Empty(t, hidden, "coo cannot see goods requests")
}

func TestNotificationsOverHTTP(t *testing.T) {
	e := setupAPI(t)
	id := createGoods(t, e)

	w, _ := e.do(t, call{method: http.MethodPost, path: "/api/goods-requests/" + id + "/submit", user: "u1", ifMatch: `"1"`})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := e.do(t, call{method: http.MethodGet, path: "/api/notifications/unread-count", user: "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	var count UnreadCountResponse
	data(t, resp, &count)
	assert.Equal(t, 1, count.Count)

	w, resp = e.do(t, call{method: http.MethodGet, path: "/api/notifications", user: "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	var items []entity.Notification
	data(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].RequestID)

	w, _ = e.do(t, call{method: http.MethodPost, path: "/api/notifications/" + items[0].ID + "/read", user: "u1"})
	assert.Equal(t, http.StatusNotFound, w.Code, "not addressed to the requester")

	w, _ = e.do(t, call{method: http.MethodPost, path: "/api/notifications/" + items[0].ID + "/read", user: "p1"})
	require.Equal(t, http.StatusOK, w.Code)

	_, resp = e.do(t, call{method: http.MethodGet, path: "/api/notifications/unread-count", user: "p1"})
	data(t, resp, &count)
	assert.Equal(t, 0, count.Count)
}

func TestDirectoryEndpoints(t *testing.T) {
	e := setupAPI(t)

	w, _ := e.do(t, call{method: http.MethodPost, path: "/api/cost-centers", user: "u1", body: service.CostCenterInput{Name: "IT"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := e.do(t, call{method: http.MethodPost, path: "/api/cost-centers", user: "a1", body: service.CostCenterInput{Name: "IT"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cc entity.CostCenter
	data(t, resp, &cc)
	assert.NotEmpty(t, cc.ID)

	w, resp = e.do(t, call{method: http.MethodGet, path: "/api/cost-centers", user: "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	var centers []entity.CostCenter
	data(t, resp, &centers)
	assert.Len(t, centers, 1)

	w, _ = e.do(t, call{method: http.MethodDelete, path: "/api/cost-centers/" + cc.ID, user: "a1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = e.do(t, call{method: http.MethodGet, path: "/api/users", user: "u1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = e.do(t, call{method: http.MethodPut, path: "/api/users/d1", user: "a1", body: service.UserInput{
		Name: "Dev Manager", Roles: []entity.Role{entity.RoleDevManager},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u entity.User
	data(t, resp, &u)
	assert.Equal(t, "d1", u.ID)

	w, _ = e.do(t, call{method: http.MethodDelete, path: "/api/users/a1", user: "a1"})
	assert.Equal(t, http.StatusForbidden, w.Code, "admin cannot delete self")
}

func TestCORSPreflight(t *testing.T) {
	e := setupAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/goods-requests", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStorageFailureMapsTo503(t *testing.T) {
	e := setupAPI(t)
	require.NoError(t, e.db.Close())

	w, resp := e.do(t, call{method: http.MethodGet, path: "/api/goods-requests", user: "u1"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "storage_unavailable", resp.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.InvalidInput("op", "x"), http.StatusBadRequest},
		{apperr.Forbidden("op", "x"), http.StatusForbidden},
		{apperr.NotFound("op", "x"), http.StatusNotFound},
		{apperr.Conflict("op", "x"), http.StatusConflict},
		{apperr.InvalidState("op", "x"), http.StatusUnprocessableEntity},
		{apperr.StorageUnavailable("op", errors.New("disk")), http.StatusServiceUnavailable},
		{errUnauthenticated, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, _ := statusOf(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}
