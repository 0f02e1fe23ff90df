package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveTransition("goods_request", "submit", "ok", 3*time.Millisecond)
	r.ObserveTransition("goods_request", "submit", "ok", 5*time.Millisecond)
	r.ObserveTransition("goods_request", "submit", "forbidden", time.Millisecond)
	r.ObserveDelivery("lark", "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitionsTotal.WithLabelValues("goods_request", "submit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitionsTotal.WithLabelValues("goods_request", "submit", "forbidden")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deliveriesTotal.WithLabelValues("lark", "failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.transitionDuration))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.ObserveDelivery("websocket", "sent")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `procurement_notification_deliveries_total{channel="websocket",outcome="sent"} 1`))
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
