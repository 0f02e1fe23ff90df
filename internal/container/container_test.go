package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/dispatcher"
	"github.com/garyjia/procurement-portal/internal/domain/event"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "nested", "portal.db")
	cfg.Auth.JWTSecret = "container-test-secret"
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Auth.JWTSecret = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Lark.Enabled = true
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err, "lark credentials are required when enabled")
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())

	health := c.Health()
	assert.False(t, health.Overall)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start")

	assert.NotNil(t, c.Engine())
	assert.NotNil(t, c.Services().Notification)
	assert.NotNil(t, c.Services().User)
	assert.NotNil(t, c.Services().CostCenter)
	assert.NotNil(t, c.Repositories().Workflow.Goods)
	assert.NotNil(t, c.HTTPServer())
	assert.Equal(t, 1, c.Workers().GetWorkerCount())
	require.Len(t, c.Dispatcher().ListHandlers(event.TypeNotificationsQueued), 1)
	require.Len(t, c.Dispatcher().ListHandlers(dispatcher.AnyType), 1)
	assert.Equal(t, "event_log", c.Dispatcher().ListHandlers(dispatcher.AnyType)[0].Name)

	health = c.Health()
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)
	assert.True(t, health.Components["workers"].Healthy)
	assert.True(t, health.Components["worker:NotificationWorker"].Healthy)
	assert.True(t, health.Components["dispatcher"].Healthy)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close(), "second close")
	assert.Error(t, c.Start(context.Background()), "start after close")
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("id", "gr-1", 42, "skipped", "count", 3, "dangling")
	require.Len(t, fields, 2)
	assert.Equal(t, "id", fields[0].Key)
	assert.Equal(t, "count", fields[1].Key)
}
