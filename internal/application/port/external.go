package port

import (
	"context"
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// LarkMessageSender defines message sending operations
type LarkMessageSender interface {
	SendMessage(ctx context.Context, openID string, content string) error
}

// NotificationChannel pushes a stored notification to the outside world.
// recipient is nil for role-addressed notifications.
type NotificationChannel interface {
	Name() string
	Deliver(ctx context.Context, n *entity.Notification, recipient *entity.User) error
}

// MetricsRecorder receives workflow and delivery observations
type MetricsRecorder interface {
	ObserveTransition(kind, trigger, outcome string, duration time.Duration)
	ObserveDelivery(channel, outcome string)
}
