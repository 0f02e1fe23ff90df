package lark

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// NotificationChannel delivers notifications as Lark IM text messages.
// Recipients without a Lark open id are skipped; role-addressed notifications
// have no single recipient and are left to the websocket channel.
type NotificationChannel struct {
	sender  port.LarkMessageSender
	baseURL string
	logger  *zap.Logger
}

// NewNotificationChannel creates a Lark delivery channel.
// baseURL, when set, is used to link the message to the entity page.
func NewNotificationChannel(sender port.LarkMessageSender, baseURL string, logger *zap.Logger) *NotificationChannel {
	return &NotificationChannel{
		sender:  sender,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Name implements port.NotificationChannel
func (c *NotificationChannel) Name() string {
	return "lark"
}

// Deliver implements port.NotificationChannel
func (c *NotificationChannel) Deliver(ctx context.Context, n *entity.Notification, recipient *entity.User) error {
	if recipient == nil || recipient.LarkOpenID == "" {
		c.logger.Debug("Skipping Lark delivery, no open id",
			zap.String("notification_id", n.ID),
			zap.String("recipient_id", n.RecipientID))
		return nil
	}
	return c.sender.SendMessage(ctx, recipient.LarkOpenID, c.text(n))
}

var entityPaths = map[entity.Kind]string{
	entity.KindGoodsRequest:    "goods-requests",
	entity.KindPaymentRequest:  "payment-requests",
	entity.KindProjectProposal: "project-proposals",
}

func (c *NotificationChannel) text(n *entity.Notification) string {
	if c.baseURL == "" {
		return n.Message
	}
	return fmt.Sprintf("%s\n%s/%s/%s", n.Message, c.baseURL, entityPaths[n.EntityKind], n.RequestID)
}
