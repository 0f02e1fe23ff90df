package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/event"
)

const (
	// DefaultNotificationLimit caps a notification listing when the caller gives no limit
	DefaultNotificationLimit = 100
	// DefaultMaxDeliveryAttempts is how often a notification is tried before it is left failed
	DefaultMaxDeliveryAttempts = 5
	// DefaultPendingGrace is how long a pending row belongs to the delivery that queued it
	DefaultPendingGrace = 30 * time.Second
)

// NotificationService lists notifications for users and pushes them to delivery channels
type NotificationService interface {
	List(ctx context.Context, actor entity.Actor, limit int) ([]*entity.Notification, error)
	UnreadCount(ctx context.Context, actor entity.Actor) (int, error)
	MarkRead(ctx context.Context, actor entity.Actor, id string) (*entity.Notification, error)

	// Deliver pushes the given notifications to every channel
	Deliver(ctx context.Context, ids ...string) error
	// DeliverPending retries undelivered notifications and returns how many were sent
	DeliverPending(ctx context.Context, batch int) (int, error)
	// HandleQueued is the dispatcher handler for notification.queued events
	HandleQueued(ctx context.Context, evt *event.Event) error
}

// NotificationConfig tunes delivery
type NotificationConfig struct {
	MaxAttempts int
	// PendingGrace keeps DeliverPending away from rows the queued event is still delivering.
	// Set it to the retry worker's poll interval.
	PendingGrace time.Duration
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	userRepo         port.UserRepository
	channels         []port.NotificationChannel
	metrics          port.MetricsRecorder
	maxAttempts      int
	pendingGrace     time.Duration
	now              func() time.Time
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	userRepo port.UserRepository,
	channels []port.NotificationChannel,
	metrics port.MetricsRecorder,
	cfg NotificationConfig,
	logger Logger,
) NotificationService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxDeliveryAttempts
	}
	pendingGrace := cfg.PendingGrace
	if pendingGrace <= 0 {
		pendingGrace = DefaultPendingGrace
	}
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		channels:         channels,
		metrics:          metrics,
		maxAttempts:      maxAttempts,
		pendingGrace:     pendingGrace,
		now:              func() time.Time { return time.Now().UTC() },
		logger:           logger,
	}
}

// List returns the actor's notifications, newest first
func (s *notificationServiceImpl) List(ctx context.Context, actor entity.Actor, limit int) ([]*entity.Notification, error) {
	if actor.ID == "" {
		return nil, apperr.Forbidden("list notifications", "an identified actor is required")
	}
	if limit <= 0 || limit > DefaultNotificationLimit {
		limit = DefaultNotificationLimit
	}
	return s.notificationRepo.ListForRecipient(ctx, actor.ID, actor.Roles, limit)
}

// UnreadCount returns how many of the actor's notifications are unread
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, actor entity.Actor) (int, error) {
	if actor.ID == "" {
		return 0, apperr.Forbidden("count notifications", "an identified actor is required")
	}
	return s.notificationRepo.CountUnread(ctx, actor.ID, actor.Roles)
}

// MarkRead marks a notification read. Marking it again keeps the first read time.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor entity.Actor, id string) (*entity.Notification, error) {
	const op = "mark notification read"

	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Notifications addressed to someone else are reported as missing
	if n == nil || !n.AddressedTo(actor) {
		return nil, apperr.NotFound(op, "notification %s", id)
	}

	if err := s.notificationRepo.MarkRead(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.notificationRepo.GetByID(ctx, id)
}

// HandleQueued delivers the notifications named in a notification.queued event
func (s *notificationServiceImpl) HandleQueued(ctx context.Context, evt *event.Event) error {
	ids := evt.GetPayloadStrings(event.KeyNotificationIDs)
	if len(ids) == 0 {
		return nil
	}
	return s.Deliver(ctx, ids...)
}

// Deliver pushes each notification to the channels and records the outcome on the row
func (s *notificationServiceImpl) Deliver(ctx context.Context, ids ...string) error {
	var errs []error
	for _, id := range ids {
		n, err := s.notificationRepo.GetByID(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n == nil {
			s.logger.Error("Notification to deliver not found", "notification_id", id)
			continue
		}
		if err := s.deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeliverPending retries a batch of failed notifications and of pending ones older than the grace period
func (s *notificationServiceImpl) DeliverPending(ctx context.Context, batch int) (int, error) {
	pending, err := s.notificationRepo.ListUndelivered(ctx, s.maxAttempts, s.now().Add(-s.pendingGrace), batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := s.deliver(ctx, n); err == nil {
			sent++
		}
	}

	if len(pending) > 0 {
		s.logger.Info("Retried pending notifications", "count", len(pending), "sent", sent)
	}
	return sent, nil
}

func (s *notificationServiceImpl) deliver(ctx context.Context, n *entity.Notification) error {
	if n.DeliveryStatus == entity.DeliveryStatusSent {
		return nil
	}

	var recipient *entity.User
	if n.RecipientID != "" {
		u, err := s.userRepo.GetByID(ctx, n.RecipientID)
		if err != nil {
			return err
		}
		recipient = u
	}

	delivered := append([]string(nil), n.DeliveredChannels...)
	var failures []string
	for _, ch := range s.channels {
		if n.DeliveredVia(ch.Name()) {
			continue
		}
		err := ch.Deliver(ctx, n, recipient)
		outcome := "sent"
		if err == nil {
			delivered = append(delivered, ch.Name())
		} else {
			outcome = "failed"
			failures = append(failures, fmt.Sprintf("%s: %v", ch.Name(), err))
			s.logger.Error("Failed to deliver notification",
				"notification_id", n.ID,
				"channel", ch.Name(),
				"error", err,
			)
		}
		if s.metrics != nil {
			s.metrics.ObserveDelivery(ch.Name(), outcome)
		}
	}

	if len(failures) > 0 {
		lastError := strings.Join(failures, "; ")
		if err := s.notificationRepo.RecordAttempt(ctx, n.ID, entity.DeliveryStatusFailed, delivered, lastError, nil); err != nil {
			return err
		}
		return fmt.Errorf("failed to deliver notification %s: %s", n.ID, lastError)
	}

	deliveredAt := s.now()
	if err := s.notificationRepo.RecordAttempt(ctx, n.ID, entity.DeliveryStatusSent, delivered, "", &deliveredAt); err != nil {
		return err
	}

	s.logger.Info("Notification delivered",
		"notification_id", n.ID,
		"request_number", n.RequestNumber,
		"recipient_id", n.RecipientID,
		"recipient_role", n.RecipientRole,
		"attempts", n.Attempts+1,
	)
	return nil
}
