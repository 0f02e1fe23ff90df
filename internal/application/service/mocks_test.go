package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockNotificationRepo struct {
	mu            sync.Mutex
	items         map[string]*entity.Notification
	listFunc      func(ctx context.Context, userID string, roles []entity.Role, limit int) ([]*entity.Notification, error)
	undelivered   []*entity.Notification
	pendingBefore time.Time
	markReadCalls int
}

func newMockNotificationRepo(items ...*entity.Notification) *mockNotificationRepo {
	m := &mockNotificationRepo{items: make(map[string]*entity.Notification)}
	for _, n := range items {
		m.items[n.ID] = n
	}
	return m
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotificationRepo) ListForRecipient(ctx context.Context, userID string, roles []entity.Role, limit int) ([]*entity.Notification, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, roles, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string, roles []entity.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	actor := entity.Actor{ID: userID, Roles: roles}
	for _, n := range m.items {
		if !n.IsRead && n.AddressedTo(actor) {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markReadCalls++
	n := m.items[id]
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &at
	}
	return nil
}

func (m *mockNotificationRepo) ListUndelivered(ctx context.Context, maxAttempts int, pendingBefore time.Time, limit int) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingBefore = pendingBefore
	var out []*entity.Notification
	for _, n := range m.undelivered {
		if n.Attempts >= maxAttempts {
			continue
		}
		if n.DeliveryStatus == entity.DeliveryStatusPending && n.CreatedAt.After(pendingBefore) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepo) RecordAttempt(ctx context.Context, id, status string, deliveredChannels []string, lastError string, deliveredAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.items[id]
	n.Attempts++
	n.DeliveredChannels = deliveredChannels
	if n.DeliveryStatus != entity.DeliveryStatusSent {
		n.DeliveryStatus = status
		n.LastError = lastError
	}
	if n.DeliveredAt == nil {
		n.DeliveredAt = deliveredAt
	}
	return nil
}

type mockUserRepo struct {
	users     map[string]*entity.User
	upserted  []*entity.User
	deleted   []string
	deleteErr error
}

func newMockUserRepo(users ...*entity.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *entity.User) error {
	m.users[user.ID] = user
	m.upserted = append(m.upserted, user)
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockChannel struct {
	name      string
	err       error
	delivered []string
	to        []*entity.User
}

func (m *mockChannel) Name() string { return m.name }

func (m *mockChannel) Deliver(ctx context.Context, n *entity.Notification, recipient *entity.User) error {
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, n.ID)
	m.to = append(m.to, recipient)
	return nil
}

type mockMetrics struct {
	deliveries map[string]int
}

func (m *mockMetrics) ObserveTransition(kind, trigger, outcome string, d time.Duration) {}

func (m *mockMetrics) ObserveDelivery(channel, outcome string) {
	if m.deliveries == nil {
		m.deliveries = make(map[string]int)
	}
	m.deliveries[channel+"/"+outcome]++
}
