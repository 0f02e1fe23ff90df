// Package workflow applies guarded transitions to goods requests, payment
// requests and project proposals.
//
// Every operation takes an explicit actor and the entity version the caller
// last read, and runs as one transaction: load, version check, permission
// check, payload validation, state machine fire, history append, versioned
// update and notification enqueue. Events are published only after the
// transaction commits.
package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/procurement-portal/internal/application/dispatcher"
	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/permission"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Repositories groups the persistence ports the engine needs
type Repositories struct {
	Goods         port.GoodsRequestRepository
	Payments      port.PaymentRequestRepository
	Proposals     port.ProjectProposalRepository
	History       port.HistoryRepository
	Notifications port.NotificationRepository
	Users         port.UserRepository
	Sequences     port.SequenceRepository
	Tx            port.TransactionManager
}

// DefaultNumberingYear is the calendar year used in request numbers when none is configured
const DefaultNumberingYear = 1404

// Engine holds the collaborators shared by the per-kind workflows
type Engine struct {
	repos      Repositories
	resolver   *permission.Resolver
	dispatcher dispatcher.Dispatcher
	metrics    port.MetricsRecorder
	logger     Logger
	locks      *keyedMutex
	now        func() time.Time
	newID      func() string
	year       int
}

// EngineOption configures the workflow engine
type EngineOption func(*Engine)

// WithDispatcher sets the event dispatcher for post-commit events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithMetrics sets the recorder for transition outcomes
func WithMetrics(m port.MetricsRecorder) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets a logger for the engine
func WithLogger(l Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithNumberingYear sets the year embedded in request numbers
func WithNumberingYear(year int) EngineOption {
	return func(e *Engine) {
		if year > 0 {
			e.year = year
		}
	}
}

// NewEngine creates a new workflow engine
func NewEngine(repos Repositories, resolver *permission.Resolver, opts ...EngineOption) *Engine {
	if resolver == nil {
		resolver = permission.Default()
	}

	e := &Engine{
		repos:    repos,
		resolver: resolver,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		year:     DefaultNumberingYear,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Goods returns the goods request workflow
func (e *Engine) Goods() GoodsWorkflow {
	return &goodsWorkflow{e: e}
}

// Payments returns the payment request workflow
func (e *Engine) Payments() PaymentWorkflow {
	return &paymentWorkflow{e: e}
}

// Proposals returns the project proposal workflow
func (e *Engine) Proposals() ProposalWorkflow {
	return &proposalWorkflow{e: e}
}

// Resolver returns the permission resolver used by the engine
func (e *Engine) Resolver() *permission.Resolver {
	return e.resolver
}

