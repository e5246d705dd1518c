package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/subdesk/pkg/audit"
	"github.com/platinummonkey/subdesk/pkg/observability"
	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/storage"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// ErrInvalidIndex is returned when a 1-based subscriber position is out of range
var ErrInvalidIndex = errors.New("invalid subscriber number")

// EditRequest describes changes to an existing subscriber. nil fields are
// left unchanged.
type EditRequest struct {
	PhoneNumber *string
	Plan        *plans.Plan
	DataUsed    *float64
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithListeners attaches listeners to every subscriber the registry creates
// or loads
func WithListeners(listeners ...subscribers.UsageListener) Option {
	return func(r *Registry) {
		r.listeners = append(r.listeners, listeners...)
	}
}

// WithAuditor records every create, edit and usage attempt
func WithAuditor(a audit.Logger) Option {
	return func(r *Registry) {
		if a != nil {
			r.auditor = a
		}
	}
}

// WithBackendLabel sets the backend label on storage metrics
func WithBackendLabel(backend string) Option {
	return func(r *Registry) {
		r.backend = backend
	}
}

// Registry is the in-memory, ordered subscriber list backed by a RecordStore.
// Every successful mutation rewrites the full store.
type Registry struct {
	mu        sync.Mutex
	catalog   *plans.Catalog
	store     storage.RecordStore
	subs      []*subscribers.Subscriber
	listeners []subscribers.UsageListener
	log       *logrus.Logger
	metrics   *observability.Metrics
	auditor   audit.Logger
	backend   string
}

// NewRegistry creates an empty registry. Call Load to populate it from store.
func NewRegistry(catalog *plans.Catalog, store storage.RecordStore, opts ...Option) *Registry {
	r := &Registry{
		catalog: catalog,
		store:   store,
		log:     logrus.New(),
		auditor: audit.NoOpLogger{},
		backend: storage.TypeFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the plan catalog used to resolve plan names
func (r *Registry) Catalog() *plans.Catalog {
	return r.catalog
}

// Load replaces the in-memory list with the store's content
func (r *Registry) Load(ctx context.Context) (err error) {
	defer func() { r.recordOperation("load", err) }()

	start := time.Now()
	subs, err := r.store.Load(ctx, r.catalog)
	r.recordStorage("load", start, err)
	if err != nil {
		return fmt.Errorf("failed to load subscribers: %w", err)
	}

	for _, s := range subs {
		r.attachListeners(s)
	}

	r.mu.Lock()
	r.subs = subs
	r.setGauge()
	r.mu.Unlock()

	r.log.WithField("count", len(subs)).Debug("Loaded subscribers")
	return nil
}

// Save writes the in-memory list to the store
func (r *Registry) Save(ctx context.Context) (err error) {
	defer func() { r.recordOperation("save", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx)
}

// ListAll returns the subscribers in insertion order
func (r *Registry) ListAll() []*subscribers.Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*subscribers.Subscriber, len(r.subs))
	copy(out, r.subs)
	return out
}

// Len returns the number of subscribers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Subscriber returns the subscriber at a 1-based position
func (r *Registry) Subscriber(i int) (*subscribers.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscriberLocked(i)
}

// LookupPlanByIndex returns the catalog plan at a 1-based menu position
func (r *Registry) LookupPlanByIndex(i int) (*plans.Plan, error) {
	return r.catalog.ByIndex(i)
}

// Create appends a new subscriber and persists the list. When the save fails
// the subscriber is not kept.
func (r *Registry) Create(ctx context.Context, p subscribers.Params) (sub *subscribers.Subscriber, err error) {
	defer func() { r.recordOperation("create", err) }()

	sub, err = subscribers.New(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	r.attachListeners(sub)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, sub)
	if err := r.saveLocked(ctx); err != nil {
		r.subs = r.subs[:len(r.subs)-1]
		return nil, err
	}
	r.setGauge()

	r.log.WithFields(logrus.Fields{
		"subscriber": sub.Name(),
		"plan":       sub.PlanName(),
	}).Info("Subscriber created")

	event := subscriberEvent(audit.EventTypeSubscriberCreate, audit.EventStatusSuccess, sub)
	event.Metadata["data_used"] = sub.DataUsed()
	r.recordAudit(ctx, event)
	return sub, nil
}

// Edit applies req to the subscriber at a 1-based position and persists the
// list. A data override goes through SetUsage and skips the quota check.
// When the save fails the subscriber is restored to its previous values.
func (r *Registry) Edit(ctx context.Context, i int, req EditRequest) (sub *subscribers.Subscriber, err error) {
	defer func() { r.recordOperation("edit", err) }()

	if req.DataUsed != nil && *req.DataUsed < 0 {
		return nil, subscribers.ErrNegativeUsage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, err = r.subscriberLocked(i)
	if err != nil {
		return nil, err
	}

	before := snapshot(sub)
	undo := checkpoint(sub)

	if req.PhoneNumber != nil {
		if err := sub.SetPhoneNumber(*req.PhoneNumber); err != nil {
			return nil, err
		}
	}
	if req.Plan != nil {
		sub.SetPlan(req.Plan)
	}
	if req.DataUsed != nil {
		if err := sub.SetUsage(*req.DataUsed); err != nil {
			undo()
			return nil, err
		}
	}

	if err := r.saveLocked(ctx); err != nil {
		undo()
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"subscriber": sub.Name(),
		"plan":       sub.PlanName(),
		"data_used":  sub.DataUsed(),
	}).Info("Subscriber updated")

	event := subscriberEvent(audit.EventTypeSubscriberUpdate, audit.EventStatusSuccess, sub)
	event.Changes = diff(before, snapshot(sub))
	r.recordAudit(ctx, event)
	return sub, nil
}

// RecordUsage adds amount to the subscriber at a 1-based position. Accepted
// usage is persisted. A rejected increment returns the quota error from the
// subscriber, after its listeners have run, and leaves the store untouched.
// A failed save reverts the increment.
func (r *Registry) RecordUsage(ctx context.Context, i int, amount float64) (sub *subscribers.Subscriber, err error) {
	defer func() { r.recordOperation("usage", err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, err = r.subscriberLocked(i)
	if err != nil {
		return nil, err
	}

	undo := checkpoint(sub)
	if err := sub.RecordUsage(amount); err != nil {
		if subscribers.IsQuotaExceeded(err) {
			if r.metrics != nil {
				r.metrics.QuotaRejectionsTotal.WithLabelValues(sub.PlanName()).Inc()
			}
			event := subscriberEvent(audit.EventTypeUsageRecord, audit.EventStatusDenied, sub)
			event.Metadata["amount"] = amount
			event.ErrorMessage = err.Error()
			r.recordAudit(ctx, event)
		}
		return sub, err
	}

	if err := r.saveLocked(ctx); err != nil {
		undo()
		return sub, err
	}

	event := subscriberEvent(audit.EventTypeUsageRecord, audit.EventStatusSuccess, sub)
	event.Metadata["amount"] = amount
	event.Metadata["data_used"] = sub.DataUsed()
	r.recordAudit(ctx, event)
	return sub, nil
}

func (r *Registry) subscriberLocked(i int) (*subscribers.Subscriber, error) {
	if i < 1 || i > len(r.subs) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, i)
	}
	return r.subs[i-1], nil
}

func (r *Registry) saveLocked(ctx context.Context) error {
	start := time.Now()
	err := r.store.Save(ctx, r.subs)
	r.recordStorage("save", start, err)
	if err != nil {
		r.log.WithError(err).Error("Failed to save subscribers")
		return fmt.Errorf("failed to save subscribers: %w", err)
	}
	return nil
}

func (r *Registry) recordAudit(ctx context.Context, event *audit.AuditEvent) {
	if err := r.auditor.Log(ctx, event); err != nil {
		r.log.WithError(err).WithField("event_type", event.EventType).Warn("Failed to write audit event")
	}
}

func subscriberEvent(eventType audit.EventType, status audit.EventStatus, sub *subscribers.Subscriber) *audit.AuditEvent {
	event := audit.NewEvent(eventType, status)
	event.Subscriber = sub.Name()
	event.PhoneNumber = sub.PhoneNumber()
	event.Plan = sub.PlanName()
	return event
}

// checkpoint captures the mutable fields of sub and returns a func that puts
// them back
func checkpoint(sub *subscribers.Subscriber) func() {
	phone, plan, used := sub.PhoneNumber(), sub.Plan(), sub.DataUsed()
	return func() {
		_ = sub.SetPhoneNumber(phone)
		sub.SetPlan(plan)
		_ = sub.SetUsage(used)
	}
}

func snapshot(sub *subscribers.Subscriber) map[string]interface{} {
	return map[string]interface{}{
		"phone_number": sub.PhoneNumber(),
		"plan":         sub.PlanName(),
		"data_used":    sub.DataUsed(),
	}
}

// diff keeps only the fields whose value changed
func diff(before, after map[string]interface{}) *audit.ChangeDetails {
	changes := &audit.ChangeDetails{
		Before: make(map[string]interface{}),
		After:  make(map[string]interface{}),
	}
	for k, v := range after {
		if before[k] != v {
			changes.Before[k] = before[k]
			changes.After[k] = v
		}
	}
	if changes.Empty() {
		return nil
	}
	return changes
}

func (r *Registry) attachListeners(s *subscribers.Subscriber) {
	for _, l := range r.listeners {
		s.AddListener(l)
	}
}

func (r *Registry) setGauge() {
	if r.metrics != nil {
		r.metrics.SubscribersTotal.Set(float64(len(r.subs)))
	}
}

func (r *Registry) recordOperation(op string, err error) {
	if r.metrics != nil {
		r.metrics.RecordOperation(op, err)
	}
}

func (r *Registry) recordStorage(op string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordStorage(op, r.backend, start, err)
	}
}
