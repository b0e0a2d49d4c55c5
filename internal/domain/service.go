// Package domain implements the reconciliation core of the volunteer
// client: merging the remotely hosted activity catalog with the locally
// persisted joined-activity set and payment list, and keeping the
// derived hour total flowing back to the remote volunteer record.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyJoined is returned when joining an activity that is
	// already a member of the joined set.
	ErrAlreadyJoined = errors.New("activity already joined")
	// ErrUnknownActivity is returned when the requested activity is not
	// present in the last-fetched catalog.
	ErrUnknownActivity = errors.New("activity not in catalog")
)

// CatalogClient captures the remote activity operations the engine needs.
type CatalogClient interface {
	ListActivities(ctx context.Context) ([]Activity, error)
	CreateActivity(ctx context.Context, draft ActivityDraft) (*Activity, error)
	DeleteActivity(ctx context.Context, id string) error
}

// StateStore persists the client-owned collections across restarts.
// Implementations treat malformed stored data as absent.
type StateStore interface {
	LoadJoined() ([]string, error)
	SaveJoined(ids []string) error
	LoadPayments() ([]Payment, error)
	SavePayments(payments []Payment) error
}

// Scheduler receives derived hour totals for best-effort remote
// write-back. Enqueue must never block the caller.
type Scheduler interface {
	Enqueue(totalHours float64)
}

// Snapshot is the derived, render-ready view of the current state.
type Snapshot struct {
	Catalog    []Activity
	Mine       []Activity
	TotalHours float64
	Payments   []Payment // newest first
	TotalPaid  float64
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used to report degraded operations.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPruneOnReload removes joined IDs that vanished from the catalog
// from the persisted set during Reload. By default a stale ID stays
// persisted and is merely excluded from the derived view.
func WithPruneOnReload() Option {
	return func(s *Service) {
		s.prune = true
	}
}

// Service owns the in-memory application state and coordinates the two
// sources of truth: the remote catalog and the local store. All state
// lives here rather than in package-level variables; mutations are
// serialised by a mutex.
type Service struct {
	catalog   CatalogClient
	store     StateStore
	scheduler Scheduler
	logger    *log.Logger
	prune     bool

	mu         sync.Mutex
	activities []Activity
	joined     []string
	payments   []Payment
	observers  []func(Snapshot)
}

// NewService constructs a Service. The returned service holds no state
// until Load or Reload is called.
func NewService(catalog CatalogClient, store StateStore, scheduler Scheduler, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		store:     store,
		scheduler: scheduler,
		logger:    log.New(log.Writer(), "[reconcile] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers an observer invoked with a fresh snapshot after
// every state change. Observers run on the mutating goroutine.
func (s *Service) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Load restores the locally persisted collections and then fetches the
// catalog. Local read failures degrade to empty collections; a catalog
// fetch failure is returned to the caller, which decides whether to
// degrade to an empty view or abort.
func (s *Service) Load(ctx context.Context) error {
	joined, err := s.store.LoadJoined()
	if err != nil {
		s.logger.Printf("joined set unreadable, starting empty: %v", err)
		joined = nil
	}
	payments, err := s.store.LoadPayments()
	if err != nil {
		s.logger.Printf("payment list unreadable, starting empty: %v", err)
		payments = nil
	}

	s.mu.Lock()
	s.joined = joined
	s.payments = payments
	s.mu.Unlock()

	return s.Reload(ctx)
}

// Reload replaces the in-memory catalog with a fresh full fetch and
// re-derives the personal view against the existing joined set. On
// failure the previous catalog is kept. A successful reload schedules a
// write-back so the remote volunteer record tracks the derived total.
func (s *Service) Reload(ctx context.Context) error {
	activities, err := s.catalog.ListActivities(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	s.mu.Lock()
	s.activities = activities
	if s.prune {
		s.pruneJoinedLocked()
	}
	s.mu.Unlock()

	s.scheduleWriteback()
	s.notify()
	return nil
}

// pruneJoinedLocked drops joined IDs that no longer resolve against the
// catalog and persists the shrunken set. Callers hold s.mu.
func (s *Service) pruneJoinedLocked() {
	inCatalog := make(map[string]struct{}, len(s.activities))
	for _, activity := range s.activities {
		inCatalog[activity.ID] = struct{}{}
	}

	kept := make([]string, 0, len(s.joined))
	for _, id := range s.joined {
		if _, ok := inCatalog[id]; ok {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(s.joined) {
		return
	}
	s.joined = kept
	if err := s.store.SaveJoined(copyIDs(s.joined)); err != nil {
		s.logger.Printf("persist pruned joined set: %v", err)
	}
}

// Join adds the activity to the joined set. Joining twice is an error
// reported to the caller, not silently ignored. The local mutation
// succeeds regardless of the eventual write-back outcome.
func (s *Service) Join(activityID string) error {
	s.mu.Lock()
	if s.isJoinedLocked(activityID) {
		s.mu.Unlock()
		return ErrAlreadyJoined
	}
	if !s.inCatalogLocked(activityID) {
		s.mu.Unlock()
		return ErrUnknownActivity
	}
	s.joined = append(s.joined, activityID)
	ids := copyIDs(s.joined)
	s.mu.Unlock()

	if err := s.store.SaveJoined(ids); err != nil {
		return fmt.Errorf("persist joined set: %w", err)
	}

	s.scheduleWriteback()
	s.notify()
	return nil
}

// Leave removes the activity from the joined set. Leaving an activity
// that was never joined is a no-op and not an error.
func (s *Service) Leave(activityID string) error {
	return s.unjoin(activityID)
}

// RemoveActivity deletes a hosted activity from the remote catalog (an
// Owner action), unjoins it locally, and refreshes the catalog. The
// local unjoin happens even when the remote delete fails; the remote
// error is still reported so the caller can surface it.
func (s *Service) RemoveActivity(ctx context.Context, activityID string) error {
	deleteErr := s.catalog.DeleteActivity(ctx, activityID)
	if deleteErr != nil {
		s.logger.Printf("delete activity %s: %v", activityID, deleteErr)
	}

	if err := s.unjoin(activityID); err != nil {
		return err
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Printf("reload after delete: %v", err)
	}
	return deleteErr
}

func (s *Service) unjoin(activityID string) error {
	s.mu.Lock()
	kept := make([]string, 0, len(s.joined))
	for _, id := range s.joined {
		if id != activityID {
			kept = append(kept, id)
		}
	}
	s.joined = kept
	ids := copyIDs(s.joined)
	s.mu.Unlock()

	if err := s.store.SaveJoined(ids); err != nil {
		return fmt.Errorf("persist joined set: %w", err)
	}

	s.scheduleWriteback()
	s.notify()
	return nil
}

// CreateActivity inserts a new hosted activity into the remote catalog
// and refreshes the local copy so the assigned ID becomes visible.
func (s *Service) CreateActivity(ctx context.Context, draft ActivityDraft) (*Activity, error) {
	created, err := s.catalog.CreateActivity(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Printf("reload after create: %v", err)
	}
	return created, nil
}

// AddPayment records a payment locally. An empty description defaults
// to "Payment". Payments are never synced remotely.
func (s *Service) AddPayment(amount float64, date, description string) (Payment, error) {
	if strings.TrimSpace(description) == "" {
		description = "Payment"
	}
	payment := Payment{
		ID:          uuid.NewString(),
		Amount:      amount,
		Date:        date,
		Description: description,
	}

	s.mu.Lock()
	s.payments = append(s.payments, payment)
	list := copyPayments(s.payments)
	s.mu.Unlock()

	if err := s.store.SavePayments(list); err != nil {
		return payment, fmt.Errorf("persist payments: %w", err)
	}
	s.notify()
	return payment, nil
}

// DeletePayment removes a payment by ID. Deleting an unknown ID is a
// no-op.
func (s *Service) DeletePayment(id string) error {
	s.mu.Lock()
	kept := make([]Payment, 0, len(s.payments))
	for _, payment := range s.payments {
		if payment.ID != id {
			kept = append(kept, payment)
		}
	}
	s.payments = kept
	list := copyPayments(s.payments)
	s.mu.Unlock()

	if err := s.store.SavePayments(list); err != nil {
		return fmt.Errorf("persist payments: %w", err)
	}
	s.notify()
	return nil
}

// Snapshot derives the render-ready view from the current state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Joined returns a copy of the persisted joined-ID set.
func (s *Service) Joined() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIDs(s.joined)
}

func (s *Service) snapshotLocked() Snapshot {
	mine := DeriveMine(s.activities, s.joined)
	return Snapshot{
		Catalog:    append([]Activity(nil), s.activities...),
		Mine:       mine,
		TotalHours: TotalHours(mine),
		Payments:   SortPaymentsByDateDesc(s.payments),
		TotalPaid:  TotalPaid(s.payments),
	}
}

// scheduleWriteback hands the current derived total to the scheduler.
// Write-back is best-effort telemetry: it never blocks and its outcome
// never reverses a local mutation.
func (s *Service) scheduleWriteback() {
	if s.scheduler == nil {
		return
	}
	s.mu.Lock()
	total := TotalHours(DeriveMine(s.activities, s.joined))
	s.mu.Unlock()
	s.scheduler.Enqueue(total)
}

func (s *Service) notify() {
	s.mu.Lock()
	observers := append(([]func(Snapshot))(nil), s.observers...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (s *Service) isJoinedLocked(activityID string) bool {
	for _, id := range s.joined {
		if id == activityID {
			return true
		}
	}
	return false
}

func (s *Service) inCatalogLocked(activityID string) bool {
	for _, activity := range s.activities {
		if activity.ID == activityID {
			return true
		}
	}
	return false
}

func copyIDs(ids []string) []string {
	return append([]string(nil), ids...)
}

func copyPayments(payments []Payment) []Payment {
	return append([]Payment(nil), payments...)
}
