package domain

import (
	"context"
	"log"
	"time"

	"example.com/volunteer/internal/observability"
)

// VolunteerDirectory is the remote volunteer-record surface the syncer
// writes to.
type VolunteerDirectory interface {
	UpsertVolunteer(ctx context.Context, record VolunteerRecord) error
}

// SyncerOption configures optional behaviour for the Syncer.
type SyncerOption func(*Syncer)

// WithSyncerLogger overrides the logger used to report failed syncs.
func WithSyncerLogger(logger *log.Logger) SyncerOption {
	return func(s *Syncer) {
		s.logger = logger
	}
}

// WithSyncTimeout bounds each individual write-back attempt.
func WithSyncTimeout(timeout time.Duration) SyncerOption {
	return func(s *Syncer) {
		s.timeout = timeout
	}
}

// Syncer pushes derived hour totals to the remote volunteer record on a
// single worker goroutine. Delivery is best effort and last-write-wins:
// a newer total replaces any still-pending one, failures are logged and
// never reach the mutation that triggered them.
type Syncer struct {
	directory VolunteerDirectory
	email     string
	fullName  string
	timeout   time.Duration
	logger    *log.Logger
	updates   chan float64
	done      chan struct{}
}

// NewSyncer constructs a Syncer for the signed-in user's record.
func NewSyncer(directory VolunteerDirectory, email, fullName string, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		directory: directory,
		email:     email,
		fullName:  fullName,
		timeout:   10 * time.Second,
		logger:    log.New(log.Writer(), "[writeback] ", log.LstdFlags),
		updates:   make(chan float64, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue records a total for delivery, replacing any pending one.
// Never blocks.
func (s *Syncer) Enqueue(totalHours float64) {
	for {
		select {
		case s.updates <- totalHours:
			return
		default:
			// Drop the stale pending total and retry with the new one.
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// Run delivers queued totals until the context is cancelled, then makes
// one final attempt at whatever is still pending. It should be called
// in a goroutine.
func (s *Syncer) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.flushPending()
			return
		case total := <-s.updates:
			s.sync(ctx, total)
		}
	}
}

// Wait blocks until Run has returned.
func (s *Syncer) Wait() {
	<-s.done
}

func (s *Syncer) flushPending() {
	select {
	case total := <-s.updates:
		// The run context is already cancelled; give the final attempt
		// its own deadline.
		s.sync(context.Background(), total)
	default:
	}
}

func (s *Syncer) sync(ctx context.Context, totalHours float64) {
	if s.email == "" {
		return
	}
	observability.SetTotalHours(totalHours)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.directory.UpsertVolunteer(ctx, VolunteerRecord{
		FullName: s.fullName,
		Email:    s.email,
		Hours:    totalHours,
	})
	observability.RecordWriteback(err)
	if err != nil {
		s.logger.Printf("volunteer hours sync failed (email=%s, total=%.1f): %v", s.email, totalHours, err)
	}
}
