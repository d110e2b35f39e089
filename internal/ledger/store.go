// Package ledger holds the live ledger: one snapshot guarded by a mutex,
// committed in memory first and persisted key by key in the background.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"envelope/internal/budget"
	"envelope/internal/core"
	"envelope/internal/log"
	"envelope/internal/persistence"
)

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("ledger store closed")

// Publisher announces committed changes. Failures are logged and never fail
// the command that produced the change.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, operation string, keys []string, version int64) error
}

type Option func(*Store)

// WithEngine sets the mutation engine, and with it the spend policy.
func WithEngine(e budget.Engine) Option {
	return func(s *Store) { s.engine = e }
}

func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithWriterConfig(c WriterConfig) Option {
	return func(s *Store) { s.writerConfig = c }
}

// WithClock replaces time.Now for transaction dates and reconciliation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// OnPersistError registers a handler for writes that failed every attempt.
// It runs on the writer goroutine, never while the store lock is held, so
// it may read the store.
func OnPersistError(fn func(*budget.PersistenceError)) Option {
	return func(s *Store) { s.onPersistError = fn }
}

type Store struct {
	adapter        persistence.Adapter
	engine         budget.Engine
	publisher      Publisher
	logger         *log.Logger
	writerConfig   WriterConfig
	now            func() time.Time
	onPersistError func(*budget.PersistenceError)

	mu        sync.RWMutex
	snap      budget.Snapshot
	planName  string
	version   int64
	persisted map[string][]byte
	closed    bool
	writer    *writer
}

// Open loads every key from adapter, seeds default groups into an empty
// ledger, repairs invariants and starts the background writer.
func Open(ctx context.Context, adapter persistence.Adapter, opts ...Option) (*Store, error) {
	s := &Store{
		adapter:      adapter,
		writerConfig: DefaultWriterConfig(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default(log.ComponentLedger)
	}

	raw, err := loadAll(ctx, adapter)
	if err != nil {
		return nil, err
	}
	snap, planName, err := decodeAll(raw)
	if err != nil {
		return nil, err
	}

	if len(snap.Groups) == 0 {
		snap = budget.Seed(snap)
		s.logger.InfoContext(ctx, "Seeded default category groups")
	}
	snap, notes := budget.Repair(snap)
	for _, note := range notes {
		s.logger.WarnContext(ctx, "Repaired ledger on load", "repair", note)
	}

	s.snap = snap
	s.planName = planName
	s.persisted = raw
	s.writer = newWriter(adapter, s.writerConfig, s.logger.WithComponent(log.ComponentPersistence), s.onPersistError)
	if err := s.writer.Start(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed, err := s.persistChanged()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Ledger opened",
		"accounts", len(snap.Accounts),
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions),
		log.FieldKeys, changed)
	return s, nil
}

func loadAll(ctx context.Context, adapter persistence.Loader) (map[string][]byte, error) {
	keys := persistence.AllKeys()
	values := make([][]byte, len(keys))
	found := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		g.Go(func() error {
			data, ok, err := adapter.Load(gctx, key)
			if err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}
			values[i], found[i] = data, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw := make(map[string][]byte, len(keys))
	for i, key := range keys {
		if found[i] {
			raw[key] = values[i]
		}
	}
	return raw, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() budget.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

func (s *Store) PlanName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planName
}

// Version counts committed changes since Open.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dirty lists keys whose latest value is not yet durable.
func (s *Store) Dirty() []string {
	return s.writer.dirty()
}

// Flush waits for every queued write, retrying failed keys once more, and
// returns the PersistenceErrors that remain.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close flushes and stops the writer. Later commands fail with ErrClosed.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	flushErr := s.writer.flush(ctx)
	if err := s.writer.Stop(ctx); err != nil {
		return errors.Join(flushErr, err)
	}
	s.logger.InfoContext(ctx, "Ledger closed", log.FieldVersion, s.Version())
	return flushErr
}

// Reset wipes every key from the adapter and starts over with the default
// groups and plan name. Queued writes are drained first; when Clear fails
// the ledger is left as it was and unsaved keys stay dirty.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	// not under mu: OnPersistError handlers may read the store
	if err := s.writer.waitIdle(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := s.adapter.Clear(ctx, persistence.AllKeys()); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.writer.discard()

	s.snap = budget.Seed(budget.Snapshot{})
	s.planName = DefaultPlanName
	s.persisted = make(map[string][]byte)
	s.version++
	changed, err := s.persistChanged()
	version := s.version
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Ledger reset", log.FieldVersion, version)
	s.publish(ctx, log.OpReset, changed, version)
	return nil
}

// apply runs one engine transition under the lock, commits it and publishes
// the change.
func (s *Store) apply(ctx context.Context, op string, fn func(budget.Snapshot) (budget.Snapshot, error)) (budget.Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return budget.Snapshot{}, ErrClosed
	}
	next, err := fn(s.snap)
	if err != nil {
		current := s.snap.Clone()
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Ledger command rejected", log.FieldOperation, op, log.FieldError, err)
		return current, err
	}

	s.snap = next
	changed, err := s.persistChanged()
	if len(changed) > 0 {
		s.version++
	}
	version := s.version
	out := next.Clone()
	s.mu.Unlock()
	if err != nil {
		return out, err
	}

	s.logger.DebugContext(ctx, "Ledger command committed",
		log.FieldOperation, op,
		log.FieldKeys, changed,
		log.FieldVersion, version)
	s.publish(ctx, op, changed, version)
	return out, nil
}

// persistChanged hands every key whose encoding differs from the last
// persisted bytes to the writer. Callers hold mu.
func (s *Store) persistChanged() ([]string, error) {
	encoded, err := encodeAll(s.snap, s.planName)
	if err != nil {
		return nil, err
	}
	var changed []string
	for key, data := range encoded {
		if prev, ok := s.persisted[key]; ok && bytes.Equal(prev, data) {
			continue
		}
		s.persisted[key] = data
		s.writer.enqueue(key, data)
		changed = append(changed, key)
	}
	sort.Strings(changed)
	return changed, nil
}

func (s *Store) publish(ctx context.Context, op string, keys []string, version int64) {
	if s.publisher == nil || len(keys) == 0 {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, op, keys, version); err != nil {
		fields := log.NewFields().WithOperation(op).WithKeys(keys).WithError(err)
		fields[log.FieldVersion] = version
		s.logger.ErrorContext(ctx, "Failed to publish ledger change", fields.ToSlice()...)
	}
}

// Today is the store clock, the reference date for target progress.
func (s *Store) Today() time.Time {
	return s.now()
}

// fillTransaction assigns an id and date when the caller left them empty.
func (s *Store) fillTransaction(tx core.Transaction) core.Transaction {
	if tx.ID == "" {
		tx.ID = core.NewID()
	}
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}
	return tx
}
