// Package worker replicates the primary ledger store into a mirror adapter
// (typically a Google Sheets tab) driven by ledger change events.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"envelope/internal/amqp"
	"envelope/internal/log"
	"envelope/internal/persistence"
)

// MirrorConfig holds configuration for the mirror worker
type MirrorConfig struct {
	// ResyncInterval is how often every key is copied again, as a backup for
	// lost change events (default: 10m, 0 keeps the default)
	ResyncInterval time.Duration

	// Concurrency bounds parallel key copies (default: 3)
	Concurrency int

	// SettleDelay is waited before reading the keys named by an event. The
	// primary publishes on commit and writes in the background, so an
	// immediate read can see the previous value. Zero reads immediately.
	SettleDelay time.Duration
}

// DefaultMirrorConfig returns sensible defaults
func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		ResyncInterval: 10 * time.Minute,
		Concurrency:    3,
		SettleDelay:    time.Second,
	}
}

func (c MirrorConfig) withDefaults() MirrorConfig {
	d := DefaultMirrorConfig()
	if c.ResyncInterval <= 0 {
		c.ResyncInterval = d.ResyncInterval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	return c
}

// Mirror copies keys from the primary adapter to the mirror adapter. The
// primary is always the source of truth: a change event only says which
// keys to re-read.
type Mirror struct {
	source persistence.Loader
	target persistence.Adapter
	logger *log.Logger
	config MirrorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirror(source persistence.Loader, target persistence.Adapter, logger *log.Logger, config MirrorConfig) *Mirror {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &Mirror{
		source: source,
		target: target,
		logger: logger,
		config: config.withDefaults(),
	}
}

// HandleLedgerChanged processes a single change event from AMQP. Returning an
// error makes the consumer requeue the message.
func (m *Mirror) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	m.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldOperation, msg.Operation,
		log.FieldKeys, msg.Keys,
		log.FieldVersion, msg.Version)

	keys := make([]string, 0, len(msg.Keys))
	for _, key := range msg.Keys {
		if !persistence.IsKnownKey(key) {
			m.logger.WarnContext(ctx, "Skipping unknown key in change event", log.FieldKey, key)
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	if m.config.SettleDelay > 0 {
		select {
		case <-time.After(m.config.SettleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := m.copyKeys(ctx, keys); err != nil {
		return fmt.Errorf("mirror %s: %w", msg.Operation, err)
	}
	return nil
}

// FullCopy copies every key. Called at startup to recover from events missed
// while the worker was down, and periodically while running.
func (m *Mirror) FullCopy(ctx context.Context) error {
	start := time.Now()
	keys := persistence.AllKeys()
	if err := m.copyKeys(ctx, keys); err != nil {
		return fmt.Errorf("full copy: %w", err)
	}
	m.logger.InfoContext(ctx, "Full copy completed",
		log.FieldKeys, keys,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (m *Mirror) copyKeys(ctx context.Context, keys []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)
	for _, key := range keys {
		g.Go(func() error {
			return m.copyKey(ctx, key)
		})
	}
	return g.Wait()
}

// copyKey mirrors one key; a key absent from the primary is cleared.
func (m *Mirror) copyKey(ctx context.Context, key string) error {
	data, ok, err := m.source.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		if err := m.target.Clear(ctx, []string{key}); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		m.logger.DebugContext(ctx, "Cleared mirrored key", log.FieldKey, key)
		return nil
	}
	if err := m.target.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	m.logger.DebugContext(ctx, "Mirrored key", log.FieldKey, key, "bytes", len(data))
	return nil
}

// Start begins the periodic resync loop. Returns an error if already running.
func (m *Mirror) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.mu.Unlock()

	go m.runLoop(ctx)

	m.logger.InfoContext(ctx, "Mirror worker started",
		"resync_interval", m.config.ResyncInterval,
		"concurrency", m.config.Concurrency)
	return nil
}

// Stop gracefully stops the loop and waits for the current copy to finish.
func (m *Mirror) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		m.logger.InfoContext(ctx, "Mirror worker stopped gracefully")
	case <-ctx.Done():
		m.logger.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	return nil
}

// IsRunning returns whether the resync loop is running
func (m *Mirror) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Mirror) runLoop(ctx context.Context) {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.config.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.FullCopy(ctx); err != nil {
				m.logger.LogError(ctx, "Periodic resync failed", err)
			}
		}
	}
}
