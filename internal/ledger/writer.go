package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"envelope/internal/budget"
	"envelope/internal/log"
	"envelope/internal/persistence"
)

// WriterConfig tunes the background persistence writer.
type WriterConfig struct {
	// MaxRetries is the number of save attempts per write (default: 3)
	MaxRetries int

	// RetryDelay is the pause between attempts (default: 500ms)
	RetryDelay time.Duration

	// SaveTimeout bounds a single adapter call (default: 30s)
	SaveTimeout time.Duration
}

// DefaultWriterConfig returns sensible defaults
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MaxRetries:  3,
		RetryDelay:  500 * time.Millisecond,
		SaveTimeout: 30 * time.Second,
	}
}

func (c WriterConfig) withDefaults() WriterConfig {
	def := DefaultWriterConfig()
	if c.MaxRetries < 1 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = def.SaveTimeout
	}
	return c
}

// writer saves keys in the background. Pending writes coalesce per key so
// only the latest value is ever written; a key whose write keeps failing is
// remembered until a later write or flush succeeds.
type writer struct {
	saver   persistence.Saver
	config  WriterConfig
	logger  *log.Logger
	onError func(*budget.PersistenceError)

	mu         sync.Mutex
	idle       *sync.Cond
	pending    map[string][]byte
	inflight   map[string]bool
	failed     map[string]*budget.PersistenceError
	failedData map[string][]byte

	wake    chan struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newWriter(saver persistence.Saver, config WriterConfig, logger *log.Logger, onError func(*budget.PersistenceError)) *writer {
	w := &writer{
		saver:      saver,
		config:     config.withDefaults(),
		logger:     logger,
		onError:    onError,
		pending:    make(map[string][]byte),
		inflight:   make(map[string]bool),
		failed:     make(map[string]*budget.PersistenceError),
		failedData: make(map[string][]byte),
		wake:       make(chan struct{}, 1),
	}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// Start begins the write loop. Returns an error if already running.
func (w *writer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("ledger writer is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.runLoop()
	return nil
}

// Stop ends the write loop after the current save. Pending writes that were
// never attempted stay queued.
func (w *writer) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	select {
	case <-w.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *writer) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *writer) enqueue(key string, data []byte) {
	w.mu.Lock()
	w.pending[key] = data
	delete(w.failed, key)
	delete(w.failedData, key)
	w.mu.Unlock()
	w.signal()
}

func (w *writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) runLoop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.wake:
			for w.writeNext() {
				select {
				case <-w.stopCh:
					return
				default:
				}
			}
		}
	}
}

// writeNext saves one pending key and reports whether one was found.
func (w *writer) writeNext() bool {
	w.mu.Lock()
	key, data, ok := w.take()
	if !ok {
		w.mu.Unlock()
		return false
	}
	w.inflight[key] = true
	w.mu.Unlock()

	attempts, err := w.save(key, data)

	var perr *budget.PersistenceError
	if err != nil {
		perr = &budget.PersistenceError{Key: key, Attempts: attempts, Err: err}
		w.logger.ErrorContext(context.Background(), "Ledger write failed",
			log.FieldKey, key,
			log.FieldAttempt, perr.Attempts,
			log.FieldError, perr.Err)
		if w.onError != nil {
			w.onError(perr)
		}
	}

	w.mu.Lock()
	delete(w.inflight, key)
	if perr != nil {
		// a newer value queued meanwhile supersedes the failed one
		if _, superseded := w.pending[key]; !superseded {
			w.failed[key] = perr
			w.failedData[key] = data
		}
	}
	w.idle.Broadcast()
	w.mu.Unlock()
	return true
}

// take pops the alphabetically first pending key; callers hold mu.
func (w *writer) take() (string, []byte, bool) {
	if len(w.pending) == 0 {
		return "", nil, false
	}
	keys := make([]string, 0, len(w.pending))
	for k := range w.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := keys[0]
	data := w.pending[key]
	delete(w.pending, key)
	return key, data, true
}

func (w *writer) save(key string, data []byte) (int, error) {
	var err error
	for attempt := 1; attempt <= w.config.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), w.config.SaveTimeout)
		err = w.saver.Save(ctx, key, data)
		cancel()
		if err == nil {
			w.logger.Debug("Ledger key persisted", log.FieldKey, key, log.FieldAttempt, attempt)
			return attempt, nil
		}
		w.logger.Warn("Ledger write attempt failed",
			log.FieldKey, key,
			log.FieldAttempt, attempt,
			log.FieldError, err)
		if attempt == w.config.MaxRetries {
			break
		}
		select {
		case <-time.After(w.config.RetryDelay):
		case <-w.stopCh:
			return attempt, err
		}
	}
	return w.config.MaxRetries, err
}

// waitIdle blocks until nothing is pending or in flight.
func (w *writer) waitIdle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.mu.Lock()
		for len(w.pending) > 0 || len(w.inflight) > 0 {
			w.idle.Wait()
		}
		w.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flush requeues failed keys, waits for the queue to drain and returns the
// failures that remain.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	for key, data := range w.failedData {
		if _, queued := w.pending[key]; !queued {
			w.pending[key] = data
		}
	}
	w.failed = make(map[string]*budget.PersistenceError)
	w.failedData = make(map[string][]byte)
	running := w.running
	w.mu.Unlock()

	if running {
		w.signal()
		if err := w.waitIdle(ctx); err != nil {
			return err
		}
	} else {
		for w.writeNext() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]string, 0, len(w.failed))
	for k := range w.failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, w.failed[k])
	}
	return errors.Join(errs...)
}

// discard forgets every pending and failed write.
func (w *writer) discard() {
	w.mu.Lock()
	w.pending = make(map[string][]byte)
	w.failed = make(map[string]*budget.PersistenceError)
	w.failedData = make(map[string][]byte)
	w.idle.Broadcast()
	w.mu.Unlock()
}

// dirty lists keys whose latest value is not yet durable.
func (w *writer) dirty() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := make(map[string]bool)
	for k := range w.pending {
		seen[k] = true
	}
	for k := range w.inflight {
		seen[k] = true
	}
	for k := range w.failed {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
