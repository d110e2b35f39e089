package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envelope/internal/budget"
	"envelope/internal/core"
	"envelope/internal/log"
	"envelope/internal/persistence"
	"envelope/internal/persistence/memory"
)

var errDiskFull = errors.New("disk full")

type flakyAdapter struct {
	*memory.Store

	mu      sync.Mutex
	failing  bool
	loadErr  error
	clearErr error
	saves   map[string]int
}

func newFlaky() *flakyAdapter {
	return &flakyAdapter{Store: memory.New(), saves: make(map[string]int)}
}

func (f *flakyAdapter) Load(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	err := f.loadErr
	f.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return f.Store.Load(ctx, key)
}

func (f *flakyAdapter) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	f.saves[key]++
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errDiskFull
	}
	return f.Store.Save(ctx, key, data)
}

func (f *flakyAdapter) Clear(ctx context.Context, keys []string) error {
	f.mu.Lock()
	err := f.clearErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Clear(ctx, keys)
}

func (f *flakyAdapter) setClearErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearErr = err
}

func (f *flakyAdapter) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyAdapter) resetSaves() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = make(map[string]int)
}

func (f *flakyAdapter) saveCounts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.saves))
	for k, v := range f.saves {
		out[k] = v
	}
	return out
}

type publishedEvent struct {
	op      string
	keys    []string
	version int64
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerChanged(_ context.Context, op string, keys []string, version int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{op, keys, version})
	return p.err
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T, adapter persistence.Adapter, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithLogger(log.Discard()),
		WithClock(func() time.Time { return fixedNow }),
		WithWriterConfig(WriterConfig{MaxRetries: 2, RetryDelay: 0}),
	}
	s, err := Open(context.Background(), adapter, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestOpenSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()
	s := openStore(t, adapter)

	snap := s.Snapshot()
	assert.Equal(t, budget.DefaultGroups(), snap.Groups)
	assert.Equal(t, DefaultPlanName, s.PlanName())

	require.NoError(t, s.Flush(ctx))
	raw, ok, err := adapter.Load(ctx, persistence.KeyCategoryGroups)
	require.NoError(t, err)
	require.True(t, ok)
	var groups []core.CategoryGroup
	require.NoError(t, json.Unmarshal(raw, &groups))
	assert.Len(t, groups, 4)

	raw, ok, _ = adapter.Load(ctx, persistence.KeyAccounts)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestCommandsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()
	s := openStore(t, adapter)

	_, err := s.AddAccount(ctx, core.Account{ID: "chk", Name: "Checking", Balance: decimal.NewFromInt(1000), Type: core.Checking})
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, core.Category{ID: "food", Name: "Food", GroupID: "needs"})
	require.NoError(t, err)
	_, err = s.AssignMoney(ctx, "food", decimal.NewFromInt(200))
	require.NoError(t, err)
	snap, err := s.AddTransaction(ctx, core.Transaction{AccountID: "chk", CategoryID: "food", Amount: decimal.NewFromInt(-50), Payee: "Market"})
	require.NoError(t, err)
	require.NoError(t, s.RenamePlan(ctx, "Household"))

	tx := snap.Transactions[0]
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, fixedNow, tx.Date)

	require.NoError(t, s.Close(ctx))

	reopened := openStore(t, adapter)
	got := reopened.Snapshot()
	assert.Equal(t, "Household", reopened.PlanName())
	require.Len(t, got.Accounts, 1)
	require.Len(t, got.Transactions, 1)
	assert.True(t, budget.WorkingBalance(got, "chk").Equal(decimal.NewFromInt(950)))
	assert.True(t, budget.ReadyToAssign(got).Equal(decimal.NewFromInt(850)))
	assert.Equal(t, tx.ID, got.Transactions[0].ID)
}

func TestOnlyChangedKeysAreWritten(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()
	s := openStore(t, adapter)
	_, err := s.AddCategory(ctx, core.Category{ID: "food", Name: "Food", GroupID: "needs"})
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	adapter.resetSaves()
	_, err = s.AssignMoney(ctx, "food", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, map[string]int{persistence.KeyCategories: 1}, adapter.saveCounts())

	adapter.resetSaves()
	_, err = s.AssignMoney(ctx, "food", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))
	assert.Empty(t, adapter.saveCounts())
}

func TestOptimisticCommitReportsPersistenceErrors(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()

	var mu sync.Mutex
	var reported []*budget.PersistenceError
	s := openStore(t, adapter, OnPersistError(func(err *budget.PersistenceError) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}))
	require.NoError(t, s.Flush(ctx))

	adapter.setFailing(true)
	snap, err := s.AddAccount(ctx, core.Account{ID: "sav", Name: "Savings", Balance: decimal.NewFromInt(10), Type: core.Savings})
	require.NoError(t, err, "commands succeed while the adapter is failing")
	require.Len(t, snap.Accounts, 1)
	assert.Len(t, s.Snapshot().Accounts, 1)

	err = s.Flush(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, budget.ErrPersistence)
	assert.ErrorIs(t, err, errDiskFull)
	var perr *budget.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, persistence.KeyAccounts, perr.Key)
	assert.Equal(t, 2, perr.Attempts)
	assert.Equal(t, []string{persistence.KeyAccounts}, s.Dirty())

	mu.Lock()
	assert.NotEmpty(t, reported)
	mu.Unlock()

	adapter.setFailing(false)
	require.NoError(t, s.Flush(ctx))
	assert.Empty(t, s.Dirty())

	raw, ok, _ := adapter.Store.Load(ctx, persistence.KeyAccounts)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"sav"`)
}

func TestRejectedCommandLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := openStore(t, newFlaky(), WithPublisher(pub))
	before := s.Version()

	_, err := s.AssignMoney(ctx, "ghost", decimal.NewFromInt(5))
	require.ErrorIs(t, err, budget.ErrReference)
	assert.Equal(t, before, s.Version())
	assert.Empty(t, pub.events)

	err = s.RenamePlan(ctx, "   ")
	require.ErrorIs(t, err, budget.ErrValidation)
}

func TestPublishesChanges(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := openStore(t, newFlaky(), WithPublisher(pub))

	_, err := s.AddCategory(ctx, core.Category{ID: "food", Name: "Food", GroupID: "needs"})
	require.NoError(t, err, "publish failures never fail a command")
	_, err = s.AssignMoney(ctx, "food", decimal.NewFromInt(5))
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, log.OpAssign, pub.events[1].op)
	assert.Equal(t, []string{persistence.KeyCategories}, pub.events[1].keys)
	assert.Equal(t, s.Version(), pub.events[1].version)
}

func TestStoreUsesSpendPolicy(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFlaky(), WithEngine(budget.Engine{Policy: budget.SpendAsActivity}))

	_, err := s.AddAccount(ctx, core.Account{ID: "chk", Name: "Checking", Balance: decimal.NewFromInt(1000), Type: core.Checking})
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, core.Category{ID: "food", Name: "Food", GroupID: "needs"})
	require.NoError(t, err)
	_, err = s.AssignMoney(ctx, "food", decimal.NewFromInt(200))
	require.NoError(t, err)
	snap, err := s.AddTransaction(ctx, core.Transaction{AccountID: "chk", CategoryID: "food", Amount: decimal.NewFromInt(-50), Payee: "Market"})
	require.NoError(t, err)

	assert.True(t, budget.CategoryAvailable(snap, "food").Equal(decimal.NewFromInt(150)))
	assert.True(t, budget.ReadyToAssign(snap).Equal(decimal.NewFromInt(800)))
}

func TestReconcileAndMoveThroughStore(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFlaky())
	_, err := s.AddAccount(ctx, core.Account{ID: "chk", Name: "Checking", Balance: decimal.NewFromInt(100), Type: core.Checking})
	require.NoError(t, err)

	snap, created, err := s.Reconcile(ctx, "chk", decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, fixedNow, snap.Transactions[0].Date)

	_, created, err = s.Reconcile(ctx, "chk", decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.AddCategory(ctx, core.Category{ID: "a", Name: "A", GroupID: "needs", Budgeted: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, core.Category{ID: "b", Name: "B", GroupID: "wants"})
	require.NoError(t, err)
	_, moved, err := s.MoveMoney(ctx, "a", "b", decimal.NewFromInt(8))
	require.NoError(t, err)
	assert.True(t, moved.Equal(decimal.NewFromInt(5)))
}

func TestUpsertTargetKeepsID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFlaky())
	_, err := s.AddCategory(ctx, core.Category{ID: "rent", Name: "Rent", GroupID: "needs"})
	require.NoError(t, err)

	day := 1
	spec := core.Target{Frequency: core.Monthly, TargetAmount: decimal.NewFromInt(900), DueDay: &day, NextMonthBehavior: core.Refill}
	snap, err := s.UpsertTarget(ctx, "rent", spec)
	require.NoError(t, err)
	require.Len(t, snap.Targets, 1)
	id := snap.Targets[0].ID
	assert.NotEmpty(t, id)

	spec.TargetAmount = decimal.NewFromInt(950)
	snap, err = s.UpsertTarget(ctx, "rent", spec)
	require.NoError(t, err)
	require.Len(t, snap.Targets, 1)
	assert.Equal(t, id, snap.Targets[0].ID)

	overview := s.Summary()
	require.NotEmpty(t, overview.Groups)
	assert.Equal(t, "$950.00 more needed by the 1st", overview.Groups[0].Categories[0].TargetText)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()
	s := openStore(t, adapter)
	_, err := s.AddAccount(ctx, core.Account{ID: "visa", Name: "Visa", Type: core.CreditCard})
	require.NoError(t, err)
	require.NoError(t, s.RenamePlan(ctx, "Old"))

	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.Flush(ctx))

	snap := s.Snapshot()
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Categories)
	assert.Equal(t, budget.DefaultGroups(), snap.Groups)
	assert.Equal(t, DefaultPlanName, s.PlanName())

	raw, ok, _ := adapter.Load(ctx, persistence.KeyAccounts)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestFailedResetKeepsUnsavedChanges(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()
	s := openStore(t, adapter)
	_, err := s.AddCategory(ctx, core.Category{ID: "rent", Name: "Rent", GroupID: "needs"})
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	adapter.setFailing(true)
	adapter.setClearErr(errDiskFull)
	_, err = s.AssignMoney(ctx, "rent", decimal.NewFromInt(500))
	require.NoError(t, err)
	require.ErrorIs(t, s.Flush(ctx), budget.ErrPersistence)

	err = s.Reset(ctx)
	require.ErrorIs(t, err, errDiskFull)

	assert.Contains(t, s.Dirty(), persistence.KeyCategories)
	rent, ok := s.Snapshot().Category("rent")
	require.True(t, ok)
	assert.True(t, rent.Budgeted.Equal(decimal.NewFromInt(500)))

	err = s.Flush(ctx)
	var perr *budget.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, persistence.KeyCategories, perr.Key)

	adapter.setFailing(false)
	adapter.setClearErr(nil)
	require.NoError(t, s.Close(ctx))

	reopened := openStore(t, adapter)
	rent, ok = reopened.Snapshot().Category("rent")
	require.True(t, ok)
	assert.True(t, rent.Budgeted.Equal(decimal.NewFromInt(500)), "budgeted = %s", rent.Budgeted)
}

func TestResetWhilePersistErrorHandlerReadsStore(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()

	var (
		s       *Store
		handled sync.WaitGroup
		once    sync.Once
	)
	handled.Add(1)
	s = openStore(t, adapter,
		WithWriterConfig(WriterConfig{MaxRetries: 2, RetryDelay: 50 * time.Millisecond}),
		OnPersistError(func(*budget.PersistenceError) {
			_ = s.PlanName()
			_ = s.Snapshot()
			once.Do(handled.Done)
		}))
	require.NoError(t, s.Flush(ctx))

	adapter.setFailing(true)
	_, err := s.AddGroup(ctx, core.CategoryGroup{ID: "fun", Name: "Fun"})
	require.NoError(t, err)

	resetCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Reset(resetCtx))
	handled.Wait()

	adapter.setFailing(false)
	_, ok := s.Snapshot().Group("fun")
	assert.False(t, ok)
}

func TestClosedStoreRejectsCommands(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newFlaky())
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))

	_, err := s.AddGroup(ctx, core.CategoryGroup{Name: "Late"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.RenamePlan(ctx, "x"), ErrClosed)
	assert.ErrorIs(t, s.Reset(ctx), ErrClosed)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("load failure", func(t *testing.T) {
		adapter := newFlaky()
		adapter.loadErr = errors.New("permission denied")
		_, err := Open(ctx, adapter, WithLogger(log.Discard()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("corrupt json", func(t *testing.T) {
		adapter := newFlaky()
		require.NoError(t, adapter.Store.Save(ctx, persistence.KeyAccounts, []byte(`{not json`)))
		_, err := Open(ctx, adapter, WithLogger(log.Discard()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode accounts")
	})
}

func TestOpenRepairsMissingPaymentCategory(t *testing.T) {
	ctx := context.Background()
	adapter := newFlaky()
	require.NoError(t, adapter.Store.Save(ctx, persistence.KeyAccounts,
		[]byte(`[{"id":"visa","name":"Visa","balance":"-20","type":"credit-card"}]`)))
	require.NoError(t, adapter.Store.Save(ctx, persistence.KeyCategoryGroups,
		[]byte(`[{"id":"needs","name":"Needs","order":1}]`)))

	s := openStore(t, adapter)
	snap := s.Snapshot()
	_, ok := snap.Category(core.PaymentCategoryID("visa"))
	assert.True(t, ok)
	_, ok = snap.Group(core.CreditCardPaymentsGroupID)
	assert.True(t, ok)
	assert.True(t, budget.WorkingBalance(snap, "visa").Equal(decimal.NewFromInt(-20)))
}
