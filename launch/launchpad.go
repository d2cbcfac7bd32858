package launch

import (
	"context"
	"fmt"
	"sync"

	"github.com/bvkgo/kv"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/launch/math"
	"github.com/krazyTry/launchpad-go/ledger"
	"github.com/krazyTry/launchpad-go/store"
	"github.com/krazyTry/launchpad-go/u128"
)

// Launchpad runs launches against a record store and a token ledger.
// Operations on one launch are serialized; operations on different
// launches run concurrently. A call made from inside an operation on the
// same launch (a ledger hook, for example) does not wait for it: a nested
// trade fails with ErrReentrancy and no nested operation commits.
type Launchpad struct {
	cfg     Config
	db      kv.Database
	ledger  ledger.Ledger
	clock   Clock
	logger  *zap.Logger
	metrics *Metrics

	guard *tradeGuard
	locks sync.Map // solana.PublicKey -> *sync.Mutex
}

type Option func(*Launchpad)

func WithLogger(logger *zap.Logger) Option {
	return func(lp *Launchpad) { lp.logger = logger }
}

func WithClock(clock Clock) Option {
	return func(lp *Launchpad) { lp.clock = clock }
}

func WithMetrics(m *Metrics) Option {
	return func(lp *Launchpad) { lp.metrics = m }
}

func NewLaunchpad(cfg Config, db kv.Database, l ledger.Ledger, opts ...Option) (*Launchpad, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if db == nil || l == nil {
		return nil, fmt.Errorf("database and ledger are required")
	}
	cfg.SellTaxTiers = append([]math.TaxTier(nil), cfg.SellTaxTiers...)

	lp := &Launchpad{
		cfg:    cfg,
		db:     db,
		ledger: l,
		clock:  SystemClock,
		logger: zap.NewNop(),
		guard:  newTradeGuard(),
	}
	for _, opt := range opts {
		opt(lp)
	}
	return lp, nil
}

func (lp *Launchpad) Config() Config {
	c := lp.cfg
	c.SellTaxTiers = append([]math.TaxTier(nil), c.SellTaxTiers...)
	return c
}

func (lp *Launchpad) mutex(key solana.PublicKey) *sync.Mutex {
	v, _ := lp.locks.LoadOrStore(key, new(sync.Mutex))
	return v.(*sync.Mutex)
}

// scope is the read side shared by operations and queries.
type scope struct {
	ctx   context.Context
	lp    *Launchpad
	get   kv.Getter
	tx    ledger.Tx
	state *LaunchState
}

// txn carries one operation's staged record writes and ledger effects.
type txn struct {
	scope
	rw  kv.ReadWriter
	now int64

	key     solana.PublicKey
	destroy bool

	// nested is set when an enclosing operation in the same call graph
	// already holds the launch. A nested operation never commits.
	nested bool

	after   []func()
	cleanup []func()
}

// run executes fn with every effect staged, then commits the ledger before
// the record store. Any error discards both.
func (lp *Launchpad) run(ctx context.Context, key solana.PublicKey, fn func(t *txn) error) error {
	return lp.runLocked(ctx, []solana.PublicKey{key}, fn)
}

// runLocked is run holding the mutex of every key in keys. keys[0] names
// the launch record. Every record an operation writes must be covered by
// one of its keys, so the record commit cannot conflict once the ledger
// has committed. A record store failure after that point (disk or I/O)
// still leaves the ledger effects applied and is returned to the caller.
func (lp *Launchpad) runLocked(ctx context.Context, keys []solana.PublicKey, fn func(t *txn) error) error {
	nested := false
	for _, key := range keys {
		if inCallGraph(ctx, key) {
			nested = true
		}
	}
	if !nested {
		for _, key := range lockOrder(keys) {
			mu := lp.mutex(key)
			mu.Lock()
			defer mu.Unlock()
		}
	}
	ctx = withCallGraph(ctx, keys)

	var after []func()
	err := kv.WithReadWriter(ctx, lp.db, func(ctx context.Context, rw kv.ReadWriter) error {
		tx, err := lp.ledger.Begin(ctx)
		if err != nil {
			return fmt.Errorf("could not begin ledger transaction: %w", err)
		}
		t := &txn{
			scope:  scope{ctx: ctx, lp: lp, get: rw, tx: tx},
			rw:     rw,
			now:    lp.clock.Now(),
			key:    keys[0],
			nested: nested,
		}
		defer func() {
			for _, f := range t.cleanup {
				f()
			}
		}()
		if err := t.stage(fn); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("could not commit ledger transaction: %w", err)
		}
		after = t.after
		return nil
	})
	if err != nil {
		return err
	}
	for _, f := range after {
		f()
	}
	return nil
}

func (t *txn) stage(fn func(t *txn) error) error {
	if err := fn(t); err != nil {
		return err
	}
	if t.nested {
		return ErrReentrancy
	}
	if t.state == nil {
		return nil
	}
	launchKey := store.LaunchKey(t.key)
	if t.destroy {
		return t.rw.Delete(t.ctx, launchKey)
	}
	r, err := t.reserves()
	if err != nil {
		return err
	}
	if !r.Solvent() {
		return fmt.Errorf("vault %d below obligations %d: %w", r.Vault(), r.Obligations(), ErrInsolvent)
	}
	return store.Set(t.ctx, t.rw, launchKey, t.state)
}

// update runs fn against the existing launch of mint, also holding the
// mutexes of also.
func (lp *Launchpad) update(ctx context.Context, mint solana.PublicKey, fn func(t *txn) error, also ...solana.PublicKey) error {
	key := DeriveLaunchPDA(lp.cfg.ProgramID, mint)
	return lp.runLocked(ctx, append([]solana.PublicKey{key}, also...), func(t *txn) error {
		state, err := store.Get[LaunchState](t.ctx, t.rw, store.LaunchKey(key))
		if err != nil {
			return fmt.Errorf("launch %s: %w", mint, err)
		}
		t.state = state
		return fn(t)
	})
}

// enterTrade holds the trade guard of the launch until the operation ends.
func (t *txn) enterTrade() error {
	release, err := t.lp.guard.acquire(t.state.Mint)
	if err != nil {
		return err
	}
	t.cleanup = append(t.cleanup, release)
	return nil
}

// view runs fn against a read-only snapshot of mint's launch.
func (lp *Launchpad) view(ctx context.Context, mint solana.PublicKey, fn func(v *scope) error) error {
	key := DeriveLaunchPDA(lp.cfg.ProgramID, mint)
	return kv.WithReader(ctx, lp.db, func(ctx context.Context, r kv.Reader) error {
		state, err := store.Get[LaunchState](ctx, r, store.LaunchKey(key))
		if err != nil {
			return fmt.Errorf("launch %s: %w", mint, err)
		}
		tx, err := lp.ledger.Begin(ctx)
		if err != nil {
			return fmt.Errorf("could not begin ledger transaction: %w", err)
		}
		defer tx.Rollback()
		return fn(&scope{ctx: ctx, lp: lp, get: r, tx: tx, state: state})
	})
}

func (t *txn) onCommit(f func()) {
	t.after = append(t.after, f)
}

func (t *scope) vaultBalance() (uint64, error) {
	return t.tx.Balance(t.ctx, t.lp.cfg.CurrencyMint, t.state.Vault)
}

func (t *scope) reserves() (*ReserveLedger, error) {
	vault, err := t.vaultBalance()
	if err != nil {
		return nil, err
	}
	return newReserveLedger(t.state, vault), nil
}

// payout moves amount of currency out of the vault to owner.
func (t *txn) payout(p Pool, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	s := t.state
	if err := t.tx.Transfer(t.ctx, t.lp.cfg.CurrencyMint, s.Vault, to, s.Vault, amount); err != nil {
		return fmt.Errorf("could not pay %d to %s: %w", amount, to, err)
	}
	t.onCommit(func() { t.lp.metrics.paid(p, amount) })
	return nil
}

// releaseVirtual lowers the virtual currency reserve by a real outflow.
func (t *txn) releaseVirtual(amount uint64) {
	s := t.state
	s.VirtualCurrency = math.SaturatingSub(s.VirtualCurrency, amount)
	s.K = math.ComputeK(s.VirtualCurrency, s.VirtualToken)
}

// holder loads owner's account, or a fresh one checkpointed at checkpoint.
func (t *scope) holder(owner solana.PublicKey, checkpoint u128.Uint128) (*HolderAccount, error) {
	key := store.HolderKey(DeriveHolderPDA(t.lp.cfg.ProgramID, t.state.Mint, owner))
	h, err := store.Get[HolderAccount](t.ctx, t.get, key)
	if err == nil {
		return h, nil
	}
	if !store.IsNotExist(err) {
		return nil, err
	}
	return &HolderAccount{
		Holder:           owner,
		Mint:             t.state.Mint,
		LastIndexClaimed: checkpoint,
	}, nil
}

func (t *txn) saveHolder(h *HolderAccount) error {
	key := store.HolderKey(DeriveHolderPDA(t.lp.cfg.ProgramID, h.Mint, h.Holder))
	return store.Set(t.ctx, t.rw, key, h)
}

// finish logs and counts the outcome of op.
func (lp *Launchpad) finish(op string, mint, caller solana.PublicKey, err error, fields ...zap.Field) {
	lp.metrics.observe(op, err)
	fields = append([]zap.Field{
		zap.String("op", op),
		zap.Stringer("mint", mint),
		zap.Stringer("caller", caller),
	}, fields...)
	switch {
	case err == nil:
		lp.logger.Info("launch operation committed", fields...)
	case IsFatal(err):
		lp.logger.Error("launch operation aborted by arithmetic fault", append(fields, zap.Error(err))...)
	default:
		lp.logger.Debug("launch operation rejected", append(fields, zap.Error(err), zap.Stringer("kind", Kind(err)))...)
	}
}

// amountField renders a base-unit amount both raw and scaled by decimals.
func amountField(key string, v uint64, decimals uint8) zap.Field {
	return zap.String(key, fmt.Sprintf("%d (%s)", v, decimal.NewFromUint64(v).Shift(-int32(decimals)).String()))
}
