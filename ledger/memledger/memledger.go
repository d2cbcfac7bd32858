// Package memledger is an in-process ledger.Ledger used by tests and local
// simulations.
package memledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/ledger"
)

type OpKind int

const (
	OpTransfer OpKind = iota
	OpMint
	OpBurn
)

func (k OpKind) String() string {
	switch k {
	case OpTransfer:
		return "transfer"
	case OpMint:
		return "mint"
	case OpBurn:
		return "burn"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op describes a staged effect. From is empty for mints, To for burns.
type Op struct {
	Kind   OpKind
	Mint   solana.PublicKey
	From   solana.PublicKey
	To     solana.PublicKey
	Amount uint64
}

type Options struct {
	// Fail is consulted before an effect is staged. A non-nil result is
	// returned to the caller and nothing is staged.
	Fail func(op Op) error

	// BeforeCommit runs inside Commit before any effect is applied. A non-nil
	// result aborts the commit.
	BeforeCommit func(ctx context.Context) error
}

type accountKey struct {
	mint  solana.PublicKey
	owner solana.PublicKey
}

type mintInfo struct {
	authority solana.PublicKey
	decimals  uint8
	supply    uint64
}

type Ledger struct {
	mu       sync.Mutex
	opts     Options
	mints    map[solana.PublicKey]*mintInfo
	balances map[accountKey]uint64
}

var _ ledger.Ledger = &Ledger{}

func New(opts *Options) *Ledger {
	l := &Ledger{
		mints:    make(map[solana.PublicKey]*mintInfo),
		balances: make(map[accountKey]uint64),
	}
	if opts != nil {
		l.opts = *opts
	}
	return l
}

// SetOptions replaces the failure hooks.
func (l *Ledger) SetOptions(opts Options) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opts = opts
}

func (l *Ledger) CreateMint(mint, authority solana.PublicKey, decimals uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[mint]; !ok {
		l.mints[mint] = &mintInfo{authority: authority, decimals: decimals}
	}
}

// SetMintAuthority hands control of an existing mint to authority.
func (l *Ledger) SetMintAuthority(mint, authority solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[mint]
	if !ok {
		return ledger.ErrUnknownMint
	}
	m.authority = authority
	return nil
}

// Airdrop credits owner without any authority check.
func (l *Ledger) Airdrop(mint, owner solana.PublicKey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[mint]
	if !ok {
		return ledger.ErrUnknownMint
	}
	m.supply += amount
	l.balances[accountKey{mint, owner}] += amount
	return nil
}

func (l *Ledger) BalanceOf(mint, owner solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey{mint, owner}]
}

func (l *Ledger) SupplyOf(mint solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.mints[mint]; ok {
		return m.supply
	}
	return 0
}

func (l *Ledger) Begin(ctx context.Context) (ledger.Tx, error) {
	return &Tx{
		l:       l,
		credits: make(map[accountKey]uint64),
		debits:  make(map[accountKey]uint64),
		minted:  make(map[solana.PublicKey]uint64),
		burned:  make(map[solana.PublicKey]uint64),
		fail:    l.options().Fail,
	}, nil
}

func (l *Ledger) options() Options {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opts
}

type Tx struct {
	l *Ledger

	credits map[accountKey]uint64
	debits  map[accountKey]uint64
	minted  map[solana.PublicKey]uint64
	burned  map[solana.PublicKey]uint64
	ops     []Op

	fail     func(Op) error
	finished bool
}

func (tx *Tx) Balance(ctx context.Context, mint, owner solana.PublicKey) (uint64, error) {
	if tx.finished {
		return 0, ledger.ErrTxDone
	}
	key := accountKey{mint, owner}
	tx.l.mu.Lock()
	base := tx.l.balances[key]
	tx.l.mu.Unlock()
	return base + tx.credits[key] - tx.debits[key], nil
}

func (tx *Tx) Supply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	if tx.finished {
		return 0, ledger.ErrTxDone
	}
	tx.l.mu.Lock()
	m, ok := tx.l.mints[mint]
	var supply uint64
	if ok {
		supply = m.supply
	}
	tx.l.mu.Unlock()
	if !ok {
		return 0, ledger.ErrUnknownMint
	}
	return supply + tx.minted[mint] - tx.burned[mint], nil
}

func (tx *Tx) Transfer(ctx context.Context, mint, from, to, authority solana.PublicKey, amount uint64) error {
	if !authority.Equals(from) {
		return ledger.ErrUnauthorized
	}
	op := Op{Kind: OpTransfer, Mint: mint, From: from, To: to, Amount: amount}
	if err := tx.check(op); err != nil {
		return err
	}
	if err := tx.debit(ctx, accountKey{mint, from}, amount); err != nil {
		return err
	}
	tx.credits[accountKey{mint, to}] += amount
	tx.ops = append(tx.ops, op)
	return nil
}

func (tx *Tx) MintTo(ctx context.Context, mint, to, authority solana.PublicKey, amount uint64) error {
	tx.l.mu.Lock()
	m, ok := tx.l.mints[mint]
	var owner solana.PublicKey
	if ok {
		owner = m.authority
	}
	tx.l.mu.Unlock()
	if !ok {
		return ledger.ErrUnknownMint
	}
	if !owner.Equals(authority) {
		return ledger.ErrUnauthorized
	}
	op := Op{Kind: OpMint, Mint: mint, To: to, Amount: amount}
	if err := tx.check(op); err != nil {
		return err
	}
	tx.credits[accountKey{mint, to}] += amount
	tx.minted[mint] += amount
	tx.ops = append(tx.ops, op)
	return nil
}

func (tx *Tx) Burn(ctx context.Context, mint, from, authority solana.PublicKey, amount uint64) error {
	if !authority.Equals(from) {
		return ledger.ErrUnauthorized
	}
	op := Op{Kind: OpBurn, Mint: mint, From: from, Amount: amount}
	if err := tx.check(op); err != nil {
		return err
	}
	if err := tx.debit(ctx, accountKey{mint, from}, amount); err != nil {
		return err
	}
	tx.burned[mint] += amount
	tx.ops = append(tx.ops, op)
	return nil
}

// Ops returns the effects staged so far, in order.
func (tx *Tx) Ops() []Op {
	return append([]Op(nil), tx.ops...)
}

func (tx *Tx) check(op Op) error {
	if tx.finished {
		return ledger.ErrTxDone
	}
	if tx.fail != nil {
		if err := tx.fail(op); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Tx) debit(ctx context.Context, key accountKey, amount uint64) error {
	balance, err := tx.Balance(ctx, key.mint, key.owner)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("debit %d from %s (balance %d): %w", amount, key.owner, balance, ledger.ErrInsufficientFunds)
	}
	tx.debits[key] += amount
	return nil
}

func (tx *Tx) Commit(ctx context.Context) error {
	if tx.finished {
		return ledger.ErrTxDone
	}
	if hook := tx.l.options().BeforeCommit; hook != nil {
		if err := hook(ctx); err != nil {
			tx.Rollback()
			return err
		}
	}

	tx.l.mu.Lock()
	defer tx.l.mu.Unlock()
	defer func() { tx.finished = true }()

	// Other transactions may have committed since our reads.
	for key, out := range tx.debits {
		if tx.l.balances[key]+tx.credits[key] < out {
			return fmt.Errorf("commit debit %d from %s: %w", out, key.owner, ledger.ErrInsufficientFunds)
		}
	}
	for _, m := range []map[solana.PublicKey]uint64{tx.minted, tx.burned} {
		for mint := range m {
			if _, ok := tx.l.mints[mint]; !ok {
				return ledger.ErrUnknownMint
			}
		}
	}

	for key, in := range tx.credits {
		tx.l.balances[key] += in
	}
	for key, out := range tx.debits {
		tx.l.balances[key] -= out
	}
	for mint, n := range tx.minted {
		tx.l.mints[mint].supply += n
	}
	for mint, n := range tx.burned {
		tx.l.mints[mint].supply -= n
	}
	return nil
}

func (tx *Tx) Rollback() {
	tx.finished = true
	tx.credits = nil
	tx.debits = nil
	tx.minted = nil
	tx.burned = nil
	tx.ops = nil
}
