package solana

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	sendandconfirmtransaction "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/ledger"
)

// Custody maps a logical owner, such as a launch vault address, to the key
// that holds its tokens on chain. It returns nil for owners that hold
// their own accounts. Such an owner can only authorize a debit when it is
// the payer.
type Custody func(owner solana.PublicKey) *solana.PrivateKey

// Ledger settles ledger effects on chain. Every (mint, owner) pair maps to
// the associated token account of owner's holder, created on first credit.
// The holder is owner's custody key when it has one, and owner otherwise.
// A Tx commits as a single transaction paid by payer.
type Ledger struct {
	rpcClient RPC
	wsClient  *ws.Client
	payer     *solana.Wallet
	custody   Custody
	logger    *zap.Logger
	simulate  bool
}

var _ ledger.Ledger = &Ledger{}

type Option func(*Ledger)

// WithSimulate makes Commit simulate the transaction instead of sending it.
func WithSimulate(simulate bool) Option {
	return func(l *Ledger) { l.simulate = simulate }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// NewLedger returns a ledger backed by rpcClient. wsClient may be nil, in
// which case Commit does not wait for confirmation.
func NewLedger(rpcClient RPC, wsClient *ws.Client, payer *solana.Wallet, custody Custody, opts ...Option) *Ledger {
	l := &Ledger{
		rpcClient: rpcClient,
		wsClient:  wsClient,
		payer:     payer,
		custody:   custody,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Begin(ctx context.Context) (ledger.Tx, error) {
	return &Tx{
		l:        l,
		accounts: make(map[solana.PublicKey]*TokenAccount),
		mints:    make(map[solana.PublicKey]*token.Mint),
		credits:  make(map[accountKey]uint64),
		debits:   make(map[accountKey]uint64),
		minted:   make(map[solana.PublicKey]uint64),
		burned:   make(map[solana.PublicKey]uint64),
		signers:  make(map[solana.PublicKey]*solana.PrivateKey),
	}, nil
}

type accountKey struct {
	mint  solana.PublicKey
	owner solana.PublicKey
}

// Tx stages SPL instructions. Balances are read once from the chain and
// then adjusted by the staged effects.
type Tx struct {
	l *Ledger

	mu       sync.Mutex
	accounts map[solana.PublicKey]*TokenAccount // by ATA; nil when absent
	mints    map[solana.PublicKey]*token.Mint
	credits  map[accountKey]uint64
	debits   map[accountKey]uint64
	minted   map[solana.PublicKey]uint64
	burned   map[solana.PublicKey]uint64

	instructions []solana.Instruction
	signers      map[solana.PublicKey]*solana.PrivateKey
	finished     bool

	signature solana.Signature
}

// Signature is the signature of the committed transaction.
func (tx *Tx) Signature() solana.Signature {
	return tx.signature
}

func (tx *Tx) Instructions() []solana.Instruction {
	return MergeInstructions(tx.instructions)
}

func (tx *Tx) mint(ctx context.Context, mint solana.PublicKey) (*token.Mint, error) {
	if m, ok := tx.mints[mint]; ok {
		return m, nil
	}
	data, err := GetAccountData(ctx, tx.l.rpcClient, mint)
	if err != nil {
		return nil, fmt.Errorf("could not load mint %s: %w", mint, err)
	}
	if data == nil {
		return nil, fmt.Errorf("mint %s: %w", mint, ledger.ErrUnknownMint)
	}
	m, err := DecodeMint(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode mint %s: %w", mint, err)
	}
	tx.mints[mint] = m
	return m, nil
}

// holder returns the on-chain owner of owner's token accounts.
func (tx *Tx) holder(owner solana.PublicKey) solana.PublicKey {
	if tx.l.custody != nil {
		if key := tx.l.custody(owner); key != nil {
			return key.PublicKey()
		}
	}
	return owner
}

// account returns the ATA of (mint, owner) and its on-chain state.
func (tx *Tx) account(ctx context.Context, mint, owner solana.PublicKey) (solana.PublicKey, *TokenAccount, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(tx.holder(owner), mint)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if a, ok := tx.accounts[ata]; ok {
		return ata, a, nil
	}
	data, err := GetAccountData(ctx, tx.l.rpcClient, ata)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("could not load token account %s: %w", ata, err)
	}
	var a *TokenAccount
	if data != nil {
		if a, err = DecodeTokenAccount(data); err != nil {
			return solana.PublicKey{}, nil, fmt.Errorf("could not decode token account %s: %w", ata, err)
		}
	}
	tx.accounts[ata] = a
	return ata, a, nil
}

// destination returns the ATA of (mint, owner), staging its creation when
// it does not exist yet.
func (tx *Tx) destination(ctx context.Context, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	ata, a, err := tx.account(ctx, mint, owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if a == nil {
		tx.instructions = append(tx.instructions, CreateATAInstruction(tx.l.payer.PublicKey(), tx.holder(owner), mint))
		tx.accounts[ata] = &TokenAccount{Mint: mint, Owner: tx.holder(owner), State: AccountStateInitialized}
	}
	return ata, nil
}

func (tx *Tx) balance(ctx context.Context, mint, owner solana.PublicKey) (uint64, error) {
	_, a, err := tx.account(ctx, mint, owner)
	if err != nil {
		return 0, err
	}
	var base uint64
	if a != nil {
		base = a.Amount
	}
	key := accountKey{mint, owner}
	return base + tx.credits[key] - tx.debits[key], nil
}

func (tx *Tx) Balance(ctx context.Context, mint, owner solana.PublicKey) (uint64, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished {
		return 0, ledger.ErrTxDone
	}
	return tx.balance(ctx, mint, owner)
}

func (tx *Tx) Supply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished {
		return 0, ledger.ErrTxDone
	}
	m, err := tx.mint(ctx, mint)
	if err != nil {
		return 0, err
	}
	return m.Supply + tx.minted[mint] - tx.burned[mint], nil
}

// sign records the key that must sign for authority and returns its
// public key. Authorities without a custody key sign only if they are the
// payer.
func (tx *Tx) sign(authority solana.PublicKey) (solana.PublicKey, error) {
	var key *solana.PrivateKey
	if tx.l.custody != nil {
		key = tx.l.custody(authority)
	}
	if key == nil && authority.Equals(tx.l.payer.PublicKey()) {
		key = &tx.l.payer.PrivateKey
	}
	if key == nil {
		return solana.PublicKey{}, fmt.Errorf("no key for %s: %w", authority, ledger.ErrUnauthorized)
	}
	signer := key.PublicKey()
	tx.signers[signer] = key
	return signer, nil
}

// debit checks from's funds and returns its ATA.
func (tx *Tx) debit(ctx context.Context, mint, from solana.PublicKey, amount uint64) (solana.PublicKey, error) {
	ata, a, err := tx.account(ctx, mint, from)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if a != nil && a.IsFrozen() {
		return solana.PublicKey{}, fmt.Errorf("token account %s is frozen: %w", ata, ledger.ErrUnauthorized)
	}
	balance, err := tx.balance(ctx, mint, from)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if balance < amount {
		return solana.PublicKey{}, fmt.Errorf("debit %d from %s (balance %d): %w", amount, from, balance, ledger.ErrInsufficientFunds)
	}
	tx.debits[accountKey{mint, from}] += amount
	return ata, nil
}

func (tx *Tx) Transfer(ctx context.Context, mint, from, to, authority solana.PublicKey, amount uint64) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished {
		return ledger.ErrTxDone
	}
	if !authority.Equals(from) {
		return ledger.ErrUnauthorized
	}
	signer, err := tx.sign(authority)
	if err != nil {
		return err
	}
	m, err := tx.mint(ctx, mint)
	if err != nil {
		return err
	}
	toATA, err := tx.destination(ctx, mint, to)
	if err != nil {
		return err
	}
	fromATA, err := tx.debit(ctx, mint, from, amount)
	if err != nil {
		return err
	}
	tx.credits[accountKey{mint, to}] += amount
	tx.instructions = append(tx.instructions, TransferInstruction(mint, fromATA, toATA, signer, m.Decimals, amount))
	return nil
}

func (tx *Tx) MintTo(ctx context.Context, mint, to, authority solana.PublicKey, amount uint64) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished {
		return ledger.ErrTxDone
	}
	m, err := tx.mint(ctx, mint)
	if err != nil {
		return err
	}
	signer, err := tx.sign(authority)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil || !m.MintAuthority.Equals(signer) {
		return fmt.Errorf("mint %s authority: %w", mint, ledger.ErrUnauthorized)
	}
	toATA, err := tx.destination(ctx, mint, to)
	if err != nil {
		return err
	}
	tx.credits[accountKey{mint, to}] += amount
	tx.minted[mint] += amount
	tx.instructions = append(tx.instructions, MintToInstruction(mint, toATA, signer, amount))
	return nil
}

func (tx *Tx) Burn(ctx context.Context, mint, from, authority solana.PublicKey, amount uint64) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished {
		return ledger.ErrTxDone
	}
	if !authority.Equals(from) {
		return ledger.ErrUnauthorized
	}
	signer, err := tx.sign(authority)
	if err != nil {
		return err
	}
	if _, err := tx.mint(ctx, mint); err != nil {
		return err
	}
	fromATA, err := tx.debit(ctx, mint, from, amount)
	if err != nil {
		return err
	}
	tx.burned[mint] += amount
	tx.instructions = append(tx.instructions, BurnInstruction(mint, fromATA, signer, amount))
	return nil
}

// Commit submits every staged instruction as one transaction.
func (tx *Tx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.finished {
		return ledger.ErrTxDone
	}
	tx.finished = true
	if len(tx.instructions) == 0 {
		return nil
	}

	l := tx.l
	latestBlockhash, err := GetLatestBlockhash(ctx, l.rpcClient)
	if err != nil {
		return err
	}

	instructions := MergeInstructions(tx.instructions)
	trx, err := solana.NewTransaction(instructions, latestBlockhash, solana.TransactionPayer(l.payer.PublicKey()))
	if err != nil {
		return err
	}

	if _, err = trx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		switch {
		case key.Equals(l.payer.PublicKey()):
			return &l.payer.PrivateKey
		default:
			return tx.signers[key]
		}
	}); err != nil {
		return err
	}

	if l.simulate {
		if _, err = l.rpcClient.SimulateTransactionWithOpts(
			ctx,
			trx,
			&rpc.SimulateTransactionOpts{
				SigVerify:  false,
				Commitment: rpc.CommitmentFinalized,
			}); err != nil {
			return err
		}
		return nil
	}

	sig, err := l.rpcClient.SendTransactionWithOpts(
		ctx,
		trx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		return err
	}
	tx.signature = sig
	l.logger.Debug("ledger transaction sent", zap.Stringer("signature", sig), zap.Int("instructions", len(instructions)))

	if l.wsClient == nil {
		return nil
	}
	if _, err = sendandconfirmtransaction.WaitForConfirmation(ctx, l.wsClient, sig, nil); err != nil {
		return fmt.Errorf("transaction %s not confirmed: %w", sig, err)
	}
	return nil
}

func (tx *Tx) Rollback() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.finished = true
	tx.instructions = nil
}
