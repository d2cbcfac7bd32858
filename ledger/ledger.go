// Package ledger abstracts the token accounts a launch moves value through.
//
// Accounts are addressed by (mint, owner). An owner is either a user wallet
// or one of the program-derived custodians (vault, mint authority, lock).
// Effects are staged on a Tx and only become visible after Commit, which
// either applies every staged effect or none of them.
package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrUnauthorized      = errors.New("ledger: authority does not control the account")
	ErrUnknownMint       = errors.New("ledger: unknown mint")
	ErrTxDone            = errors.New("ledger: transaction already committed or rolled back")
)

type Ledger interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a staged set of token movements. Reads observe the effects staged
// so far on the same Tx.
type Tx interface {
	Balance(ctx context.Context, mint, owner solana.PublicKey) (uint64, error)
	Supply(ctx context.Context, mint solana.PublicKey) (uint64, error)

	Transfer(ctx context.Context, mint, from, to, authority solana.PublicKey, amount uint64) error
	MintTo(ctx context.Context, mint, to, authority solana.PublicKey, amount uint64) error
	Burn(ctx context.Context, mint, from, authority solana.PublicKey, amount uint64) error

	Commit(ctx context.Context) error
	Rollback()
}
