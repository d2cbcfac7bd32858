package memledger

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/launchpad-go/ledger"
)

func TestCommitAppliesAllEffects(t *testing.T) {
	ctx := context.Background()
	require := require.New(t)

	mint, auth := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	alice, bob := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	l := New(nil)
	l.CreateMint(mint, auth, 6)
	require.NoError(l.Airdrop(mint, alice, 100))

	tx, err := l.Begin(ctx)
	require.NoError(err)
	require.NoError(tx.Transfer(ctx, mint, alice, bob, alice, 60))
	require.NoError(tx.MintTo(ctx, mint, bob, auth, 10))
	require.NoError(tx.Burn(ctx, mint, bob, bob, 5))

	got, err := tx.Balance(ctx, mint, bob)
	require.NoError(err)
	require.EqualValues(65, got)
	require.EqualValues(0, l.BalanceOf(mint, bob), "staged effects must stay invisible")

	supply, err := tx.Supply(ctx, mint)
	require.NoError(err)
	require.EqualValues(105, supply)

	require.NoError(tx.Commit(ctx))
	require.EqualValues(40, l.BalanceOf(mint, alice))
	require.EqualValues(65, l.BalanceOf(mint, bob))
	require.EqualValues(105, l.SupplyOf(mint))

	require.ErrorIs(tx.Commit(ctx), ledger.ErrTxDone)
}

func TestRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	require := require.New(t)

	mint, alice, bob := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	l := New(nil)
	l.CreateMint(mint, alice, 6)
	require.NoError(l.Airdrop(mint, alice, 10))

	tx, err := l.Begin(ctx)
	require.NoError(err)
	require.NoError(tx.Transfer(ctx, mint, alice, bob, alice, 10))
	tx.Rollback()

	require.EqualValues(10, l.BalanceOf(mint, alice))
	require.ErrorIs(tx.Transfer(ctx, mint, alice, bob, alice, 1), ledger.ErrTxDone)
}

func TestAuthorityAndFunds(t *testing.T) {
	ctx := context.Background()
	require := require.New(t)

	mint, auth, alice, bob := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	l := New(nil)
	l.CreateMint(mint, auth, 6)
	require.NoError(l.Airdrop(mint, alice, 10))

	tx, err := l.Begin(ctx)
	require.NoError(err)
	require.ErrorIs(tx.Transfer(ctx, mint, alice, bob, bob, 1), ledger.ErrUnauthorized)
	require.ErrorIs(tx.MintTo(ctx, mint, bob, alice, 1), ledger.ErrUnauthorized)
	require.ErrorIs(tx.Transfer(ctx, mint, alice, bob, alice, 11), ledger.ErrInsufficientFunds)
	require.ErrorIs(tx.MintTo(ctx, solana.NewWallet().PublicKey(), bob, auth, 1), ledger.ErrUnknownMint)
}

func TestConcurrentCommitRecheck(t *testing.T) {
	ctx := context.Background()
	require := require.New(t)

	mint, alice, bob := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	l := New(nil)
	l.CreateMint(mint, alice, 6)
	require.NoError(l.Airdrop(mint, alice, 10))

	tx1, _ := l.Begin(ctx)
	tx2, _ := l.Begin(ctx)
	require.NoError(tx1.Transfer(ctx, mint, alice, bob, alice, 8))
	require.NoError(tx2.Transfer(ctx, mint, alice, bob, alice, 8))

	require.NoError(tx1.Commit(ctx))
	require.ErrorIs(tx2.Commit(ctx), ledger.ErrInsufficientFunds)
	require.EqualValues(2, l.BalanceOf(mint, alice))
	require.EqualValues(8, l.BalanceOf(mint, bob))
}

func TestFailureHooks(t *testing.T) {
	ctx := context.Background()
	require := require.New(t)

	errBoom := errors.New("boom")
	mint, alice, bob := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	l := New(&Options{
		Fail: func(op Op) error {
			if op.Kind == OpMint {
				return errBoom
			}
			return nil
		},
	})
	l.CreateMint(mint, alice, 6)
	require.NoError(l.Airdrop(mint, alice, 10))

	tx, _ := l.Begin(ctx)
	require.ErrorIs(tx.MintTo(ctx, mint, bob, alice, 1), errBoom)
	require.NoError(tx.Transfer(ctx, mint, alice, bob, alice, 1))
	require.Len(tx.(*Tx).Ops(), 1)

	l.SetOptions(Options{BeforeCommit: func(context.Context) error { return errBoom }})
	require.ErrorIs(tx.Commit(ctx), errBoom)
	require.EqualValues(10, l.BalanceOf(mint, alice))
}
