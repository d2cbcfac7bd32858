package launch

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/launchpad-go/launch/math"
	"github.com/krazyTry/launchpad-go/store"
	"github.com/krazyTry/launchpad-go/u128"
)

func TestClaimProfits(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, DefaultConfig())
	e.open(10_000_000)

	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	a := e.buy(alice, 1_000_000_000)
	b := e.buy(bob, 1_000_000_000)

	sold, err := e.lp.Sell(e.ctx, alice, e.mint, a.TokensToUser/2, 0, e.deadline())
	require.NoError(err)
	require.NotZero(sold.Fees.Holders)

	s := e.state()
	require.False(s.HoldersIndex.IsZero())
	require.Equal(sold.Fees.Holders, s.HoldersReserve)

	want, err := math.Entitlement(b.TokensToUser, s.HoldersIndex, u128.Zero, e.cfg.AccumulatorScale)
	require.NoError(err)
	require.NotZero(want)

	preview, err := e.lp.Claimable(e.ctx, bob, e.mint)
	require.NoError(err)
	require.Equal(want, preview.Theoretical)
	require.Equal(want, preview.Paid)

	res, err := e.lp.ClaimProfits(e.ctx, bob, e.mint)
	require.NoError(err)
	require.Equal(b.TokensToUser, res.Balance)
	require.Equal(want, res.Theoretical)
	require.Equal(want, res.Paid)
	require.Equal(want, e.usdcOf(bob))

	h, err := e.lp.GetHolder(e.ctx, e.mint, bob)
	require.NoError(err)
	require.Equal(s.HoldersIndex, h.LastIndexClaimed)
	require.Equal(e.clock.Now(), h.LastClaimTime)

	_, err = e.lp.ClaimProfits(e.ctx, bob, e.mint)
	require.ErrorIs(err, ErrZeroEntitled)

	aliceRes, err := e.lp.ClaimProfits(e.ctx, alice, e.mint)
	require.NoError(err)
	require.LessOrEqual(aliceRes.Paid+res.Paid, sold.Fees.Holders)

	after := e.state()
	require.Equal(sold.Fees.Holders-aliceRes.Paid-res.Paid, after.HoldersReserve)
	require.Equal(s.VirtualCurrency-aliceRes.Paid-res.Paid, after.VirtualCurrency)
	e.requireSolvent()

	_, err = e.lp.ClaimProfits(e.ctx, solana.NewWallet().PublicKey(), e.mint)
	require.ErrorIs(err, ErrZeroHolding)
}

func TestLateHolderStartsAtCurrentIndex(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, DefaultConfig())
	e.open(10_000_000)

	alice := solana.NewWallet().PublicKey()
	a := e.buy(alice, 1_000_000_000)
	_, err := e.lp.Sell(e.ctx, alice, e.mint, a.TokensToUser/2, 0, e.deadline())
	require.NoError(err)

	late := solana.NewWallet().PublicKey()
	e.buy(late, 500_000_000)
	h, err := e.lp.GetHolder(e.ctx, e.mint, late)
	require.NoError(err)
	require.Equal(e.state().HoldersIndex, h.LastIndexClaimed)

	preview, err := e.lp.Claimable(e.ctx, late, e.mint)
	require.NoError(err)
	require.Zero(preview.Theoretical)
	_, err = e.lp.ClaimProfits(e.ctx, late, e.mint)
	require.ErrorIs(err, ErrZeroEntitled)
}

func TestTransferRecipientClaims(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, DefaultConfig())
	e.open(10_000_000)

	alice := solana.NewWallet().PublicKey()
	carol := solana.NewWallet().PublicKey()
	a := e.buy(alice, 1_000_000_000)
	e.transfer(alice, carol, a.TokensToUser/2)

	sold, err := e.lp.Sell(e.ctx, alice, e.mint, a.TokensToUser/4, 0, e.deadline())
	require.NoError(err)
	require.NotZero(sold.Fees.Holders)

	_, err = e.lp.GetHolder(e.ctx, e.mint, carol)
	require.True(store.IsNotExist(err))

	s := e.state()
	want, err := math.Entitlement(a.TokensToUser/2, s.HoldersIndex, u128.Zero, e.cfg.AccumulatorScale)
	require.NoError(err)
	require.NotZero(want)

	preview, err := e.lp.Claimable(e.ctx, carol, e.mint)
	require.NoError(err)
	require.Equal(want, preview.Paid)

	res, err := e.lp.ClaimProfits(e.ctx, carol, e.mint)
	require.NoError(err)
	require.Equal(want, res.Paid)
	require.Equal(want, e.usdcOf(carol))

	h, err := e.lp.GetHolder(e.ctx, e.mint, carol)
	require.NoError(err)
	require.Equal(s.HoldersIndex, h.LastIndexClaimed)
	require.Zero(h.CumulativeContributed)

	_, err = e.lp.ClaimProfits(e.ctx, carol, e.mint)
	require.ErrorIs(err, ErrZeroEntitled)

	aliceRes, err := e.lp.ClaimProfits(e.ctx, alice, e.mint)
	require.NoError(err)
	require.LessOrEqual(aliceRes.Paid+res.Paid, sold.Fees.Holders)
	e.requireSolvent()
}

func TestClaimCappedByReserve(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, DefaultConfig())
	e.open(10_000_000)

	holder := solana.NewWallet().PublicKey()
	require.NoError(e.ledger.Airdrop(e.mint, holder, 1_000_000))
	e.putHolder(&HolderAccount{Holder: holder, Mint: e.mint})
	e.fund(e.vault(), 60_000_000)
	e.patch(func(s *LaunchState) {
		s.HoldersIndex = u128.FromUint64(100_000_000_000_000)
		s.HoldersReserve = 60_000_000
	})

	res, err := e.lp.ClaimProfits(e.ctx, holder, e.mint)
	require.NoError(err)
	require.EqualValues(100_000_000, res.Theoretical)
	require.EqualValues(60_000_000, res.Paid)
	require.EqualValues(60_000_000, e.usdcOf(holder))

	s := e.state()
	require.Zero(s.HoldersReserve)
	h, err := e.lp.GetHolder(e.ctx, e.mint, holder)
	require.NoError(err)
	require.Equal(s.HoldersIndex, h.LastIndexClaimed, "the shortfall is forfeited")

	_, err = e.lp.ClaimProfits(e.ctx, holder, e.mint)
	require.ErrorIs(err, ErrZeroEntitled)
}
