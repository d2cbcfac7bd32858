package launchpad

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"github.com/krazyTry/launchpad-go/launch"
	solanago "github.com/krazyTry/launchpad-go/solana"
)

// TestLaunchLifecycle runs a launch from creation to migration on a badger
// store, then reopens the store and reads the records back.
func TestLaunchLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	usdc := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()
	buyer := solana.NewWallet().PublicKey()
	venue := solana.NewWallet().PublicKey()

	cfg := DefaultConfig()
	cfg.CurrencyMint = usdc
	cfg.SuccessThreshold = 100_000_000

	l := NewMemLedger(nil)
	l.CreateMint(usdc, solana.NewWallet().PublicKey(), 6)
	l.CreateMint(mint, launch.DeriveMintAuthorityPDA(cfg.ProgramID, mint), 6)
	require.NoError(l.Airdrop(usdc, creator, 15_000_000))
	require.NoError(l.Airdrop(usdc, buyer, 200_000_000))

	now := time.Now().Unix()
	clock := launch.ClockFunc(func() int64 { return now })

	db, closer, err := OpenBadger(dir)
	require.NoError(err)
	lp, err := NewLaunchpad(cfg, db, l, launch.WithClock(clock), launch.WithLogger(zaptest.NewLogger(t)))
	require.NoError(err)

	_, err = lp.CreateLaunch(ctx, creator, mint, 10_000_000)
	require.NoError(err)

	now += cfg.AntiSnipeWindowSeconds + 1
	bought, err := lp.Buy(ctx, buyer, mint, 150_000_000, 0, now+60)
	require.NoError(err)
	_, err = lp.Sell(ctx, buyer, mint, bought.TokensToUser/4, 0, now+60)
	require.NoError(err)

	now += cfg.LaunchDurationSeconds
	fin, err := lp.Finalize(ctx, buyer, mint)
	require.NoError(err)
	require.Equal(launch.StatusSucceeded, fin.Status)

	res, err := lp.CloseAndMigrate(ctx, creator, mint, launch.MigrateParams{
		VenueID:            venue,
		LPAssetID:          solana.NewWallet().PublicKey(),
		TokenVenueOwner:    venue,
		CurrencyVenueOwner: venue,
	})
	require.NoError(err)
	require.NotZero(res.CurrencyAmount)
	require.Equal(res.CurrencyAmount, l.BalanceOf(usdc, venue))
	require.NoError(closer.Close())

	db, closer, err = OpenBadger(dir)
	require.NoError(err)
	defer closer.Close()
	lp, err = NewLaunchpad(cfg, db, l, launch.WithClock(clock))
	require.NoError(err)

	s, err := lp.GetLaunch(ctx, mint)
	require.NoError(err)
	require.Equal(launch.StatusMigrated, s.Status())
	require.Equal(fin.TotalRaised, s.TotalRaised)

	lock, err := lp.GetLock(ctx, venue)
	require.NoError(err)
	require.Equal(now+cfg.LockDurationSeconds, lock.UnlockTime)

	r, err := lp.FreeLiquidity(ctx, mint)
	require.NoError(err)
	require.GreaterOrEqual(r.Vault, r.UnpaidPlatform+r.Creator+r.Holders)
}

func testInit(t *testing.T) (*rpc.Client, *ws.Client, *solana.Wallet, context.Context) {
	key := os.Getenv("LAUNCHPAD_DEVNET_PAYER")
	if key == "" {
		t.Skip("LAUNCHPAD_DEVNET_PAYER is not set")
	}
	payer, err := solana.WalletFromPrivateKeyBase58(key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	wsClient, err := ws.Connect(ctx, rpc.DevNet_WS)
	require.NoError(t, err)
	t.Cleanup(wsClient.Close)

	return rpc.New(rpc.DevNet_RPC), wsClient, payer, ctx
}

func testMintBalance(ctx context.Context, rpcClient *rpc.Client, wallet, mint solana.PublicKey) (uint64, error) {
	resp, err := rpcClient.GetTokenAccountsByOwner(ctx, wallet, &rpc.GetTokenAccountsConfig{
		ProgramId: &solana.TokenProgramID,
	}, &rpc.GetTokenAccountsOpts{
		Encoding:   solana.EncodingJSONParsed,
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return 0, err
	}
	for _, v := range resp.Value {
		raw := v.Account.Data.GetRawJSON()
		if gjson.GetBytes(raw, "parsed.info.mint").String() != mint.String() {
			continue
		}
		return gjson.GetBytes(raw, "parsed.info.tokenAmount.amount").Uint(), nil
	}
	return 0, fmt.Errorf("no %s account for %s", mint, wallet)
}

// TestSPLLedgerDevnet moves one base unit of devnet USDC through the SPL
// ledger. The payer must hold devnet USDC.
func TestSPLLedgerDevnet(t *testing.T) {
	require := require.New(t)
	rpcClient, wsClient, payer, ctx := testInit(t)

	receiver := solana.NewWallet().PublicKey()
	l := NewSPLLedger(rpcClient, wsClient, payer, nil)

	tx, err := l.Begin(ctx)
	require.NoError(err)
	require.NoError(tx.Transfer(ctx, launch.USDCDevnet, payer.PublicKey(), receiver, payer.PublicKey(), 1))
	require.NoError(tx.Commit(ctx))
	sig := tx.(*solanago.Tx).Signature()
	require.False(sig.IsZero())
	t.Logf("transfer signature: %s", sig)

	balance, err := testMintBalance(ctx, rpcClient, receiver, launch.USDCDevnet)
	require.NoError(err)
	require.EqualValues(1, balance)
}
