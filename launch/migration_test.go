package launch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bvkgo/kv"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/launchpad-go/ledger/memledger"
	"github.com/krazyTry/launchpad-go/store"
)

func migratedEnv(t *testing.T) (*testEnv, MigrateParams) {
	cfg := unitConfig()
	cfg.SuccessThreshold = 10
	e := newTestEnv(t, cfg)
	e.open(10)
	e.buy(solana.NewWallet().PublicKey(), 10)
	e.clock.Advance(cfg.LaunchDurationSeconds)
	_, err := e.lp.Finalize(e.ctx, e.creator, e.mint)
	require.NoError(t, err)

	p := MigrateParams{
		VenueID:            solana.NewWallet().PublicKey(),
		LPAssetID:          solana.NewWallet().PublicKey(),
		TokenVenueOwner:    solana.NewWallet().PublicKey(),
		CurrencyVenueOwner: solana.NewWallet().PublicKey(),
	}
	e.ledger.CreateMint(p.LPAssetID, solana.NewWallet().PublicKey(), 0)
	return e, p
}

func (e *testEnv) allowMigration(venue solana.PublicKey) {
	key := store.LockKey(DeriveLockPDA(e.cfg.ProgramID, venue))
	require.NoError(e.t, kv.WithReadWriter(e.ctx, e.db, func(ctx context.Context, rw kv.ReadWriter) error {
		l, err := store.Get[LiquidityLock](ctx, rw, key)
		if err != nil {
			return err
		}
		l.MigrationAllowed = true
		return store.Set(ctx, rw, key, l)
	}))
}

func TestConcurrentMigrationsToOneVenue(t *testing.T) {
	require := require.New(t)
	cfg := unitConfig()
	cfg.SuccessThreshold = 10
	e := newTestEnv(t, cfg)

	other := solana.NewWallet().PublicKey()
	e.ledger.CreateMint(other, DeriveMintAuthorityPDA(cfg.ProgramID, other), cfg.Decimals)
	e.fund(e.creator, 10+cfg.PlatformCreationFee)
	_, err := e.lp.CreateLaunch(e.ctx, e.creator, other, 10)
	require.NoError(err)
	e.open(10)

	mints := []solana.PublicKey{e.mint, other}
	for _, mint := range mints {
		buyer := solana.NewWallet().PublicKey()
		e.fund(buyer, 10)
		_, err := e.lp.Buy(e.ctx, buyer, mint, 10, 0, e.deadline())
		require.NoError(err)
	}
	e.clock.Advance(cfg.LaunchDurationSeconds)
	for _, mint := range mints {
		_, err := e.lp.Finalize(e.ctx, e.creator, mint)
		require.NoError(err)
	}

	p := MigrateParams{
		VenueID:            solana.NewWallet().PublicKey(),
		LPAssetID:          solana.NewWallet().PublicKey(),
		TokenVenueOwner:    solana.NewWallet().PublicKey(),
		CurrencyVenueOwner: solana.NewWallet().PublicKey(),
	}

	entered := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	e.ledger.SetOptions(memledger.Options{
		BeforeCommit: func(context.Context) error {
			once.Do(func() {
				close(entered)
				<-proceed
			})
			return nil
		},
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = e.lp.CloseAndMigrate(e.ctx, e.creator, mints[0], p)
	}()
	<-entered
	go func() {
		defer wg.Done()
		_, errs[1] = e.lp.CloseAndMigrate(e.ctx, e.creator, mints[1], p)
	}()
	time.Sleep(20 * time.Millisecond)
	close(proceed)
	wg.Wait()

	require.NoError(errs[0])
	require.ErrorIs(errs[1], ErrAlreadyMigrated)

	require.EqualValues(10, e.usdcOf(p.CurrencyVenueOwner))
	loser, err := e.lp.GetLaunch(e.ctx, other)
	require.NoError(err)
	require.False(loser.Migrated)
	require.EqualValues(20, e.usdcOf(loser.Vault))

	lock, err := e.lp.GetLock(e.ctx, p.VenueID)
	require.NoError(err)
	require.Equal(e.mint, lock.Mint)
}

func TestCloseAndMigrate(t *testing.T) {
	require := require.New(t)
	e, p := migratedEnv(t)
	s := e.state()
	require.NoError(e.ledger.Airdrop(e.mint, s.CurveAccount, 101))

	_, err := e.lp.CloseAndMigrate(e.ctx, e.platform, e.mint, p)
	require.ErrorIs(err, ErrUnauthorized)

	res, err := e.lp.CloseAndMigrate(e.ctx, e.creator, e.mint, p)
	require.NoError(err)
	require.EqualValues(50, res.TokenAmount)
	require.EqualValues(10, res.CurrencyAmount)
	require.EqualValues(10, res.Refunded)
	require.Equal(e.clock.Now()+e.cfg.LockDurationSeconds, res.Lock.UnlockTime)
	require.False(res.Lock.MigrationAllowed)

	require.EqualValues(50, e.tokensOf(p.TokenVenueOwner))
	require.EqualValues(51, e.tokensOf(s.CurveAccount))
	require.EqualValues(10, e.usdcOf(p.CurrencyVenueOwner))
	require.EqualValues(10, e.usdcOf(e.creator))
	require.Zero(e.usdcOf(e.vault()))

	s = e.state()
	require.True(s.Migrated)
	require.Equal(StatusMigrated, s.Status())
	require.Zero(s.CreatorPaidIn)

	lock, err := e.lp.GetLock(e.ctx, p.VenueID)
	require.NoError(err)
	require.Equal(res.Lock, *lock)
	require.Equal(e.creator, lock.Authority)
	require.Equal(DeriveLockPDA(e.cfg.ProgramID, p.VenueID), lock.VaultRef)

	_, err = e.lp.CloseAndMigrate(e.ctx, e.creator, e.mint, p)
	require.ErrorIs(err, ErrAlreadyMigrated)
}

func TestCloseAndMigrateOpenLaunch(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t, unitConfig())
	e.open(10)

	_, err := e.lp.CloseAndMigrate(e.ctx, e.creator, e.mint, MigrateParams{VenueID: solana.NewWallet().PublicKey()})
	require.ErrorIs(err, ErrNotEnded)

	err = e.lp.Destroy(e.ctx, e.creator, e.mint)
	require.ErrorIs(err, ErrNotMigrated)
}

func TestMigrateLP(t *testing.T) {
	require := require.New(t)
	e, p := migratedEnv(t)
	_, err := e.lp.CloseAndMigrate(e.ctx, e.creator, e.mint, p)
	require.NoError(err)

	oldRef := DeriveLockPDA(e.cfg.ProgramID, p.VenueID)
	require.NoError(e.ledger.Airdrop(p.LPAssetID, oldRef, 1000))
	next := solana.NewWallet().PublicKey()

	_, err = e.lp.MigrateLP(e.ctx, e.creator, p.VenueID, next)
	require.ErrorIs(err, ErrMigrationNotAllowed)
	_, err = e.lp.MigrateLP(e.ctx, e.creator, p.VenueID, p.VenueID)
	require.ErrorIs(err, ErrMigrationNotAllowed)

	e.allowMigration(p.VenueID)
	_, err = e.lp.MigrateLP(e.ctx, e.creator, p.VenueID, next)
	require.ErrorIs(err, ErrStillLocked)

	e.clock.Advance(e.cfg.LockDurationSeconds)
	_, err = e.lp.MigrateLP(e.ctx, e.platform, p.VenueID, next)
	require.ErrorIs(err, ErrUnauthorized)

	lock, err := e.lp.MigrateLP(e.ctx, e.creator, p.VenueID, next)
	require.NoError(err)
	require.Equal(next, lock.VenueID)
	require.Equal(next, lock.MigrationTarget)
	require.False(lock.MigrationAllowed)

	newRef := DeriveLockPDA(e.cfg.ProgramID, next)
	require.Equal(newRef, lock.VaultRef)
	require.Zero(e.ledger.BalanceOf(p.LPAssetID, oldRef))
	require.EqualValues(1000, e.ledger.BalanceOf(p.LPAssetID, newRef))

	_, err = e.lp.GetLock(e.ctx, p.VenueID)
	require.True(store.IsNotExist(err))
	stored, err := e.lp.GetLock(e.ctx, next)
	require.NoError(err)
	require.Equal(lock, stored)

	_, err = e.lp.MigrateLP(e.ctx, e.creator, next, solana.NewWallet().PublicKey())
	require.ErrorIs(err, ErrMigrationNotAllowed)
}

func TestDestroy(t *testing.T) {
	require := require.New(t)
	e, p := migratedEnv(t)
	_, err := e.lp.CloseAndMigrate(e.ctx, e.creator, e.mint, p)
	require.NoError(err)

	e.patch(func(s *LaunchState) { s.CreatorReserve = 1 })
	require.ErrorIs(e.lp.Destroy(e.ctx, e.creator, e.mint), ErrOutstanding)
	e.patch(func(s *LaunchState) { s.CreatorReserve = 0 })

	require.ErrorIs(e.lp.Destroy(e.ctx, e.platform, e.mint), ErrUnauthorized)
	require.NoError(e.lp.Destroy(e.ctx, e.creator, e.mint))

	_, err = e.lp.GetLaunch(e.ctx, e.mint)
	require.True(store.IsNotExist(err))
	_, err = e.lp.GetLock(e.ctx, p.VenueID)
	require.NoError(err, "the liquidity lock outlives the launch record")
}

func TestAddSecondsOverflow(t *testing.T) {
	_, err := addSeconds(1<<62, 1<<62)
	require.ErrorIs(t, err, ErrOverflow)
}
