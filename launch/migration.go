package launch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/store"
)

// MigrateParams names the venue that receives the launch's liquidity.
type MigrateParams struct {
	VenueID   solana.PublicKey
	LPAssetID solana.PublicKey

	// Owners of the venue's token and currency accounts.
	TokenVenueOwner    solana.PublicKey
	CurrencyVenueOwner solana.PublicKey
}

type MigrationResult struct {
	TokenAmount    uint64
	CurrencyAmount uint64
	Refunded       uint64
	Lock           LiquidityLock
}

// CloseAndMigrate hands half of the curve's tokens and half of the vault's
// currency to a venue, refunds the creator's outstanding seed deposit and
// locks the resulting LP position for LockDurationSeconds.
func (lp *Launchpad) CloseAndMigrate(ctx context.Context, caller, mint solana.PublicKey, p MigrateParams) (res *MigrationResult, err error) {
	defer func() {
		var fields []zap.Field
		if res != nil {
			fields = append(fields,
				zap.Stringer("venue", res.Lock.VenueID),
				amountField("token_amount", res.TokenAmount, lp.cfg.Decimals),
				amountField("currency_amount", res.CurrencyAmount, lp.cfg.Decimals),
				zap.Int64("unlock_time", res.Lock.UnlockTime))
		}
		lp.finish("migrate", mint, caller, err, fields...)
	}()

	cfg := lp.cfg
	lockRef := DeriveLockPDA(cfg.ProgramID, p.VenueID)
	err = lp.update(ctx, mint, func(t *txn) error {
		s := t.state
		if !caller.Equals(s.Creator) {
			return ErrUnauthorized
		}
		if !s.Closed {
			return ErrNotEnded
		}
		if s.Migrated {
			return ErrAlreadyMigrated
		}

		if _, err := store.Get[LiquidityLock](t.ctx, t.rw, store.LockKey(lockRef)); err == nil {
			return fmt.Errorf("venue %s: %w", p.VenueID, ErrAlreadyMigrated)
		} else if !store.IsNotExist(err) {
			return err
		}

		curve, err := t.tx.Balance(t.ctx, s.Mint, s.CurveAccount)
		if err != nil {
			return err
		}
		tokenHalf := curve / 2
		if tokenHalf > 0 {
			if err := t.tx.Transfer(t.ctx, s.Mint, s.CurveAccount, p.TokenVenueOwner, s.CurveAccount, tokenHalf); err != nil {
				return fmt.Errorf("could not move curve tokens: %w", err)
			}
		}

		r, err := t.reserves()
		if err != nil {
			return err
		}
		currencyHalf := min(r.Vault()/2, r.Free(PoolNone))
		if err := t.payout(PoolNone, p.CurrencyVenueOwner, currencyHalf); err != nil {
			return err
		}

		if r, err = t.reserves(); err != nil {
			return err
		}
		refund := min(s.CreatorPaidIn, r.Free(PoolNone))
		if err := t.payout(PoolNone, s.Creator, refund); err != nil {
			return err
		}
		s.CreatorPaidIn -= refund

		unlock, err := addSeconds(t.now, cfg.LockDurationSeconds)
		if err != nil {
			return err
		}
		lock := &LiquidityLock{
			Mint:       s.Mint,
			VenueID:    p.VenueID,
			LPAssetID:  p.LPAssetID,
			VaultRef:   lockRef,
			UnlockTime: unlock,
			Authority:  caller,
		}
		if err := store.Set(t.ctx, t.rw, store.LockKey(lockRef), lock); err != nil {
			return err
		}
		s.Migrated = true
		t.onCommit(func() { lp.metrics.transitioned(StatusMigrated) })

		res = &MigrationResult{
			TokenAmount:    tokenHalf,
			CurrencyAmount: currencyHalf,
			Refunded:       refund,
			Lock:           *lock,
		}
		return nil
	}, lockRef)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MigrateLP moves the LP locked for venue to the lock of newVenue. It
// requires an approved migration on the lock, an expired lock period and
// the lock's authority as caller. The approval is consumed.
//
// No operation here grants approval; MigrationAllowed is expected to be set
// by an administrative process outside this package.
func (lp *Launchpad) MigrateLP(ctx context.Context, caller, venue, newVenue solana.PublicKey) (lock *LiquidityLock, err error) {
	var moved uint64
	defer func() {
		lp.finish("migrate_lp", venue, caller, err, zap.Stringer("new_venue", newVenue), zap.Uint64("moved", moved))
	}()

	cfg := lp.cfg
	oldRef := DeriveLockPDA(cfg.ProgramID, venue)
	newRef := DeriveLockPDA(cfg.ProgramID, newVenue)
	if oldRef.Equals(newRef) {
		return nil, fmt.Errorf("relock to the same venue: %w", ErrMigrationNotAllowed)
	}

	err = lp.runLocked(ctx, []solana.PublicKey{oldRef, newRef}, func(t *txn) error {
		l, err := store.Get[LiquidityLock](t.ctx, t.rw, store.LockKey(oldRef))
		if err != nil {
			return fmt.Errorf("lock for venue %s: %w", venue, err)
		}
		if !l.MigrationAllowed {
			return ErrMigrationNotAllowed
		}
		if t.now < l.UnlockTime {
			return ErrStillLocked
		}
		if !caller.Equals(l.Authority) {
			return ErrUnauthorized
		}
		if _, err := store.Get[LiquidityLock](t.ctx, t.rw, store.LockKey(newRef)); err == nil {
			return fmt.Errorf("venue %s already locked: %w", newVenue, ErrMigrationNotAllowed)
		} else if !store.IsNotExist(err) {
			return err
		}

		amount, err := t.tx.Balance(t.ctx, l.LPAssetID, l.VaultRef)
		if err != nil {
			return err
		}
		if amount > 0 {
			if err := t.tx.Transfer(t.ctx, l.LPAssetID, l.VaultRef, newRef, l.VaultRef, amount); err != nil {
				return fmt.Errorf("could not move locked liquidity: %w", err)
			}
		}

		l.VenueID = newVenue
		l.VaultRef = newRef
		l.MigrationTarget = newVenue
		l.MigrationAllowed = false

		if err := t.rw.Delete(t.ctx, store.LockKey(oldRef)); err != nil {
			return err
		}
		if err := store.Set(t.ctx, t.rw, store.LockKey(newRef), l); err != nil {
			return err
		}
		moved, lock = amount, l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// Destroy deletes a migrated launch record once nothing is owed out of its
// vault.
func (lp *Launchpad) Destroy(ctx context.Context, caller, mint solana.PublicKey) (err error) {
	defer func() {
		lp.finish("destroy", mint, caller, err)
	}()

	return lp.update(ctx, mint, func(t *txn) error {
		s := t.state
		if !caller.Equals(s.Creator) {
			return ErrUnauthorized
		}
		if !s.Migrated {
			return ErrNotMigrated
		}
		r, err := t.reserves()
		if err != nil {
			return err
		}
		if r.Obligations() > 0 || s.CreatorPaidIn > 0 {
			return fmt.Errorf("%d still owed: %w", r.Obligations()+s.CreatorPaidIn, ErrOutstanding)
		}
		t.destroy = true
		return nil
	})
}

func addSeconds(now, d int64) (int64, error) {
	if d > 0 && now > (1<<63-1)-d {
		return 0, fmt.Errorf("unlock time: %w", ErrOverflow)
	}
	return now + d, nil
}
