package launch

import (
	"context"
	"fmt"

	"github.com/bvkgo/kv"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/store"
)

func (lp *Launchpad) GetLaunch(ctx context.Context, mint solana.PublicKey) (*LaunchState, error) {
	key := DeriveLaunchPDA(lp.cfg.ProgramID, mint)
	s, err := store.GetDB[LaunchState](ctx, lp.db, store.LaunchKey(key))
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", mint, err)
	}
	return s, nil
}

// GetHolder returns holder's account in mint's launch. A holder that never
// bought or claimed has no account.
func (lp *Launchpad) GetHolder(ctx context.Context, mint, holder solana.PublicKey) (*HolderAccount, error) {
	key := DeriveHolderPDA(lp.cfg.ProgramID, mint, holder)
	return store.GetDB[HolderAccount](ctx, lp.db, store.HolderKey(key))
}

func (lp *Launchpad) GetLock(ctx context.Context, venue solana.PublicKey) (*LiquidityLock, error) {
	key := DeriveLockPDA(lp.cfg.ProgramID, venue)
	return store.GetDB[LiquidityLock](ctx, lp.db, store.LockKey(key))
}

// FreeLiquidity reports the vault of mint's launch against its obligations.
func (lp *Launchpad) FreeLiquidity(ctx context.Context, mint solana.PublicKey) (Reserves, error) {
	var res Reserves
	err := lp.view(ctx, mint, func(v *scope) error {
		r, err := v.reserves()
		if err != nil {
			return err
		}
		res = r.Snapshot()
		return nil
	})
	return res, err
}

// ListLaunches visits every launch record in key order.
func (lp *Launchpad) ListLaunches(ctx context.Context, fn func(*LaunchState) error) error {
	return kv.WithReader(ctx, lp.db, func(ctx context.Context, r kv.Reader) error {
		return store.Ascend(ctx, r, store.LaunchKeyspace, func(ctx context.Context, _ string, s *LaunchState) error {
			return fn(s)
		})
	})
}
