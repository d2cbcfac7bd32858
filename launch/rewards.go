package launch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/launch/math"
	"github.com/krazyTry/launchpad-go/u128"
)

// accrueHolders spreads share over the circulating supply by raising the
// holders index.
func (t *txn) accrueHolders(share uint64) error {
	if share == 0 {
		return nil
	}
	s := t.state
	supply, err := t.tx.Supply(t.ctx, s.Mint)
	if err != nil {
		return fmt.Errorf("could not read supply: %w", err)
	}
	inc, err := math.IndexIncrement(share, t.lp.cfg.AccumulatorScale, supply)
	if err != nil {
		return fmt.Errorf("holders index increment: %w", err)
	}
	index, err := s.HoldersIndex.Add(inc)
	if err != nil {
		return fmt.Errorf("holders index: %w", err)
	}
	s.HoldersIndex = index
	return nil
}

type ClaimResult struct {
	Holder      solana.PublicKey
	Balance     uint64
	Theoretical uint64
	Paid        uint64
}

// ClaimProfits pays holder's share of accrued sell taxes. The payout is
// capped by the holders reserve and free liquidity; the checkpoint always
// moves to the current index, so a capped shortfall is forfeited. A holder
// that never bought (tokens received by transfer) claims from a zero
// checkpoint on its first claim.
func (lp *Launchpad) ClaimProfits(ctx context.Context, holder, mint solana.PublicKey) (res *ClaimResult, err error) {
	defer func() {
		var fields []zap.Field
		if res != nil {
			fields = append(fields, amountField("paid", res.Paid, lp.cfg.Decimals), zap.Uint64("theoretical", res.Theoretical))
		}
		lp.finish("claim", mint, holder, err, fields...)
	}()

	err = lp.update(ctx, mint, func(t *txn) error {
		s := t.state
		balance, err := t.tx.Balance(t.ctx, s.Mint, holder)
		if err != nil {
			return err
		}
		if balance == 0 {
			return ErrZeroHolding
		}

		h, err := t.holder(holder, u128.Zero)
		if err != nil {
			return err
		}
		theoretical, err := math.Entitlement(balance, s.HoldersIndex, h.LastIndexClaimed, lp.cfg.AccumulatorScale)
		if err != nil {
			return fmt.Errorf("entitlement: %w", err)
		}
		r, err := t.reserves()
		if err != nil {
			return err
		}
		paid := r.Payable(PoolHolders, theoretical)
		if paid == 0 {
			return ErrZeroEntitled
		}

		h.LastClaimTime = t.now
		h.LastIndexClaimed = s.HoldersIndex
		s.HoldersReserve -= paid
		if err := t.payout(PoolHolders, holder, paid); err != nil {
			return err
		}
		t.releaseVirtual(paid)
		if err := t.saveHolder(h); err != nil {
			return err
		}

		res = &ClaimResult{Holder: holder, Balance: balance, Theoretical: theoretical, Paid: paid}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Claimable returns what ClaimProfits would pay holder right now.
func (lp *Launchpad) Claimable(ctx context.Context, holder, mint solana.PublicKey) (*ClaimResult, error) {
	var res *ClaimResult
	err := lp.view(ctx, mint, func(v *scope) error {
		balance, err := v.tx.Balance(ctx, mint, holder)
		if err != nil {
			return err
		}
		h, err := v.holder(holder, u128.Zero)
		if err != nil {
			return err
		}
		theoretical, err := math.Entitlement(balance, v.state.HoldersIndex, h.LastIndexClaimed, lp.cfg.AccumulatorScale)
		if err != nil {
			return err
		}
		r, err := v.reserves()
		if err != nil {
			return err
		}
		res = &ClaimResult{Holder: holder, Balance: balance, Theoretical: theoretical, Paid: r.Payable(PoolHolders, theoretical)}
		return nil
	})
	return res, err
}
