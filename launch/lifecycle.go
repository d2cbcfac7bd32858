package launch

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type FinalizeResult struct {
	Mint        solana.PublicKey
	Status      Status
	TotalRaised uint64
	Refunded    uint64
}

// Finalize closes an open launch whose deadline has passed. Anyone may call
// it.
func (lp *Launchpad) Finalize(ctx context.Context, caller, mint solana.PublicKey) (res *FinalizeResult, err error) {
	defer func() {
		lp.finish("finalize", mint, caller, err, finalizeFields(res)...)
	}()

	err = lp.update(ctx, mint, func(t *txn) error {
		if t.state.Closed {
			return ErrAlreadyClosed
		}
		if t.now <= t.state.Deadline {
			return ErrTooEarly
		}
		r, err := t.close()
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// close settles the raise. A launch below the success threshold fails and
// refunds the creator's seed deposit out of free liquidity.
func (t *txn) close() (*FinalizeResult, error) {
	s := t.state
	res := &FinalizeResult{Mint: s.Mint, TotalRaised: s.TotalRaised}

	s.Closed = true
	if s.TotalRaised >= t.lp.cfg.SuccessThreshold {
		s.Failed = false
		res.Status = StatusSucceeded
		t.onCommit(func() { t.lp.metrics.transitioned(StatusSucceeded) })
		return res, nil
	}

	s.Failed = true
	res.Status = StatusFailed
	r, err := t.reserves()
	if err != nil {
		return nil, err
	}
	refund := min(s.CreatorPaidIn, r.Free(PoolNone))
	if err := t.payout(PoolNone, s.Creator, refund); err != nil {
		return nil, err
	}
	s.CreatorPaidIn -= refund
	t.releaseVirtual(refund)
	res.Refunded = refund

	t.onCommit(func() { t.lp.metrics.transitioned(StatusFailed) })
	return res, nil
}

// ReclaimVirtualFunds pays the creator whatever seed deposit is still
// outstanding once the launch has closed.
func (lp *Launchpad) ReclaimVirtualFunds(ctx context.Context, caller, mint solana.PublicKey) (refund uint64, err error) {
	defer func() {
		lp.finish("reclaim", mint, caller, err, zap.Uint64("refund", refund))
	}()

	err = lp.update(ctx, mint, func(t *txn) error {
		s := t.state
		if !caller.Equals(s.Creator) {
			return ErrUnauthorized
		}
		if !s.Closed && !s.Migrated {
			return ErrNotEnded
		}
		r, err := t.reserves()
		if err != nil {
			return err
		}
		refund = min(s.CreatorPaidIn, r.Free(PoolNone))
		if refund == 0 {
			return ErrZeroEntitled
		}
		if err := t.payout(PoolNone, s.Creator, refund); err != nil {
			return err
		}
		s.CreatorPaidIn -= refund
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refund, nil
}

func finalizeFields(res *FinalizeResult) []zap.Field {
	if res == nil {
		return nil
	}
	return []zap.Field{
		zap.Stringer("status", res.Status),
		zap.Uint64("total_raised", res.TotalRaised),
		zap.Uint64("refunded", res.Refunded),
	}
}
