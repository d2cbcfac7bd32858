package launch

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// CallerType is the role a caller plays in a launch.
type CallerType int

const (
	CallerHolder CallerType = iota
	CallerCreator
	CallerPlatform
)

func (c CallerType) String() string {
	switch c {
	case CallerPlatform:
		return "platform"
	case CallerCreator:
		return "creator"
	}
	return "holder"
}

// ClassifyCaller resolves caller's role, platform first.
func ClassifyCaller(caller solana.PublicKey, s *LaunchState) CallerType {
	switch {
	case caller.Equals(s.Platform):
		return CallerPlatform
	case caller.Equals(s.Creator):
		return CallerCreator
	}
	return CallerHolder
}

// WithdrawCreatorReserve pays the creator up to requested from the creator
// reserve.
func (lp *Launchpad) WithdrawCreatorReserve(ctx context.Context, caller, mint solana.PublicKey, requested uint64) (paid uint64, err error) {
	defer func() {
		lp.finish("withdraw_creator", mint, caller, err, amountField("paid", paid, lp.cfg.Decimals))
	}()

	if requested == 0 {
		return 0, ErrZeroAmount
	}
	err = lp.update(ctx, mint, func(t *txn) error {
		s := t.state
		if !caller.Equals(s.Creator) {
			return ErrUnauthorized
		}
		if s.CreatorReserve == 0 {
			return ErrZeroEntitled
		}
		r, err := t.reserves()
		if err != nil {
			return err
		}
		amount := r.Payable(PoolCreator, requested)
		if amount == 0 {
			return ErrZeroEntitled
		}
		s.CreatorReserve -= amount
		if err := t.payout(PoolCreator, s.Creator, amount); err != nil {
			return err
		}
		t.releaseVirtual(amount)
		paid = amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return paid, nil
}

// WithdrawPlatformRemaining sweeps unpaid platform fees that sit below the
// auto-withdraw threshold. It is rate limited by a cooldown.
func (lp *Launchpad) WithdrawPlatformRemaining(ctx context.Context, caller, mint solana.PublicKey) (paid uint64, err error) {
	defer func() {
		lp.finish("withdraw_platform", mint, caller, err, amountField("paid", paid, lp.cfg.Decimals))
	}()

	err = lp.update(ctx, mint, func(t *txn) error {
		s := t.state
		if ClassifyCaller(caller, s) != CallerPlatform {
			return ErrUnauthorized
		}
		if t.now-s.LastPlatformWithdraw < lp.cfg.PlatformWithdrawCooldownSeconds {
			return ErrTooEarly
		}
		r, err := t.reserves()
		if err != nil {
			return err
		}
		unpaid := r.UnpaidPlatform()
		if unpaid == 0 {
			return ErrZeroEntitled
		}
		if unpaid >= s.AutoWithdrawThreshold {
			return ErrAboveAutoThreshold
		}
		amount := r.Payable(PoolPlatform, unpaid)
		if amount == 0 {
			return ErrZeroEntitled
		}
		s.PlatformAutoTransferred += amount
		s.LastPlatformWithdraw = t.now
		if err := t.payout(PoolPlatform, s.Platform, amount); err != nil {
			return err
		}
		t.releaseVirtual(amount)
		paid = amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return paid, nil
}
