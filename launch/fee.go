package launch

import (
	"fmt"

	"github.com/krazyTry/launchpad-go/launch/math"
)

// collectSellTax prices the sell tax on currencyOut and books the three
// shares against their reserves. The tax itself stays in the vault.
func (t *txn) collectSellTax(tokenIn, currencyOut uint64) (rate, tax uint64, fees math.FeeSplit, err error) {
	s, cfg := t.state, t.lp.cfg

	rate = math.SellTaxRate(math.SellPercent(tokenIn, s.TotalSupply), cfg.SellTaxTiers)
	tax = math.GetSellTax(currencyOut, rate)
	fees = math.SplitFee(tax, cfg.PlatformShareBps, cfg.CreatorShareBps)

	if s.PlatformFeesCollected, err = math.Add(s.PlatformFeesCollected, fees.Platform); err != nil {
		return 0, 0, fees, fmt.Errorf("platform fees: %w", err)
	}
	if s.CreatorReserve, err = math.Add(s.CreatorReserve, fees.Creator); err != nil {
		return 0, 0, fees, fmt.Errorf("creator reserve: %w", err)
	}
	if s.HoldersReserve, err = math.Add(s.HoldersReserve, fees.Holders); err != nil {
		return 0, 0, fees, fmt.Errorf("holders reserve: %w", err)
	}
	return rate, tax, fees, nil
}

// autoSweep pays unpaid platform fees out once they reach the launch's
// auto-withdraw threshold, bounded by free liquidity.
func (t *txn) autoSweep() (uint64, error) {
	s := t.state
	r, err := t.reserves()
	if err != nil {
		return 0, err
	}
	if r.UnpaidPlatform() < s.AutoWithdrawThreshold {
		return 0, nil
	}
	amount := r.Payable(PoolPlatform, r.UnpaidPlatform())
	if amount == 0 {
		return 0, nil
	}
	if err := t.payout(PoolPlatform, s.Platform, amount); err != nil {
		return 0, err
	}
	s.PlatformAutoTransferred += amount
	t.releaseVirtual(amount)
	return amount, nil
}
