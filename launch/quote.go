package launch

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/launchpad-go/launch/math"
)

// Quote previews a trade against the current curve without staging it.
// Prices are currency per token in whole units.
type Quote struct {
	AmountIn  uint64
	AmountOut uint64 // what the trader receives
	Burned    uint64 // buy only
	Tax       uint64 // sell only
	TaxRate   uint64 // per mille, sell only

	SpotPrice      decimal.Decimal
	ExecutionPrice decimal.Decimal
	PriceImpact    decimal.Decimal // fraction of spot
}

func (lp *Launchpad) QuoteBuy(ctx context.Context, mint solana.PublicKey, currencyIn uint64) (*Quote, error) {
	if currencyIn == 0 {
		return nil, ErrZeroAmount
	}
	s, err := lp.GetLaunch(ctx, mint)
	if err != nil {
		return nil, err
	}
	if s.Closed {
		return nil, ErrEnded
	}
	out := math.GetBuyAmountOut(currencyIn, s.VirtualCurrency, s.VirtualToken)
	burned := math.BurnAmount(out, lp.cfg.BurnOnBuyPercent)

	q := &Quote{
		AmountIn:  currencyIn,
		AmountOut: out - burned,
		Burned:    burned,
		SpotPrice: SpotPrice(s),
	}
	q.ExecutionPrice = price(currencyIn, q.AmountOut)
	q.PriceImpact = impact(q.SpotPrice, q.ExecutionPrice)
	return q, nil
}

func (lp *Launchpad) QuoteSell(ctx context.Context, mint solana.PublicKey, tokenIn uint64) (*Quote, error) {
	if tokenIn == 0 {
		return nil, ErrZeroAmount
	}
	s, err := lp.GetLaunch(ctx, mint)
	if err != nil {
		return nil, err
	}
	if s.Closed {
		return nil, ErrEnded
	}
	out := math.GetSellAmountOut(tokenIn, s.VirtualCurrency, s.VirtualToken)
	rate := math.SellTaxRate(math.SellPercent(tokenIn, s.TotalSupply), lp.cfg.SellTaxTiers)
	tax := math.GetSellTax(out, rate)

	q := &Quote{
		AmountIn:  tokenIn,
		AmountOut: out - tax,
		Tax:       tax,
		TaxRate:   rate,
		SpotPrice: SpotPrice(s),
	}
	q.ExecutionPrice = price(q.AmountOut, tokenIn)
	q.PriceImpact = impact(q.SpotPrice, q.ExecutionPrice)
	return q, nil
}

// SpotPrice is the marginal curve price vC / vT. The currency and the
// launched token share the same decimals.
func SpotPrice(s *LaunchState) decimal.Decimal {
	return price(s.VirtualCurrency, s.VirtualToken)
}

func price(currency, token uint64) decimal.Decimal {
	if token == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(currency).Div(decimal.NewFromUint64(token))
}

func impact(spot, exec decimal.Decimal) decimal.Decimal {
	if spot.IsZero() {
		return decimal.Zero
	}
	return exec.Sub(spot).Div(spot).Abs()
}
