package launch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/launchpad-go/launch/math"
)

type BuyResult struct {
	Buyer        solana.PublicKey
	CurrencyIn   uint64
	TokensOut    uint64 // curve output before the burn
	TokensToUser uint64
	Burned       uint64

	// Finalized is set when this trade crossed the deadline and closed the
	// launch.
	Finalized *FinalizeResult
}

type SellResult struct {
	Seller         solana.PublicKey
	TokensIn       uint64
	CurrencyOut    uint64 // pre-tax
	Tax            uint64
	TaxRate        uint64 // per mille
	Fees           math.FeeSplit
	CurrencyToUser uint64
	Swept          uint64
}

// Buy spends currencyIn from buyer's wallet on the curve.
//
// Example:
//
//	res, err := lp.Buy(
//		ctx,
//		buyer,
//		mint,
//		10_000_000,   // 10 USDC
//		minTokensOut, // slippage bound
//		time.Now().Add(time.Minute).Unix(),
//	)
func (lp *Launchpad) Buy(ctx context.Context, buyer, mint solana.PublicKey, currencyIn, minTokensOut uint64, deadline int64) (res *BuyResult, err error) {
	defer func() {
		lp.finish("buy", mint, buyer, err, buyFields(res, lp.cfg.Decimals)...)
	}()

	if currencyIn == 0 {
		return nil, ErrZeroAmount
	}
	if lp.clock.Now() > deadline {
		return nil, ErrDeadline
	}

	err = lp.update(ctx, mint, func(t *txn) error {
		if t.state.Closed {
			return ErrEnded
		}
		if err := t.enterTrade(); err != nil {
			return err
		}
		r, err := t.buy(buyer, currencyIn, minTokensOut)
		if err != nil {
			return err
		}
		if t.now > t.state.Deadline {
			if r.Finalized, err = t.close(); err != nil {
				return err
			}
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	lp.metrics.traded("buy", currencyIn)
	return res, nil
}

func (t *txn) buy(buyer solana.PublicKey, currencyIn, minTokensOut uint64) (*BuyResult, error) {
	s, cfg := t.state, t.lp.cfg
	s.InTrade = true
	defer func() { s.InTrade = false }()

	out := math.GetBuyAmountOut(currencyIn, s.VirtualCurrency, s.VirtualToken)
	if out < minTokensOut {
		return nil, ErrSlippage
	}
	if t.now-s.StartTime <= s.AntiSnipeWindowSeconds {
		if out > math.SnipeCap(s.TotalSupply, s.AntiSnipeMaxBps) {
			return nil, ErrSnipeSize
		}
	}

	burned := math.BurnAmount(out, cfg.BurnOnBuyPercent)
	toUser := out - burned

	if err := t.tx.Transfer(t.ctx, cfg.CurrencyMint, buyer, s.Vault, buyer, currencyIn); err != nil {
		return nil, fmt.Errorf("could not collect %d from buyer: %w", currencyIn, err)
	}
	if err := t.tx.MintTo(t.ctx, s.Mint, buyer, s.MintAuthority, toUser); err != nil {
		return nil, fmt.Errorf("could not mint to buyer: %w", err)
	}
	if burned > 0 {
		burner := DeriveBurnPDA(cfg.ProgramID, s.Mint)
		if err := t.tx.MintTo(t.ctx, s.Mint, burner, s.MintAuthority, burned); err != nil {
			return nil, fmt.Errorf("could not mint burn share: %w", err)
		}
		if err := t.tx.Burn(t.ctx, s.Mint, burner, burner, burned); err != nil {
			return nil, fmt.Errorf("could not burn burn share: %w", err)
		}
	}

	s.VirtualCurrency = math.SaturatingAdd(s.VirtualCurrency, currencyIn)
	s.VirtualToken = math.SaturatingSub(s.VirtualToken, out)
	s.K = math.ComputeK(s.VirtualCurrency, s.VirtualToken)
	s.TotalRaised = math.SaturatingAdd(s.TotalRaised, currencyIn)

	// A buyer's first account starts at the current index so it does not
	// share in taxes collected before it held tokens.
	h, err := t.holder(buyer, s.HoldersIndex)
	if err != nil {
		return nil, err
	}
	h.CumulativeContributed = math.SaturatingAdd(h.CumulativeContributed, currencyIn)
	if err := t.saveHolder(h); err != nil {
		return nil, err
	}

	return &BuyResult{
		Buyer:        buyer,
		CurrencyIn:   currencyIn,
		TokensOut:    out,
		TokensToUser: toUser,
		Burned:       burned,
	}, nil
}

// Sell burns tokenIn of seller's tokens and pays the curve output less the
// sell tax.
func (lp *Launchpad) Sell(ctx context.Context, seller, mint solana.PublicKey, tokenIn, minCurrencyOut uint64, deadline int64) (res *SellResult, err error) {
	defer func() {
		lp.finish("sell", mint, seller, err, sellFields(res, lp.cfg.Decimals)...)
	}()

	if tokenIn == 0 {
		return nil, ErrZeroAmount
	}
	if lp.clock.Now() > deadline {
		return nil, ErrDeadline
	}

	err = lp.update(ctx, mint, func(t *txn) error {
		if t.state.Closed {
			return ErrEnded
		}
		if err := t.enterTrade(); err != nil {
			return err
		}
		r, err := t.sell(seller, tokenIn, minCurrencyOut)
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	lp.metrics.traded("sell", res.CurrencyOut)
	return res, nil
}

func (t *txn) sell(seller solana.PublicKey, tokenIn, minCurrencyOut uint64) (*SellResult, error) {
	s := t.state
	s.InTrade = true
	defer func() { s.InTrade = false }()

	out := math.GetSellAmountOut(tokenIn, s.VirtualCurrency, s.VirtualToken)
	if out < minCurrencyOut {
		return nil, ErrSlippage
	}

	if err := t.tx.Burn(t.ctx, s.Mint, seller, seller, tokenIn); err != nil {
		return nil, fmt.Errorf("could not burn seller tokens: %w", err)
	}

	rate, tax, fees, err := t.collectSellTax(tokenIn, out)
	if err != nil {
		return nil, err
	}

	toUser := out - tax
	if err := t.tx.Transfer(t.ctx, t.lp.cfg.CurrencyMint, s.Vault, seller, s.Vault, toUser); err != nil {
		return nil, fmt.Errorf("could not pay seller: %w", err)
	}

	s.VirtualCurrency = math.SaturatingSub(s.VirtualCurrency, out)
	s.VirtualToken = math.SaturatingAdd(s.VirtualToken, tokenIn)
	s.K = math.ComputeK(s.VirtualCurrency, s.VirtualToken)

	swept, err := t.autoSweep()
	if err != nil {
		return nil, err
	}
	if err := t.accrueHolders(fees.Holders); err != nil {
		return nil, err
	}

	return &SellResult{
		Seller:         seller,
		TokensIn:       tokenIn,
		CurrencyOut:    out,
		Tax:            tax,
		TaxRate:        rate,
		Fees:           fees,
		CurrencyToUser: toUser,
		Swept:          swept,
	}, nil
}

func buyFields(res *BuyResult, decimals uint8) []zap.Field {
	if res == nil {
		return nil
	}
	fields := []zap.Field{
		amountField("currency_in", res.CurrencyIn, decimals),
		amountField("tokens_to_user", res.TokensToUser, decimals),
		zap.Uint64("burned", res.Burned),
	}
	if res.Finalized != nil {
		fields = append(fields, finalizeFields(res.Finalized)...)
	}
	return fields
}

func sellFields(res *SellResult, decimals uint8) []zap.Field {
	if res == nil {
		return nil
	}
	return []zap.Field{
		amountField("tokens_in", res.TokensIn, decimals),
		amountField("currency_out", res.CurrencyOut, decimals),
		amountField("tax", res.Tax, decimals),
		zap.Uint64("swept", res.Swept),
	}
}
