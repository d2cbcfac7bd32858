package math

import (
	"github.com/holiman/uint256"

	"github.com/krazyTry/launchpad-go/u128"
)

const (
	MaxBasisPoint = 10_000
	PerMille      = 1_000
	Percent       = 100
)

// TaxTier applies RatePerMille to sells whose size, in whole percent of the
// total supply, is at most MaxPercent.
type TaxTier struct {
	MaxPercent   uint64
	RatePerMille uint64
}

type FeeSplit struct {
	Platform uint64
	Creator  uint64
	Holders  uint64
}

func (f FeeSplit) Total() uint64 {
	return f.Platform + f.Creator + f.Holders
}

// SellPercent returns floor(amount*100/totalSupply).
func SellPercent(amount, totalSupply uint64) uint64 {
	return SaturatingMulDiv(amount, Percent, totalSupply)
}

// SellTaxRate picks the first tier covering percent. Percentages above every
// tier use the last one.
func SellTaxRate(percent uint64, tiers []TaxTier) uint64 {
	if len(tiers) == 0 {
		return 0
	}
	for _, tier := range tiers {
		if percent <= tier.MaxPercent {
			return tier.RatePerMille
		}
	}
	return tiers[len(tiers)-1].RatePerMille
}

// GetSellTax returns floor(amountOut * ratePerMille / 1000).
func GetSellTax(amountOut, ratePerMille uint64) uint64 {
	return SaturatingMulDiv(amountOut, ratePerMille, PerMille)
}

// SplitFee gives the platform and creator their basis-point shares rounded
// down; holders receive the remainder so no unit is lost to rounding.
func SplitFee(tax, platformBps, creatorBps uint64) FeeSplit {
	platform := SaturatingMulDiv(tax, platformBps, MaxBasisPoint)
	creator := SaturatingMulDiv(tax, creatorBps, MaxBasisPoint)
	return FeeSplit{
		Platform: platform,
		Creator:  creator,
		Holders:  SaturatingSub(SaturatingSub(tax, platform), creator),
	}
}

// BurnAmount returns floor(amount * percent / 100).
func BurnAmount(amount, percent uint64) uint64 {
	return SaturatingMulDiv(amount, percent, Percent)
}

// SnipeCap returns floor(totalSupply * maxBps / 10000).
func SnipeCap(totalSupply, maxBps uint64) uint64 {
	return SaturatingMulDiv(totalSupply, maxBps, MaxBasisPoint)
}

// IndexIncrement returns share * scale / supply, the per-token increase of
// the holders index. A zero supply distributes nothing.
func IndexIncrement(share, scale, supply uint64) (u128.Uint128, error) {
	if supply == 0 || share == 0 {
		return u128.Zero, nil
	}
	inc, err := MulDivWide(uint256.NewInt(share), uint256.NewInt(scale), uint256.NewInt(supply))
	if err != nil {
		return u128.Zero, err
	}
	return u128.FromUint256(inc)
}

// Entitlement returns balance * (index - checkpoint) / scale, saturating at
// the uint64 range.
func Entitlement(balance uint64, index, checkpoint u128.Uint128, scale uint64) (uint64, error) {
	delta := index.SaturatingSub(checkpoint)
	v, err := MulDivWide(uint256.NewInt(balance), delta.Uint256(), uint256.NewInt(scale))
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return ^uint64(0), nil
	}
	return v.Uint64(), nil
}
