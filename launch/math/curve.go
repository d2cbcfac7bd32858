package math

import (
	"github.com/holiman/uint256"

	"github.com/krazyTry/launchpad-go/u128"
)

// GetBuyAmountOut returns the tokens released for currencyIn:
//
//	newCurrency = vC + currencyIn
//	newToken    = vT * vC / newCurrency
//	tokensOut   = vT - newToken
//
// A fractional newToken is kept in the pool, so buying and immediately
// selling back can never return more currency than was paid.
func GetBuyAmountOut(currencyIn, virtualCurrency, virtualToken uint64) uint64 {
	return getAmountOut(currencyIn, virtualCurrency, virtualToken, RoundUp)
}

// GetSellAmountOut is GetBuyAmountOut with the reserves swapped. The new
// currency reserve is rounded down.
func GetSellAmountOut(tokenIn, virtualCurrency, virtualToken uint64) uint64 {
	return getAmountOut(tokenIn, virtualToken, virtualCurrency, RoundDown)
}

func getAmountOut(amountIn, reserveIn, reserveOut uint64, rounding Rounding) uint64 {
	newIn := SaturatingAdd(reserveIn, amountIn)
	newOut := SaturatingMulDivRound(reserveOut, reserveIn, newIn, rounding)
	return SaturatingSub(reserveOut, newOut)
}

// ComputeK returns the cached invariant vC * vT. Two 64-bit factors always
// fit in 128 bits.
func ComputeK(virtualCurrency, virtualToken uint64) u128.Uint128 {
	k := new(uint256.Int).Mul(uint256.NewInt(virtualCurrency), uint256.NewInt(virtualToken))
	return u128.Uint128{Lo: k[0], Hi: k[1]}
}
