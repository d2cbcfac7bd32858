package math

import (
	"errors"

	"github.com/holiman/uint256"
)

var ErrOverflow = errors.New("SafeMath: overflow")

func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

func SaturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func Min(values ...uint64) uint64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// SaturatingMulDiv returns floor(x*y/denominator) with a 256-bit
// intermediate product, clamped to the uint64 range. A zero denominator
// yields zero.
func SaturatingMulDiv(x, y, denominator uint64) uint64 {
	return SaturatingMulDivRound(x, y, denominator, RoundDown)
}

func SaturatingMulDivRound(x, y, denominator uint64, rounding Rounding) uint64 {
	if denominator == 0 {
		return 0
	}
	prod := new(uint256.Int).Mul(uint256.NewInt(x), uint256.NewInt(y))
	d := uint256.NewInt(denominator)
	q, r := new(uint256.Int).DivMod(prod, d, new(uint256.Int))
	if rounding == RoundUp && !r.IsZero() {
		q.AddUint64(q, 1)
	}
	if !q.IsUint64() {
		return ^uint64(0)
	}
	return q.Uint64()
}

// MulDivWide returns floor(x*y/denominator) at 256-bit width. A zero
// denominator yields zero.
func MulDivWide(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return new(uint256.Int), nil
	}
	prod, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return prod.Div(prod, denominator), nil
}
