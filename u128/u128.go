package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
)

var ErrOverflow = errors.New("value overflows Uint128")

// Uint128 is an unsigned 128-bit value. Its borsh layout (Lo then Hi, both
// little endian) matches an on-chain u128.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

var Zero = Uint128{}

func FromUint64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

func FromBig(v *big.Int) (Uint128, error) {
	if v == nil {
		return Zero, nil
	}
	if v.Sign() < 0 {
		return Zero, errors.New("value cannot be negative")
	}
	if v.BitLen() > 128 {
		return Zero, ErrOverflow
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return Uint128{Lo: lo, Hi: hi}, nil
}

func FromUint256(v *uint256.Int) (Uint128, error) {
	if v == nil {
		return Zero, nil
	}
	if v.BitLen() > 128 {
		return Zero, ErrOverflow
	}
	return Uint128{Lo: v[0], Hi: v[1]}, nil
}

func FromBinary(v binary.Uint128) Uint128 {
	return Uint128{Lo: v.Lo, Hi: v.Hi}
}

func (u Uint128) Uint256() *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

func (u Uint128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) Binary() binary.Uint128 {
	v := binary.NewUint128LittleEndian()
	v.Lo = u.Lo
	v.Hi = u.Hi
	return *v
}

func (u Uint128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

func (u Uint128) Cmp(o Uint128) int {
	switch {
	case u.Hi < o.Hi:
		return -1
	case u.Hi > o.Hi:
		return 1
	case u.Lo < o.Lo:
		return -1
	case u.Lo > o.Lo:
		return 1
	}
	return 0
}

// Add returns u+o or ErrOverflow.
func (u Uint128) Add(o Uint128) (Uint128, error) {
	sum, overflow := new(uint256.Int).AddOverflow(u.Uint256(), o.Uint256())
	if overflow {
		return Zero, ErrOverflow
	}
	return FromUint256(sum)
}

// SaturatingSub returns u-o, or zero when o > u.
func (u Uint128) SaturatingSub(o Uint128) Uint128 {
	if u.Cmp(o) <= 0 {
		return Zero
	}
	diff := new(uint256.Int).Sub(u.Uint256(), o.Uint256())
	return Uint128{Lo: diff[0], Hi: diff[1]}
}

func (u Uint128) String() string {
	return u.BigInt().String()
}

func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	}
	v, err := FromBig(i)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

func MustFromString(num string) Uint128 {
	var v Uint128
	if _, err := fmt.Sscan(num, &v); err != nil {
		panic(err)
	}
	return v
}
