package launch

import (
	"errors"

	"github.com/krazyTry/launchpad-go/launch/math"
	"github.com/krazyTry/launchpad-go/ledger"
	"github.com/krazyTry/launchpad-go/store"
	"github.com/krazyTry/launchpad-go/u128"
)

var (
	ErrZeroAmount      = errors.New("amount must be greater than zero")
	ErrDeadline        = errors.New("transaction deadline has passed")
	ErrSlippage        = errors.New("output below minimum, slippage exceeded")
	ErrSnipeSize       = errors.New("trade exceeds the anti-snipe size limit")
	ErrBelowMinDeposit = errors.New("virtual deposit below minimum")

	ErrEnded               = errors.New("launch has ended")
	ErrNotEnded            = errors.New("launch has not ended")
	ErrAlreadyClosed       = errors.New("launch already closed")
	ErrTooEarly            = errors.New("too early")
	ErrMigrationNotAllowed = errors.New("migration not allowed")
	ErrStillLocked         = errors.New("liquidity still locked")
	ErrAlreadyMigrated     = errors.New("launch already migrated")
	ErrLaunchExists        = errors.New("launch already exists")
	ErrNotMigrated         = errors.New("launch has not migrated")

	ErrOverflow     = errors.New("arithmetic overflow")
	ErrUnauthorized = errors.New("caller is not authorized")

	ErrZeroEntitled       = errors.New("nothing to claim")
	ErrZeroHolding        = errors.New("caller holds no tokens")
	ErrAboveAutoThreshold = errors.New("platform balance is above the auto-withdraw threshold")
	ErrInsolvent          = errors.New("vault balance below outstanding obligations")
	ErrOutstanding        = errors.New("launch still owes funds")

	ErrReentrancy = errors.New("reentrant call")
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindState
	KindArithmetic
	KindAuthorization
	KindLiquidity
	KindConcurrency
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindArithmetic:
		return "arithmetic"
	case KindAuthorization:
		return "authorization"
	case KindLiquidity:
		return "liquidity"
	case KindConcurrency:
		return "concurrency"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrZeroAmount, KindValidation},
	{ErrDeadline, KindValidation},
	{ErrSlippage, KindValidation},
	{ErrSnipeSize, KindValidation},
	{ErrBelowMinDeposit, KindValidation},

	{ErrEnded, KindState},
	{ErrNotEnded, KindState},
	{ErrAlreadyClosed, KindState},
	{ErrTooEarly, KindState},
	{ErrMigrationNotAllowed, KindState},
	{ErrStillLocked, KindState},
	{ErrAlreadyMigrated, KindState},
	{ErrLaunchExists, KindState},
	{ErrNotMigrated, KindState},

	{ErrOverflow, KindArithmetic},
	{math.ErrOverflow, KindArithmetic},
	{u128.ErrOverflow, KindArithmetic},

	{ErrUnauthorized, KindAuthorization},
	{ledger.ErrUnauthorized, KindAuthorization},

	{ErrZeroEntitled, KindLiquidity},
	{ErrZeroHolding, KindLiquidity},
	{ErrAboveAutoThreshold, KindLiquidity},
	{ErrInsolvent, KindLiquidity},
	{ErrOutstanding, KindLiquidity},
	{ledger.ErrInsufficientFunds, KindLiquidity},

	{ErrReentrancy, KindConcurrency},
}

// Kind classifies err. Arithmetic errors are fatal: they abort the
// operation like any other error but are reported separately.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	if store.IsNotExist(err) {
		return KindNotFound
	}
	return KindUnknown
}

func IsFatal(err error) bool {
	return Kind(err) == KindArithmetic
}
