package launch

import (
	"github.com/krazyTry/launchpad-go/launch/math"
)

// Pool names one of the obligations carved out of the shared vault.
type Pool int

const (
	PoolNone Pool = iota
	PoolPlatform
	PoolCreator
	PoolHolders
)

func (p Pool) String() string {
	switch p {
	case PoolPlatform:
		return "platform"
	case PoolCreator:
		return "creator"
	case PoolHolders:
		return "holders"
	}
	return "none"
}

// ReserveLedger views the launch's segregated obligations against one vault
// balance. Every payout is bounded by the payer's own reserve and by the
// liquidity the other obligations leave free.
type ReserveLedger struct {
	state *LaunchState
	vault uint64
}

func newReserveLedger(state *LaunchState, vault uint64) *ReserveLedger {
	return &ReserveLedger{state: state, vault: vault}
}

func (r *ReserveLedger) Vault() uint64 { return r.vault }

func (r *ReserveLedger) UnpaidPlatform() uint64 {
	return math.SaturatingSub(r.state.PlatformFeesCollected, r.state.PlatformAutoTransferred)
}

func (r *ReserveLedger) Reserve(p Pool) uint64 {
	switch p {
	case PoolPlatform:
		return r.UnpaidPlatform()
	case PoolCreator:
		return r.state.CreatorReserve
	case PoolHolders:
		return r.state.HoldersReserve
	}
	return 0
}

func (r *ReserveLedger) Obligations() uint64 {
	return math.SaturatingAdd(math.SaturatingAdd(r.UnpaidPlatform(), r.state.CreatorReserve), r.state.HoldersReserve)
}

// Free returns the vault balance left after every obligation except
// exclude's own.
func (r *ReserveLedger) Free(exclude Pool) uint64 {
	return math.SaturatingSub(r.vault, math.SaturatingSub(r.Obligations(), r.Reserve(exclude)))
}

// Payable returns min(requested, reserve(p), Free(p)).
func (r *ReserveLedger) Payable(p Pool, requested uint64) uint64 {
	return math.Min(requested, r.Reserve(p), r.Free(p))
}

func (r *ReserveLedger) Solvent() bool {
	return r.vault >= r.Obligations()
}

// Reserves is a point-in-time view of a launch's vault.
type Reserves struct {
	Vault          uint64
	UnpaidPlatform uint64
	Creator        uint64
	Holders        uint64
	Free           uint64
}

func (r *ReserveLedger) Snapshot() Reserves {
	return Reserves{
		Vault:          r.vault,
		UnpaidPlatform: r.UnpaidPlatform(),
		Creator:        r.state.CreatorReserve,
		Holders:        r.state.HoldersReserve,
		Free:           r.Free(PoolNone),
	}
}
