package launch

import (
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/u128"
)

// LaunchState is the per-launch record, keyed by DeriveLaunchPDA(mint).
// Amounts are in base units of the currency or the launched token.
type LaunchState struct {
	Mint          solana.PublicKey
	Creator       solana.PublicKey
	Platform      solana.PublicKey
	Vault         solana.PublicKey // currency vault owner
	MintAuthority solana.PublicKey
	CurveAccount  solana.PublicKey // curve token account owner
	Decimals      uint8

	TotalSupply     uint64
	VirtualCurrency uint64
	VirtualToken    uint64
	K               u128.Uint128
	TotalRaised     uint64

	StartTime              int64
	Deadline               int64
	AntiSnipeWindowSeconds int64
	AntiSnipeMaxBps        uint64

	Closed   bool
	Failed   bool
	Migrated bool

	CreatorPaidIn           uint64
	PlatformFeesCollected   uint64
	PlatformAutoTransferred uint64
	LastPlatformWithdraw    int64
	CreatorReserve          uint64
	HoldersReserve          uint64
	HoldersIndex            u128.Uint128

	InTrade               bool
	AutoWithdrawThreshold uint64
}

// Succeeded reports a closed launch that met its raise target.
func (s *LaunchState) Succeeded() bool {
	return s.Closed && !s.Failed
}

type Status int

const (
	StatusOpen Status = iota
	StatusSucceeded
	StatusFailed
	StatusMigrated
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusMigrated:
		return "migrated"
	}
	return "unknown"
}

func (s *LaunchState) Status() Status {
	switch {
	case s.Migrated:
		return StatusMigrated
	case s.Closed && s.Failed:
		return StatusFailed
	case s.Closed:
		return StatusSucceeded
	}
	return StatusOpen
}

// HolderAccount tracks one holder's position in one launch.
type HolderAccount struct {
	Holder                solana.PublicKey
	Mint                  solana.PublicKey
	CumulativeContributed uint64
	LastClaimTime         int64
	LastIndexClaimed      u128.Uint128
}

// LiquidityLock records the LP position handed to a venue at migration.
// It is keyed by DeriveLockPDA(VenueID); VaultRef owns the locked LP.
type LiquidityLock struct {
	Mint             solana.PublicKey
	VenueID          solana.PublicKey
	LPAssetID        solana.PublicKey
	VaultRef         solana.PublicKey
	UnlockTime       int64
	MigrationAllowed bool
	MigrationTarget  solana.PublicKey
	Authority        solana.PublicKey
}
