package launchpad

import (
	"github.com/krazyTry/launchpad-go/launch"
	"github.com/krazyTry/launchpad-go/ledger/memledger"
	solanago "github.com/krazyTry/launchpad-go/solana"
	"github.com/krazyTry/launchpad-go/store"
)

// NewLaunchpad creates a launchpad over a record store and a token ledger.
//
// Example:
//
//	db, closer, err := OpenBadger("/var/lib/launchpad")
//	if err != nil {
//		return err
//	}
//	defer closer.Close()
//
//	lp, err := NewLaunchpad(
//		DefaultConfig(),
//		db,
//		NewSPLLedger(rpcClient, wsClient, payer, custody),
//		launch.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	lp.CreateLaunch(ctx, creator, mint, 10_000_000)
//	lp.Buy(ctx, buyer, mint, 10_000_000, minTokensOut, deadline)
var NewLaunchpad = launch.NewLaunchpad

// DefaultConfig returns the devnet configuration.
var DefaultConfig = launch.DefaultConfig

// ParseConfig overlays a JSON document on DefaultConfig.
var ParseConfig = launch.ParseConfig

// OpenBadger opens a badger-backed record store in dir.
var OpenBadger = store.OpenBadger

// NewSPLLedger settles ledger effects as SPL token transactions.
var NewSPLLedger = solanago.NewLedger

// NewMemLedger returns an in-process ledger for simulations.
var NewMemLedger = memledger.New
