package launch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/launchpad-go/launch/math"
	"github.com/krazyTry/launchpad-go/store"
)

// CreateLaunch opens a launch for mint. The creator pays the flat platform
// fee and seeds the vault with virtualDeposit, which also becomes the
// initial virtual currency reserve. The mint's authority must already be
// DeriveMintAuthorityPDA(mint).
//
// Example:
//
//	state, err := lp.CreateLaunch(
//		ctx,
//		creator.PublicKey(),
//		mint.PublicKey(),
//		10_000_000, // 10 USDC seed
//	)
func (lp *Launchpad) CreateLaunch(ctx context.Context, creator, mint solana.PublicKey, virtualDeposit uint64) (state *LaunchState, err error) {
	defer func() {
		lp.finish("create", mint, creator, err, amountField("deposit", virtualDeposit, lp.cfg.Decimals))
	}()

	cfg := lp.cfg
	if virtualDeposit < cfg.MinVirtualDeposit {
		return nil, ErrBelowMinDeposit
	}

	key := DeriveLaunchPDA(cfg.ProgramID, mint)
	err = lp.run(ctx, key, func(t *txn) error {
		_, err := store.Get[LaunchState](t.ctx, t.rw, store.LaunchKey(key))
		if err == nil {
			return fmt.Errorf("launch %s: %w", mint, ErrLaunchExists)
		}
		if !store.IsNotExist(err) {
			return err
		}

		vault := DeriveVaultAuthorityPDA(cfg.ProgramID, mint)
		if cfg.PlatformCreationFee > 0 {
			if err := t.tx.Transfer(t.ctx, cfg.CurrencyMint, creator, cfg.PlatformWallet, creator, cfg.PlatformCreationFee); err != nil {
				return fmt.Errorf("could not collect platform fee: %w", err)
			}
		}
		if err := t.tx.Transfer(t.ctx, cfg.CurrencyMint, creator, vault, creator, virtualDeposit); err != nil {
			return fmt.Errorf("could not seed vault: %w", err)
		}

		virtualToken := cfg.initialVirtualToken()
		t.state = &LaunchState{
			Mint:          mint,
			Creator:       creator,
			Platform:      cfg.PlatformWallet,
			Vault:         vault,
			MintAuthority: DeriveMintAuthorityPDA(cfg.ProgramID, mint),
			CurveAccount:  key,
			Decimals:      cfg.Decimals,

			TotalSupply:     cfg.TotalSupply,
			VirtualCurrency: virtualDeposit,
			VirtualToken:    virtualToken,
			K:               math.ComputeK(virtualDeposit, virtualToken),

			StartTime:              t.now,
			Deadline:               t.now + cfg.LaunchDurationSeconds,
			AntiSnipeWindowSeconds: cfg.AntiSnipeWindowSeconds,
			AntiSnipeMaxBps:        cfg.AntiSnipeMaxBps,

			CreatorPaidIn: virtualDeposit,
			// The creation fee is paid out directly, so it is collected and
			// transferred at once.
			PlatformFeesCollected:   cfg.PlatformCreationFee,
			PlatformAutoTransferred: cfg.PlatformCreationFee,

			AutoWithdrawThreshold: cfg.AutoWithdrawThreshold,
		}
		state = t.state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
