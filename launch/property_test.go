package launch

import (
	"math/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// TestRandomTradingStaysSolvent drives a launch with a random mix of
// operations and checks the vault invariants after every step.
func TestRandomTradingStaysSolvent(t *testing.T) {
	require := require.New(t)
	cfg := DefaultConfig()
	cfg.AutoWithdrawThreshold = 2_000_000
	cfg.PlatformWithdrawCooldownSeconds = 60
	e := newTestEnv(t, cfg)
	e.open(10_000_000)

	rng := rand.New(rand.NewSource(7))
	users := make([]solana.PublicKey, 5)
	for i := range users {
		users[i] = solana.NewWallet().PublicKey()
		e.fund(users[i], 1_000_000_000_000)
	}

	prev := e.state()
	for i := 0; i < 400; i++ {
		u := users[rng.Intn(len(users))]
		var err error
		switch op := rng.Intn(10); {
		case op < 4:
			_, err = e.lp.Buy(e.ctx, u, e.mint, 1+rng.Uint64()%500_000_000, 0, e.deadline())
		case op < 8:
			if bal := e.tokensOf(u); bal > 0 {
				_, err = e.lp.Sell(e.ctx, u, e.mint, 1+rng.Uint64()%bal, 0, e.deadline())
			}
		case op == 8:
			_, err = e.lp.ClaimProfits(e.ctx, u, e.mint)
		default:
			if rng.Intn(2) == 0 {
				_, err = e.lp.WithdrawCreatorReserve(e.ctx, e.creator, e.mint, 1+rng.Uint64()%5_000_000)
			} else {
				_, err = e.lp.WithdrawPlatformRemaining(e.ctx, e.platform, e.mint)
			}
		}
		if err != nil {
			require.NotEqual(KindArithmetic, Kind(err), "step %d: %v", i, err)
			require.NotEqual(KindUnknown, Kind(err), "step %d: %v", i, err)
			require.NotErrorIs(err, ErrInsolvent, "step %d", i)
		}
		e.clock.Advance(int64(rng.Intn(30)))

		s := e.state()
		e.requireSolvent()
		require.GreaterOrEqual(s.HoldersIndex.Cmp(prev.HoldersIndex), 0, "step %d: holders index decreased", i)
		require.GreaterOrEqual(s.TotalRaised, prev.TotalRaised)
		require.GreaterOrEqual(s.PlatformFeesCollected, s.PlatformAutoTransferred)
		require.False(s.InTrade)
		require.Equal(e.ledger.SupplyOf(e.mint), totalHeld(e, users))
		prev = s
	}
}

func totalHeld(e *testEnv, users []solana.PublicKey) uint64 {
	var sum uint64
	for _, u := range users {
		sum += e.tokensOf(u)
	}
	return sum
}
