package launch

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"

	"github.com/krazyTry/launchpad-go/launch/math"
)

var (
	ProgramID      = solana.MustPublicKeyFromBase58("DdHjSxotiVveS9reai5KvdBFC9xd5HPUeDwPp88LZ98Z")
	USDCDevnet     = solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")
	PlatformWallet = solana.MustPublicKeyFromBase58("7XB2PEWYd5be12CpJ9e4ZTZTHCgNrcTbL7HigciPd1C6")
)

// Config holds every tunable of the launch program. It is a value type and
// is never mutated after NewLaunchpad.
type Config struct {
	ProgramID      solana.PublicKey
	CurrencyMint   solana.PublicKey
	PlatformWallet solana.PublicKey

	SuccessThreshold    uint64
	PlatformCreationFee uint64
	MinVirtualDeposit   uint64
	BurnOnBuyPercent    uint64

	AntiSnipeWindowSeconds int64
	AntiSnipeMaxBps        uint64

	LockDurationSeconds             int64
	AutoWithdrawThreshold           uint64
	AccumulatorScale                uint64
	PlatformWithdrawCooldownSeconds int64
	LaunchDurationSeconds           int64

	SellTaxTiers     []math.TaxTier
	PlatformShareBps uint64
	CreatorShareBps  uint64

	TotalSupply            uint64
	InitialVirtualTokenBps uint64
	Decimals               uint8
}

func DefaultConfig() Config {
	return Config{
		ProgramID:      ProgramID,
		CurrencyMint:   USDCDevnet,
		PlatformWallet: PlatformWallet,

		SuccessThreshold:    5_000_000_000,
		PlatformCreationFee: 5_000_000,
		MinVirtualDeposit:   10_000_000,
		BurnOnBuyPercent:    1,

		AntiSnipeWindowSeconds: 20,
		AntiSnipeMaxBps:        10,

		LockDurationSeconds:             5 * 365 * 24 * 60 * 60,
		AutoWithdrawThreshold:           1_000_000_000,
		AccumulatorScale:                1_000_000_000_000,
		PlatformWithdrawCooldownSeconds: 24 * 60 * 60,
		LaunchDurationSeconds:           72 * 60 * 60,

		SellTaxTiers: []math.TaxTier{
			{MaxPercent: 30, RatePerMille: 5},
			{MaxPercent: 70, RatePerMille: 10},
			{MaxPercent: ^uint64(0), RatePerMille: 30},
		},
		PlatformShareBps: 2000,
		CreatorShareBps:  3000,

		TotalSupply:            1_000_000_000 * 1_000_000,
		InitialVirtualTokenBps: 5000,
		Decimals:               6,
	}
}

// ParseConfig overlays the JSON document data onto DefaultConfig. Absent
// fields keep their defaults.
//
// Example:
//
//	cfg, err := launch.ParseConfig([]byte(`{
//		"currencyMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
//		"successThreshold": 10000000000,
//		"sellTaxTiers": [{"maxPercent": 50, "ratePerMille": 5}, {"maxPercent": 100, "ratePerMille": 20}]
//	}`))
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if !gjson.ValidBytes(data) {
		return cfg, errors.New("invalid config json")
	}
	doc := gjson.ParseBytes(data)

	keys := []struct {
		name string
		dst  *solana.PublicKey
	}{
		{"programId", &cfg.ProgramID},
		{"currencyMint", &cfg.CurrencyMint},
		{"platformWallet", &cfg.PlatformWallet},
	}
	for _, k := range keys {
		if v := doc.Get(k.name); v.Exists() {
			pk, err := solana.PublicKeyFromBase58(v.String())
			if err != nil {
				return cfg, fmt.Errorf("config %s: %w", k.name, err)
			}
			*k.dst = pk
		}
	}

	uints := []struct {
		name string
		dst  *uint64
	}{
		{"successThreshold", &cfg.SuccessThreshold},
		{"platformCreationFee", &cfg.PlatformCreationFee},
		{"minVirtualDeposit", &cfg.MinVirtualDeposit},
		{"burnOnBuyPercent", &cfg.BurnOnBuyPercent},
		{"antiSnipeMaxBps", &cfg.AntiSnipeMaxBps},
		{"autoWithdrawThreshold", &cfg.AutoWithdrawThreshold},
		{"accumulatorScale", &cfg.AccumulatorScale},
		{"platformShareBps", &cfg.PlatformShareBps},
		{"creatorShareBps", &cfg.CreatorShareBps},
		{"totalSupply", &cfg.TotalSupply},
		{"initialVirtualTokenBps", &cfg.InitialVirtualTokenBps},
	}
	for _, k := range uints {
		if v := doc.Get(k.name); v.Exists() {
			*k.dst = v.Uint()
		}
	}

	ints := []struct {
		name string
		dst  *int64
	}{
		{"antiSnipeWindowSeconds", &cfg.AntiSnipeWindowSeconds},
		{"lockDurationSeconds", &cfg.LockDurationSeconds},
		{"platformWithdrawCooldownSeconds", &cfg.PlatformWithdrawCooldownSeconds},
		{"launchDurationSeconds", &cfg.LaunchDurationSeconds},
	}
	for _, k := range ints {
		if v := doc.Get(k.name); v.Exists() {
			*k.dst = v.Int()
		}
	}

	if v := doc.Get("decimals"); v.Exists() {
		cfg.Decimals = uint8(v.Uint())
	}

	if v := doc.Get("sellTaxTiers"); v.Exists() {
		var tiers []math.TaxTier
		for _, t := range v.Array() {
			tiers = append(tiers, math.TaxTier{
				MaxPercent:   t.Get("maxPercent").Uint(),
				RatePerMille: t.Get("ratePerMille").Uint(),
			})
		}
		cfg.SellTaxTiers = tiers
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.PlatformShareBps+c.CreatorShareBps > math.MaxBasisPoint {
		return errors.New("platform and creator shares exceed 100%")
	}
	if len(c.SellTaxTiers) == 0 {
		return errors.New("at least one sell tax tier is required")
	}
	for i, t := range c.SellTaxTiers {
		if t.RatePerMille > math.PerMille {
			return fmt.Errorf("sell tax tier %d: rate %d exceeds 1000 per mille", i, t.RatePerMille)
		}
		if i > 0 && t.MaxPercent <= c.SellTaxTiers[i-1].MaxPercent {
			return fmt.Errorf("sell tax tier %d: tiers must be strictly ascending", i)
		}
	}
	if c.AccumulatorScale == 0 {
		return errors.New("accumulator scale must be positive")
	}
	if c.TotalSupply == 0 {
		return errors.New("total supply must be positive")
	}
	if c.InitialVirtualTokenBps == 0 || c.InitialVirtualTokenBps > math.MaxBasisPoint {
		return errors.New("initial virtual token share must be in (0, 10000] bps")
	}
	if c.BurnOnBuyPercent >= math.Percent {
		return errors.New("burn on buy must be below 100%")
	}
	if c.AntiSnipeMaxBps > math.MaxBasisPoint {
		return errors.New("anti-snipe cap exceeds total supply")
	}
	if c.LaunchDurationSeconds <= 0 || c.LockDurationSeconds < 0 || c.PlatformWithdrawCooldownSeconds < 0 {
		return errors.New("durations must not be negative")
	}
	if c.CurrencyMint.IsZero() || c.PlatformWallet.IsZero() {
		return errors.New("currency mint and platform wallet are required")
	}
	return nil
}

func (c Config) initialVirtualToken() uint64 {
	return math.SaturatingMulDiv(c.TotalSupply, c.InitialVirtualTokenBps, math.MaxBasisPoint)
}
