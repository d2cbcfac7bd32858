package launch

import (
	"github.com/gagliardetto/solana-go"
)

var seed = struct {
	Launch         []byte
	HolderLedger   []byte
	VaultAuthority []byte
	MintAuthority  []byte
	LiquidityLock  []byte
	BurnAuthority  []byte
}{
	Launch:         []byte("launch"),
	HolderLedger:   []byte("buyer_ledger"),
	VaultAuthority: []byte("usdc-vault"),
	MintAuthority:  []byte("mint-auth"),
	LiquidityLock:  []byte("lp-lock"),
	BurnAuthority:  []byte("burn"),
}

// DeriveLaunchPDA addresses the LaunchState of mint. It also owns the
// curve token account.
func DeriveLaunchPDA(programID, mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.Launch, mint.Bytes()}, programID)
	return pub
}

func DeriveHolderPDA(programID, mint, holder solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.HolderLedger, mint.Bytes(), holder.Bytes()}, programID)
	return pub
}

// DeriveVaultAuthorityPDA owns the currency vault of mint's launch.
func DeriveVaultAuthorityPDA(programID, mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.VaultAuthority, mint.Bytes()}, programID)
	return pub
}

func DeriveMintAuthorityPDA(programID, mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.MintAuthority, mint.Bytes()}, programID)
	return pub
}

// DeriveBurnPDA owns the transit account that burn-on-buy mints into and
// burns from.
func DeriveBurnPDA(programID, mint solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.BurnAuthority, mint.Bytes()}, programID)
	return pub
}

// DeriveLockPDA addresses the LiquidityLock of venue and owns its LP vault.
func DeriveLockPDA(programID, venue solana.PublicKey) solana.PublicKey {
	pub, _, _ := solana.FindProgramAddress([][]byte{seed.LiquidityLock, venue.Bytes()}, programID)
	return pub
}
