package solana

import (
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// TokenAccount is the part of an SPL token account the ledger reads.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
	State  AccountState
}

func (a *TokenAccount) IsFrozen() bool {
	return a.State == AccountStateFrozen
}

// tokenAccountLayout https://github.com/solana-labs/solana-program-library/blob/d72289c79a04411c69a8bf1054f7156b6196f9b3/token/js/src/state/account.ts#L69
type tokenAccountLayout struct {
	Mint           solana.PublicKey
	Owner          solana.PublicKey
	Amount         uint64
	DelegateOption uint32
	Delegate       solana.PublicKey
	State          uint8
}

// TokenAccountSize is the length of an SPL token account.
const TokenAccountSize = 165

func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("token account data is %d bytes, want %d", len(data), TokenAccountSize)
	}
	raw := &tokenAccountLayout{}
	if err := binary.NewBinDecoder(data).Decode(raw); err != nil {
		return nil, err
	}
	return &TokenAccount{
		Mint:   raw.Mint,
		Owner:  raw.Owner,
		Amount: raw.Amount,
		State:  AccountState(raw.State),
	}, nil
}
