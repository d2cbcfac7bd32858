package solana

import (
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
)

// CreateATAInstruction creates owner's associated account for mint, paid by
// payer.
func CreateATAInstruction(payer, owner, mint solana.PublicKey) solana.Instruction {
	return associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build()
}

func TransferInstruction(mint, fromATA, toATA, authority solana.PublicKey, decimals uint8, amount uint64) solana.Instruction {
	return token.NewTransferCheckedInstruction(
		amount,
		decimals,
		fromATA,
		mint,
		toATA,
		authority,
		[]solana.PublicKey{},
	).Build()
}

func MintToInstruction(mint, toATA, authority solana.PublicKey, amount uint64) solana.Instruction {
	return token.NewMintToInstruction(
		amount,
		mint,
		toATA,
		authority,
		[]solana.PublicKey{},
	).Build()
}

func BurnInstruction(mint, fromATA, authority solana.PublicKey, amount uint64) solana.Instruction {
	return token.NewBurnInstruction(
		amount,
		fromATA,
		mint,
		authority,
		[]solana.PublicKey{},
	).Build()
}

// MergeInstructions moves account creations to the front, dropping
// duplicates, and keeps every other instruction in order.
func MergeInstructions(instructions []solana.Instruction) []solana.Instruction {
	var (
		creates []solana.Instruction
		rest    []solana.Instruction
	)
loop:
	for _, v := range instructions {
		if _, ok := v.(*associatedtokenaccount.Instruction); !ok {
			rest = append(rest, v)
			continue
		}
		vs := v.Accounts()
		for _, c := range creates {
			cs := c.Accounts()
			if vs[0].PublicKey == cs[0].PublicKey && vs[1].PublicKey == cs[1].PublicKey &&
				vs[2].PublicKey == cs[2].PublicKey && vs[3].PublicKey == cs[3].PublicKey {
				continue loop
			}
		}
		creates = append(creates, v)
	}
	return append(creates, rest...)
}
