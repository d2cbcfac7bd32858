package solana

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go/programs/token"
)

// DecodeMint decodes an SPL mint account. token.Mint.Decode drops its
// result, so this goes through the decoder directly.
func DecodeMint(data []byte) (*token.Mint, error) {
	mint := &token.Mint{}
	if err := mint.UnmarshalWithDecoder(binary.NewBinDecoder(data)); err != nil {
		return nil, err
	}
	return mint, nil
}
