package lpflow

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/lightninglabs/thunderswap/swap"
)

// txidFromHex parses an RPC-order txid string into the internal
// byte-reversed [32]byte FundingOutpoint stores.
func txidFromHex(s string) ([32]byte, error) {
	var out [32]byte
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return out, swap.New(swap.KindInvalidInput, "invalid txid: %v", err)
	}
	copy(out[:], hash[:])
	return out, nil
}
