package userflow

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"

	"github.com/lightninglabs/thunderswap/swap"
)

func compressedFromPrivKey(priv *btcec.PrivateKey) [33]byte {
	var out [33]byte
	copy(out[:], priv.PubKey().SerializeCompressed())
	return out
}

func hexCompressed(pub [33]byte) string {
	return hex.EncodeToString(pub[:])
}

// taprootAddress builds the btcutil.Address for a reconstructed HTLC
// output key, on the network given in Params.NetParams.
func (m *Machine) taprootAddress(outputKey [32]byte) (btcutil.Address, error) {
	addr, err := btcutil.NewAddressTaproot(outputKey[:], m.p.NetParams)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"deriving HTLC taproot address")
	}
	return addr, nil
}
