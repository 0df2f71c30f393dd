// Package keys derives the signing material the USER and LP roles need from
// a single WIF-encoded secp256k1 private key: the compressed pubkey,
// the x-only pubkey, and the key-path-only Taproot (BIP-86) address.
package keys

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightninglabs/thunderswap/swap"
)

// Derived is the full set of key material one role's process needs.
type Derived struct {
	WIF              *btcutil.WIF
	CompressedPubkeyHex string
	XOnlyHex         string
	TaprootAddress   btcutil.Address
}

// FromWIF decodes a WIF-encoded private key and derives the compressed
// pubkey, x-only pubkey, and key-path-only Taproot address for it. The key
// must be compressed; uncompressed keys are rejected.
func FromWIF(wifStr string, params *chaincfg.Params) (*Derived, error) {
	wif, err := btcutil.DecodeWIF(wifStr)
	if err != nil {
		return nil, swap.New(swap.KindInvalidInput,
			"could not decode WIF: %v", err)
	}

	if !wif.CompressPubKey {
		return nil, swap.New(swap.KindInvalidInput,
			"WIF must encode a compressed public key")
	}

	if !wif.IsForNet(params) {
		return nil, swap.New(swap.KindConfigError,
			"WIF is not valid for the configured network")
	}

	pubKey := wif.PrivKey.PubKey()
	compressed := pubKey.SerializeCompressed()

	// Key-path-only Taproot address: internal key is the x-only pubkey
	// itself, empty merkle root, BIP-341 tweak applied by
	// ComputeTaprootKeyNoScript. This is the standard BIP-86 address
	// shape the engine expects everywhere else.
	outputKey := txscript.ComputeTaprootKeyNoScript(pubKey)
	addr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(outputKey), params,
	)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"could not derive taproot address")
	}

	return &Derived{
		WIF:                 wif,
		CompressedPubkeyHex: hex.EncodeToString(compressed),
		XOnlyHex:            hex.EncodeToString(schnorr.SerializePubKey(pubKey)),
		TaprootAddress:      addr,
	}, nil
}
