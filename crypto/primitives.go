// Package crypto implements the primitive operations the swap engine needs: SHA-256,
// compressed/x-only secp256k1 pubkey validation and conversion, and payment
// hash hex assertions. It does no I/O and returns swap.KindInvalidInput for
// any malformed input.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/lightninglabs/thunderswap/swap"
)

// SHA256 hashes the given bytes.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateCompressedPubkeyHex checks that s is a 66-char hex string
// encoding a valid compressed secp256k1 point with a 0x02/0x03 prefix.
func ValidateCompressedPubkeyHex(s string) ([33]byte, error) {
	var out [33]byte

	if len(s) != 66 {
		return out, swap.New(swap.KindInvalidInput,
			"compressed pubkey must be 66 hex chars, got %d", len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return out, swap.New(swap.KindInvalidInput,
			"compressed pubkey is not valid hex: %v", err)
	}

	if b[0] != 0x02 && b[0] != 0x03 {
		return out, swap.New(swap.KindInvalidInput,
			"compressed pubkey must start with 0x02 or 0x03, got 0x%02x",
			b[0])
	}

	if _, err := btcec.ParsePubKey(b); err != nil {
		return out, swap.New(swap.KindInvalidInput,
			"compressed pubkey is not a valid secp256k1 point: %v", err)
	}

	copy(out[:], b)
	return out, nil
}

// XOnlyFromCompressed drops the compressed pubkey's prefix byte and asserts
// the remaining 32 bytes are a valid x-only curve point.
func XOnlyFromCompressed(compressed [33]byte) ([32]byte, error) {
	var out [32]byte
	copy(out[:], compressed[1:])

	if _, err := schnorr.ParsePubKey(out[:]); err != nil {
		return out, swap.New(swap.KindInvalidInput,
			"not a valid x-only curve point: %v", err)
	}

	return out, nil
}

// AssertValidPaymentHash asserts that s is a 64-char hex payment hash.
func AssertValidPaymentHash(s string) (swap.PaymentHash, error) {
	return swap.PaymentHashFromHex(s)
}
