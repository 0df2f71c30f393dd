package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
)

func genCompressedPubkeyHex(t *testing.T) (string, [33]byte) {
	t.Helper()

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	var compressed [33]byte
	copy(compressed[:], priv.PubKey().SerializeCompressed())
	return hex.EncodeToString(compressed[:]), compressed
}

func TestValidateCompressedPubkeyHexAccepts(t *testing.T) {
	s, compressed := genCompressedPubkeyHex(t)

	got, err := ValidateCompressedPubkeyHex(s)
	require.NoError(t, err)
	require.Equal(t, compressed, got)
}

func TestValidateCompressedPubkeyHexRejectsWrongLength(t *testing.T) {
	_, err := ValidateCompressedPubkeyHex("02abcd")
	require.Error(t, err)
}

func TestValidateCompressedPubkeyHexRejectsBadPrefix(t *testing.T) {
	s, _ := genCompressedPubkeyHex(t)
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	b[0] = 0x04

	_, err = ValidateCompressedPubkeyHex(hex.EncodeToString(b))
	require.Error(t, err)
}

func TestValidateCompressedPubkeyHexRejectsNonCurvePoint(t *testing.T) {
	// Valid prefix, valid hex, but not actually on the curve.
	bad := "02" + "ff00000000000000000000000000000000000000000000000000000000000000"[:64]
	_, err := ValidateCompressedPubkeyHex(bad)
	require.Error(t, err)
}

func TestXOnlyFromCompressed(t *testing.T) {
	_, compressed := genCompressedPubkeyHex(t)

	xOnly, err := XOnlyFromCompressed(compressed)
	require.NoError(t, err)

	_, err = schnorr.ParsePubKey(xOnly[:])
	require.NoError(t, err)
	require.Equal(t, compressed[1:], xOnly[:])
}

func TestAssertValidPaymentHash(t *testing.T) {
	hash := SHA256([]byte("preimage"))
	h, err := AssertValidPaymentHash(hex.EncodeToString(hash[:]))
	require.NoError(t, err)
	require.Equal(t, hash[:], h[:])
}

func TestAssertValidPaymentHashRejectsBadLength(t *testing.T) {
	_, err := AssertValidPaymentHash("ab")
	require.Error(t, err)
}
