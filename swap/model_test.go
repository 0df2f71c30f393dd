package swap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreimageHashRoundTrip(t *testing.T) {
	preimage, err := NewPreimage()
	require.NoError(t, err)

	hash := preimage.Hash()

	roundTripped, err := PreimageFromHex(preimage.String())
	require.NoError(t, err)
	require.Equal(t, preimage, roundTripped)
	require.Equal(t, hash, roundTripped.Hash())
}

func TestPreimageFromHexRejectsWrongLength(t *testing.T) {
	_, err := PreimageFromHex("abcd")
	require.Error(t, err)

	var swapErr *Error
	require.ErrorAs(t, err, &swapErr)
	require.Equal(t, KindInvalidInput, swapErr.Kind)
}

func TestPreimageFromHexRejectsBadHex(t *testing.T) {
	_, err := PreimageFromHex("not-hex-zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")
	require.Error(t, err)
}

func TestPaymentHashFromHexRoundTrip(t *testing.T) {
	preimage, err := NewPreimage()
	require.NoError(t, err)
	hash := preimage.Hash()

	parsed, err := PaymentHashFromHex(hash.String())
	require.NoError(t, err)
	require.Equal(t, hash, parsed)
}

func TestPaymentHashFromHexRejectsWrongLength(t *testing.T) {
	_, err := PaymentHashFromHex("ab")
	require.Error(t, err)
}

func TestFundingOutpointString(t *testing.T) {
	var txid [32]byte
	txid[0] = 0xaa
	txid[31] = 0xff

	o := FundingOutpoint{Txid: txid, Vout: 3, ValueSat: 50000}

	// The display form reverses byte order (RPC display convention), so
	// the trailing byte of the internal array is the leading byte shown.
	require.Equal(t, "ff000000000000000000000000000000000000000000000000000000000000aa:3", o.String())
}

func TestHTLCTemplateString(t *testing.T) {
	tmpl := HTLCTemplate{TLock: 700000}
	require.Contains(t, tmpl.String(), "tlock=700000")
}
