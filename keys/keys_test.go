package keys

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func genWIF(t *testing.T, params *chaincfg.Params, compressed bool) string {
	t.Helper()

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	wif, err := btcutil.NewWIF(priv, params, compressed)
	require.NoError(t, err)
	return wif.String()
}

func TestFromWIFDerivesTaprootAddress(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	wifStr := genWIF(t, params, true)

	derived, err := FromWIF(wifStr, params)
	require.NoError(t, err)

	require.Len(t, derived.CompressedPubkeyHex, 66)
	require.Len(t, derived.XOnlyHex, 64)
	require.NotNil(t, derived.TaprootAddress)
	require.True(t, derived.TaprootAddress.IsForNet(params))
}

func TestFromWIFRejectsUncompressed(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	wifStr := genWIF(t, params, false)

	_, err := FromWIF(wifStr, params)
	require.Error(t, err)
}

func TestFromWIFRejectsWrongNetwork(t *testing.T) {
	wifStr := genWIF(t, &chaincfg.MainNetParams, true)

	_, err := FromWIF(wifStr, &chaincfg.RegressionNetParams)
	require.Error(t, err)
}

func TestFromWIFRejectsGarbage(t *testing.T) {
	_, err := FromWIF("not-a-wif", &chaincfg.RegressionNetParams)
	require.Error(t, err)
}

func TestFromWIFIsDeterministic(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	wifStr := genWIF(t, params, true)

	a, err := FromWIF(wifStr, params)
	require.NoError(t, err)
	b, err := FromWIF(wifStr, params)
	require.NoError(t, err)

	require.Equal(t, a.CompressedPubkeyHex, b.CompressedPubkeyHex)
	require.Equal(t, a.TaprootAddress.String(), b.TaprootAddress.String())
}
