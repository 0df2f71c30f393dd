package htlc

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/lightninglabs/thunderswap/swap"
	"github.com/stretchr/testify/require"
)

func genXOnlyCompressed(t *testing.T) [33]byte {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	var out [33]byte
	copy(out[:], priv.PubKey().SerializeCompressed())
	return out
}

func TestInternalKeyIsDeterministic(t *testing.T) {
	a, err := InternalKey()
	require.NoError(t, err)
	b, err := InternalKey()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestBuildIsDeterministic(t *testing.T) {
	tmpl := swap.HTLCTemplate{
		PaymentHash:          swap.Preimage{1, 2, 3}.Hash(),
		LPPubkeyCompressed:   genXOnlyCompressed(t),
		UserPubkeyCompressed: genXOnlyCompressed(t),
		TLock:                700000,
	}

	out1, leaves1, err := Build(tmpl)
	require.NoError(t, err)
	out2, leaves2, err := Build(tmpl)
	require.NoError(t, err)

	require.Equal(t, out1.ScriptPubKey, out2.ScriptPubKey)
	require.Equal(t, out1.OutputKey, out2.OutputKey)
	require.Equal(t, leaves1.ClaimHash, leaves2.ClaimHash)
	require.Equal(t, leaves1.RefundHash, leaves2.RefundHash)
}

func TestBuildChangesWithTemplate(t *testing.T) {
	base := swap.HTLCTemplate{
		PaymentHash:          swap.Preimage{1, 2, 3}.Hash(),
		LPPubkeyCompressed:   genXOnlyCompressed(t),
		UserPubkeyCompressed: genXOnlyCompressed(t),
		TLock:                700000,
	}
	changed := base
	changed.TLock = 800000

	outBase, _, err := Build(base)
	require.NoError(t, err)
	outChanged, _, err := Build(changed)
	require.NoError(t, err)

	require.NotEqual(t, outBase.ScriptPubKey, outChanged.ScriptPubKey)
}

func TestScriptPubKeyShape(t *testing.T) {
	tmpl := swap.HTLCTemplate{
		PaymentHash:          swap.Preimage{9}.Hash(),
		LPPubkeyCompressed:   genXOnlyCompressed(t),
		UserPubkeyCompressed: genXOnlyCompressed(t),
		TLock:                500000,
	}

	out, _, err := Build(tmpl)
	require.NoError(t, err)

	require.Len(t, out.ScriptPubKey, 34)
	require.Equal(t, byte(txscript.OP_1), out.ScriptPubKey[0])
	require.Equal(t, byte(32), out.ScriptPubKey[1])
}

func TestClaimControlBlockParses(t *testing.T) {
	tmpl := swap.HTLCTemplate{
		PaymentHash:          swap.Preimage{7}.Hash(),
		LPPubkeyCompressed:   genXOnlyCompressed(t),
		UserPubkeyCompressed: genXOnlyCompressed(t),
		TLock:                600000,
	}

	out, leaves, err := Build(tmpl)
	require.NoError(t, err)

	cbBytes, err := ClaimControlBlock(out, leaves)
	require.NoError(t, err)

	cb, err := txscript.ParseControlBlock(cbBytes)
	require.NoError(t, err)
	require.Equal(t, out.OutputOdd, cb.OutputKeyYIsOdd)
	require.Equal(t, leaves.RefundHash[:], cb.InclusionProof)
}

func TestMerkleRootIsOrderIndependent(t *testing.T) {
	tmpl := swap.HTLCTemplate{
		PaymentHash:          swap.Preimage{3}.Hash(),
		LPPubkeyCompressed:   genXOnlyCompressed(t),
		UserPubkeyCompressed: genXOnlyCompressed(t),
		TLock:                650000,
	}

	lpXOnly, err := xOnly(tmpl.LPPubkeyCompressed)
	require.NoError(t, err)
	userXOnly, err := xOnly(tmpl.UserPubkeyCompressed)
	require.NoError(t, err)

	leaves, err := BuildTapleaves(tmpl, lpXOnly, userXOnly)
	require.NoError(t, err)

	require.Equal(t,
		MerkleRoot(leaves.ClaimHash, leaves.RefundHash),
		MerkleRoot(leaves.RefundHash, leaves.ClaimHash),
	)
}
