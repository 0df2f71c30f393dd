package claimtx

import (
	"testing"

	"github.com/lightninglabs/thunderswap/swap"
	"github.com/stretchr/testify/require"
)

func TestClaimRejectsPreimageMismatchBeforeTouchingChain(t *testing.T) {
	preimage, err := swap.NewPreimage()
	require.NoError(t, err)

	wrongHash, err := swap.NewPreimage()
	require.NoError(t, err)

	tmpl := swap.HTLCTemplate{PaymentHash: wrongHash.Hash()}

	// chain is nil: if Claim reached any chain call before the preimage
	// check, this would panic instead of returning a typed error.
	_, err = Claim(nil, swap.FundingOutpoint{}, tmpl, preimage, nil, nil, 1)
	require.Error(t, err)

	var swapErr *swap.Error
	require.ErrorAs(t, err, &swapErr)
	require.Equal(t, swap.KindPreimageMismatch, swapErr.Kind)
}
