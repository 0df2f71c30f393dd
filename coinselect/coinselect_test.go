package coinselect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func candidate(valueSat uint64) Candidate {
	return Candidate{ValueSat: valueSat}
}

func TestSelectPicksLargestFirst(t *testing.T) {
	candidates := []Candidate{
		candidate(1000),
		candidate(500000),
		candidate(20000),
	}

	result, err := Select(candidates, 100000, 10, P2TR, 1)
	require.NoError(t, err)
	require.Len(t, result.Selected, 1)
	require.Equal(t, uint64(500000), result.Selected[0].ValueSat)
	require.Greater(t, result.ChangeSat, uint64(0))
}

func TestSelectAccumulatesUntilEnough(t *testing.T) {
	candidates := []Candidate{
		candidate(40000),
		candidate(30000),
		candidate(20000),
	}

	result, err := Select(candidates, 85000, 10, P2TR, 1)
	require.NoError(t, err)
	require.Len(t, result.Selected, 3)
}

func TestSelectFailsOnInsufficientFunds(t *testing.T) {
	candidates := []Candidate{candidate(1000), candidate(2000)}

	_, err := Select(candidates, 1000000, 10, P2TR, 1)
	require.Error(t, err)
}

func TestSelectFailsOnEmptyCandidates(t *testing.T) {
	_, err := Select(nil, 1000, 10, P2TR, 1)
	require.Error(t, err)
}

func TestSelectDropsDustChangeIntoFee(t *testing.T) {
	// Exact value minus fee would leave a sub-dust change; the
	// implementation should absorb it into the fee rather than create a
	// dust output.
	feeAt1 := estimateFee(10, P2TR, 1, 1)
	candidates := []Candidate{
		{ValueSat: 100000 + feeAt1 + 100}, // 100 sat would-be change, < dust
	}

	result, err := Select(candidates, 100000, 10, P2TR, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(0), result.ChangeSat)
	require.Equal(t, uint64(100000+feeAt1+100)-100000, result.FeeSat)
}

func TestSelectP2WPKHUsesDifferentWeight(t *testing.T) {
	feeP2TR := estimateFee(5, P2TR, 1, 1)
	feeP2WPKH := estimateFee(5, P2WPKH, 1, 1)

	require.NotEqual(t, feeP2TR, feeP2WPKH)
}

func TestEstimateFeeFloorsAtMinFee(t *testing.T) {
	fee := estimateFee(0.001, P2TR, 1, 1)
	require.Equal(t, uint64(minFeeSat), fee)
}

func TestEstimateFeeGrowsWithInputCount(t *testing.T) {
	one := estimateFee(10, P2TR, 1, 1)
	three := estimateFee(10, P2TR, 3, 1)
	require.Greater(t, three, one)
}

func TestDustLimitByKind(t *testing.T) {
	require.Equal(t, uint64(DustLimitP2TR), dustLimit(P2TR))
	require.Equal(t, uint64(DustLimitP2WPKH), dustLimit(P2WPKH))
}
