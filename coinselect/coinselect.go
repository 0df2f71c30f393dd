// Package coinselect implements greedy, largest-first coin accumulation
// with a per-input-kind fee estimate (via lnd's TxWeightEstimator, the same
// sizing helper recoverloopin.go and sweeptimelock.go use to size a sweep)
// and a dust-aware change decision.
package coinselect

import (
	"math"
	"sort"

	"github.com/btcsuite/btcd/txscript"
	"github.com/lightningnetwork/lnd/input"

	"github.com/lightninglabs/thunderswap/swap"
)

// Kind identifies the scriptPubKey shape of a candidate input, which drives
// the per-input weight estimate.
type Kind int

const (
	P2TR Kind = iota
	P2WPKH
)

const (
	minFeeSat = 1000

	DustLimitP2TR   = 330
	DustLimitP2WPKH = 294
)

// Candidate is one spendable UTXO under consideration.
type Candidate struct {
	Txid      [32]byte
	Vout      uint32
	ValueSat  uint64
	ScriptHex string
}

// Result is the outcome of a successful selection.
type Result struct {
	Selected  []Candidate
	FeeSat    uint64
	ChangeSat uint64
}

func dustLimit(kind Kind) uint64 {
	if kind == P2WPKH {
		return DustLimitP2WPKH
	}
	return DustLimitP2TR
}

// addInput accounts for one selected input's weight, matching the key-path
// spend the deposit builder signs.
func addInput(estimator *input.TxWeightEstimator, kind Kind) {
	if kind == P2WPKH {
		estimator.AddP2WKHInput()
		return
	}
	estimator.AddTaprootKeySpendInput(txscript.SigHashDefault)
}

// estimateFee sizes a transaction with selectedCount inputs of kind and
// outputCount P2TR outputs, converts its vsize to a fee at feeRate sat/vB,
// and floors the result at the network's practical minimum relay fee.
func estimateFee(feeRate float64, kind Kind, selectedCount,
	outputCount int) uint64 {

	var estimator input.TxWeightEstimator
	for i := 0; i < selectedCount; i++ {
		addInput(&estimator, kind)
	}
	for i := 0; i < outputCount; i++ {
		estimator.AddP2TROutput()
	}

	fee := uint64(math.Ceil(feeRate * float64(estimator.VSize())))
	if fee < minFeeSat {
		return minFeeSat
	}
	return fee
}

// Select greedily accumulates the largest-value candidates first until the
// running sum covers the target plus the estimated fee for the transaction
// built so far (one target output, plus a change output once added).
//
// outputCount is the number of non-change outputs the caller will add (the
// deposit builder uses 1).
func Select(candidates []Candidate, targetSat uint64, feeRate float64,
	kind Kind, outputCount int) (*Result, error) {

	if len(candidates) == 0 {
		return nil, swap.New(swap.KindFundsUnavailable, "no utxos available")
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ValueSat > sorted[j].ValueSat
	})

	var (
		sum      uint64
		selected []Candidate
	)

	for _, c := range sorted {
		selected = append(selected, c)
		sum += c.ValueSat

		fee := estimateFee(feeRate, kind, len(selected), outputCount+1)
		if sum >= targetSat+fee {
			change := sum - targetSat - fee
			if change < dustLimit(kind) {
				feeNoChange := estimateFee(
					feeRate, kind, len(selected), outputCount,
				)
				if sum < targetSat+feeNoChange {
					continue
				}
				return &Result{
					Selected:  selected,
					FeeSat:    sum - targetSat,
					ChangeSat: 0,
				}, nil
			}

			return &Result{
				Selected:  selected,
				FeeSat:    fee,
				ChangeSat: change,
			}, nil
		}

		// Too little for a change output, but a transaction without one
		// may still be covered.
		feeNoChange := estimateFee(feeRate, kind, len(selected), outputCount)
		if sum >= targetSat+feeNoChange {
			return &Result{
				Selected:  selected,
				FeeSat:    sum - targetSat,
				ChangeSat: 0,
			}, nil
		}
	}

	return nil, swap.New(swap.KindFundsUnavailable,
		"insufficient funds: have %d sat across %d utxos, need %d sat "+
			"plus fees", sum, len(sorted), targetSat)
}
