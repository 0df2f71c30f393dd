// Package refundtx builds the unsigned refund PSBT: the
// script-path skeleton the user signs once tLock has matured, left
// unsigned because chantools' own sweeptimelock.go separates "build the
// spend" from "the operator supplies the signing key" the same way. This
// package gives the refund path that same shape without assuming where the
// user's signing key lives.
package refundtx

import (
	"math"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/thunderswap/htlc"
	"github.com/lightninglabs/thunderswap/swap"
)

const refundVbytesOverhead = 130
const outputVbytes = 43
const txOverheadVbytes = 10.5
const minFeeSat = 1000
const dustLimit = 330

// Build constructs an unsigned PSBT spending the HTLC's refund leaf: one
// input with sequence < 0xffffffff and nLockTime == tLock, one output to
// refundAddress, and the refund tapleaf + control block attached to the
// PSBT input so any signer holding the user's key can complete it.
func Build(outpoint swap.FundingOutpoint, tmpl swap.HTLCTemplate,
	refundAddress btcutil.Address, feeRate float64) (*psbt.Packet, error) {

	out, leaves, err := htlc.Build(tmpl)
	if err != nil {
		return nil, err
	}

	internalKey, err := htlc.InternalKey()
	if err != nil {
		return nil, err
	}

	// Sibling for the refund leaf's own control block is the claim leaf
	// hash (the tree has exactly two leaves).
	controlBlock, err := refundControlBlock(out, leaves, internalKey)
	if err != nil {
		return nil, err
	}

	feeSat := uint64(math.Ceil(feeRate * (txOverheadVbytes +
		refundVbytesOverhead + outputVbytes)))
	if feeSat < minFeeSat {
		feeSat = minFeeSat
	}
	if outpoint.ValueSat <= feeSat {
		return nil, swap.New(swap.KindDustAfterFee,
			"funding value %d sat does not cover refund fee %d sat",
			outpoint.ValueSat, feeSat)
	}
	outputValue := outpoint.ValueSat - feeSat
	if outputValue < dustLimit {
		return nil, swap.New(swap.KindDustAfterFee,
			"refund output %d sat is below dust limit %d",
			outputValue, dustLimit)
	}

	refundScript, err := txscript.PayToAddrScript(refundAddress)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"building refund output script")
	}

	tx := wire.NewMsgTx(2)
	tx.LockTime = tmpl.TLock

	txidHash := chainhash.Hash(outpoint.Txid)
	txIn := wire.NewTxIn(wire.NewOutPoint(&txidHash, outpoint.Vout), nil, nil)
	// Sequence must be strictly less than 0xffffffff for nLockTime to be
	// honored by consensus.
	txIn.Sequence = wire.MaxTxInSequenceNum - 1
	tx.AddTxIn(txIn)
	tx.AddTxOut(wire.NewTxOut(int64(outputValue), refundScript))

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"creating refund PSBT")
	}

	packet.Inputs[0].WitnessUtxo = wire.NewTxOut(
		int64(outpoint.ValueSat), out.ScriptPubKey,
	)
	packet.Inputs[0].TaprootLeafScript = []*psbt.TaprootTapLeafScript{{
		ControlBlock: controlBlock,
		Script:       leaves.RefundScript,
		LeafVersion:  txscript.BaseLeafVersion,
	}}

	return packet, nil
}

func refundControlBlock(out *htlc.Output, leaves *htlc.Tapleaves,
	internalKeyBytes [32]byte) ([]byte, error) {

	internalPubKey, err := schnorr.ParsePubKey(internalKeyBytes[:])
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"parsing internal key")
	}

	cb := txscript.ControlBlock{
		InternalKey:     internalPubKey,
		LeafVersion:     txscript.BaseLeafVersion,
		OutputKeyYIsOdd: out.OutputOdd,
		InclusionProof:  leaves.ClaimHash[:],
	}
	return cb.ToBytes()
}
