// Package claimtx builds, signs, and broadcasts the LP's claim spend of the
// HTLC's claim tapleaf: a Taproot script-path spend revealing the
// preimage, grounded on the tapscript sighash + schnorr-sign + witness
// assembly shown in the pack's klingdex internal/swap/tx.go BuildRefundTx
// (same script-path shape, different leaf and extra witness element).
package claimtx

import (
	"bytes"
	"encoding/hex"
	"math"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/thunderswap/chainrpc"
	"github.com/lightninglabs/thunderswap/htlc"
	"github.com/lightninglabs/thunderswap/swap"
)

// claimVbytesOverhead approximates the vbytes of the whole claim input: the
// outpoint and sequence plus the witness-discounted signature, preimage,
// claimScript and controlBlock.
const claimVbytesOverhead = 120
const outputVbytes = 43
const txOverheadVbytes = 10.5
const minFeeSat = 1000
const dustLimit = 330

// Result is the outcome of a successful claim.
type Result struct {
	Txid      string
	Hex       string
	LPAddress string
	FeeSat    uint64
}

// Claim spends the HTLC's claim leaf, proving the preimage and paying the
// LP's own Taproot address.
func Claim(chain *chainrpc.Client, outpoint swap.FundingOutpoint,
	tmpl swap.HTLCTemplate, preimage swap.Preimage, lpPrivKey *btcec.PrivateKey,
	lpAddress btcutil.Address, feeRate float64) (*Result, error) {

	if preimage.Hash() != tmpl.PaymentHash {
		return nil, swap.New(swap.KindPreimageMismatch,
			"SHA-256(preimage) does not match payment hash %s",
			tmpl.PaymentHash)
	}

	out, leaves, err := htlc.Build(tmpl)
	if err != nil {
		return nil, err
	}
	controlBlock, err := htlc.ClaimControlBlock(out, leaves)
	if err != nil {
		return nil, err
	}

	feeSat := uint64(math.Ceil(feeRate * (txOverheadVbytes +
		claimVbytesOverhead + outputVbytes)))
	if feeSat < minFeeSat {
		feeSat = minFeeSat
	}
	if outpoint.ValueSat <= feeSat {
		return nil, swap.New(swap.KindDustAfterFee,
			"funding value %d sat does not cover fee %d sat",
			outpoint.ValueSat, feeSat)
	}
	outputValue := outpoint.ValueSat - feeSat
	if outputValue < dustLimit {
		return nil, swap.New(swap.KindDustAfterFee,
			"claim output %d sat is below dust limit %d",
			outputValue, dustLimit)
	}

	lpScript, err := txscript.PayToAddrScript(lpAddress)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"building LP output script")
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	txidHash := chainhash.Hash(outpoint.Txid)
	txIn := wire.NewTxIn(wire.NewOutPoint(&txidHash, outpoint.Vout), nil, nil)
	txIn.Sequence = wire.MaxTxInSequenceNum
	tx.AddTxIn(txIn)
	tx.AddTxOut(wire.NewTxOut(int64(outputValue), lpScript))

	prevOutFetcher := txscript.NewCannedPrevOutputFetcher(
		out.ScriptPubKey, int64(outpoint.ValueSat),
	)
	sigHashes := txscript.NewTxSigHashes(tx, prevOutFetcher)

	claimLeaf := txscript.NewBaseTapLeaf(leaves.ClaimScript)
	sigHash, err := txscript.CalcTapscriptSignaturehash(
		sigHashes, txscript.SigHashDefault, tx, 0, prevOutFetcher,
		claimLeaf,
	)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"computing claim tapscript sighash")
	}

	sig, err := schnorr.Sign(lpPrivKey, sigHash)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"signing claim input")
	}

	// Witness stack order: {sig, preimage, claimScript,
	// controlBlock}.
	tx.TxIn[0].Witness = wire.TxWitness{
		sig.Serialize(),
		preimage[:],
		leaves.ClaimScript,
		controlBlock,
	}

	var rawBuf bytes.Buffer
	if err := tx.Serialize(&rawBuf); err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"serializing claim tx")
	}
	rawHex := hex.EncodeToString(rawBuf.Bytes())

	txid, err := chain.SendRawTransaction(rawHex)
	if err != nil {
		return nil, err
	}

	return &Result{
		Txid:      txid,
		Hex:       rawHex,
		LPAddress: lpAddress.EncodeAddress(),
		FeeSat:    feeSat,
	}, nil
}
