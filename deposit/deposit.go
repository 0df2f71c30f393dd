// Package deposit builds, signs, and broadcasts the USER's funding
// transaction into the HTLC address: a key-path Taproot spend from
// the signer's own wallet UTXOs, grounded on the PSBT assembly pattern of
// lnd/signer.go (WitnessUtxo + FinalScriptWitness) and the key-path Taproot
// signing call used in the pack's klingdex wallet/tx.go
// (txscript.RawTxInTaprootSignature with a nil tapLeaf for BIP-86 spends).
package deposit

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/lightninglabs/thunderswap/chainrpc"
	"github.com/lightninglabs/thunderswap/coinselect"
	"github.com/lightninglabs/thunderswap/swap"
)

// Result is the outcome of a successful deposit.
type Result struct {
	Txid          string
	FeeSat        uint64
	ChangeSat     uint64
	ChangeAddress string
	InputCount    int
	PsbtBase64    string
}

// Build constructs, signs, and broadcasts the funding transaction: one
// output of amountSat to htlcAddress, selected from the signer's own P2TR
// UTXOs, with change back to the signer's own Taproot address.
func Build(chain *chainrpc.Client, privKey *btcec.PrivateKey,
	signerScriptHex string, htlcAddress btcutil.Address,
	changeAddress btcutil.Address, amountSat uint64, feeRate float64) (
	*Result, error) {

	candidates, err := chain.ScanUtxosByScript(signerScriptHex)
	if err != nil {
		return nil, err
	}

	selection, err := coinselect.Select(
		candidates, amountSat, feeRate, coinselect.P2TR, 1,
	)
	if err != nil {
		return nil, err
	}

	htlcScript, err := txscript.PayToAddrScript(htlcAddress)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"building HTLC output script")
	}
	changeScript, err := txscript.PayToAddrScript(changeAddress)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"building change output script")
	}

	tx := wire.NewMsgTx(wire.TxVersion)

	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(selection.Selected))
	for _, c := range selection.Selected {
		hash := chainhash.Hash(c.Txid)
		outpoint := wire.NewOutPoint(&hash, c.Vout)
		tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))

		script, err := hex.DecodeString(c.ScriptHex)
		if err != nil {
			return nil, swap.Wrap(swap.KindInternalError, err,
				"decoding input scriptPubKey")
		}
		prevOuts[*outpoint] = wire.NewTxOut(int64(c.ValueSat), script)
	}

	tx.AddTxOut(wire.NewTxOut(int64(amountSat), htlcScript))
	changeOutIdx := -1
	if selection.ChangeSat > 0 {
		tx.AddTxOut(wire.NewTxOut(int64(selection.ChangeSat), changeScript))
		changeOutIdx = len(tx.TxOut) - 1
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"creating PSBT")
	}
	for i, in := range tx.TxIn {
		packet.Inputs[i].WitnessUtxo = prevOuts[in.PreviousOutPoint]
	}

	prevOutFetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, prevOutFetcher)

	for i, in := range tx.TxIn {
		utxo := prevOuts[in.PreviousOutPoint]

		sig, err := txscript.RawTxInTaprootSignature(
			tx, sigHashes, i, utxo.Value, utxo.PkScript, nil,
			txscript.SigHashDefault, privKey,
		)
		if err != nil {
			return nil, swap.Wrap(swap.KindInternalError, err,
				"signing taproot input %d", i)
		}

		var witnessBuf bytes.Buffer
		if err := psbt.WriteTxWitness(
			&witnessBuf, wire.TxWitness{sig},
		); err != nil {
			return nil, swap.Wrap(swap.KindInternalError, err,
				"serializing witness for input %d", i)
		}
		packet.Inputs[i].FinalScriptWitness = witnessBuf.Bytes()
		tx.TxIn[i].Witness = wire.TxWitness{sig}
	}

	var rawBuf bytes.Buffer
	if err := tx.Serialize(&rawBuf); err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"serializing funding tx")
	}

	txid, err := chain.SendRawTransaction(hex.EncodeToString(rawBuf.Bytes()))
	if err != nil {
		return nil, err
	}

	psbtB64, err := packet.B64Encode()
	if err != nil {
		return nil, swap.Wrap(swap.KindInternalError, err,
			"encoding PSBT")
	}

	changeAddrStr := ""
	if changeOutIdx >= 0 {
		changeAddrStr = changeAddress.EncodeAddress()
	}

	return &Result{
		Txid:          txid,
		FeeSat:        selection.FeeSat,
		ChangeSat:     selection.ChangeSat,
		ChangeAddress: changeAddrStr,
		InputCount:    len(selection.Selected),
		PsbtBase64:    psbtB64,
	}, nil
}
