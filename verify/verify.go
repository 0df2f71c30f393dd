// Package verify implements the HTLC verifier: given an on-chain
// funding outpoint and the HTLC template it is supposed to satisfy,
// reconstruct the expected scriptPubKey and check it byte-for-byte against
// the chain, along with confirmations and amount. Grounded on
// recoverloopin.go's habit of rebuilding an expected script and diffing it
// against what's actually on-chain before trusting a spend.
package verify

import (
	"bytes"
	"encoding/hex"
	"math"

	"github.com/lightninglabs/thunderswap/chainrpc"
	"github.com/lightninglabs/thunderswap/htlc"
	"github.com/lightninglabs/thunderswap/swap"
)

// Result is the outcome of a successful verification.
type Result struct {
	Outpoint        swap.FundingOutpoint
	AmountSat       uint64
	Confirmations   int64
	ScriptPubKeyHex string
}

// Verify checks that the given outpoint is a confirmed, well-formed HTLC
// output matching tmpl and covering at least invoiceAmountMsat.
func Verify(chain *chainrpc.Client, txidHex string, vout uint32,
	tmpl swap.HTLCTemplate, invoiceAmountMsat uint64, minConfs int64) (
	*Result, error) {

	// Step 1: pubkey well-formedness is enforced by the caller building
	// tmpl (crypto.ValidateCompressedPubkeyHex); htlc.Build re-validates
	// by deriving x-only keys from the compressed ones.
	out, leaves, err := htlc.Build(tmpl)
	if err != nil {
		return nil, swap.Wrap(swap.KindTemplateMismatch, err,
			"rebuilding HTLC template")
	}

	// Step 2: fetch the raw transaction, require confirmations.
	rawTx, err := chain.GetRawTransaction(txidHex)
	if err != nil {
		return nil, err
	}
	if rawTx.Confirmations < minConfs {
		return nil, swap.New(swap.KindRpcError,
			"funding tx %s has %d confirmations, need %d",
			txidHex, rawTx.Confirmations, minConfs)
	}

	// Step 3: the claim script must mention the payment hash, the
	// refund script must mention the user's x-only pubkey. This is a
	// defense against htlc.Build silently producing a degenerate
	// reconstruction for a malformed template.
	if !bytes.Contains(leaves.ClaimScript, tmpl.PaymentHash[:]) {
		return nil, swap.New(swap.KindTemplateMismatch,
			"claim script does not contain expected payment hash")
	}
	userXOnly, err := userXOnlyFromTemplate(tmpl)
	if err != nil {
		return nil, err
	}
	if !bytes.Contains(leaves.RefundScript, userXOnly[:]) {
		return nil, swap.New(swap.KindTemplateMismatch,
			"refund script does not contain expected user pubkey")
	}

	// Step 4: fetch the specific output and compare scriptPubKeys.
	if int(vout) >= len(rawTx.Vout) {
		return nil, swap.New(swap.KindRpcError,
			"funding tx %s has no output %d", txidHex, vout)
	}
	onChainScriptHex := rawTx.Vout[vout].ScriptPubKeyHex
	onChainScript, err := hex.DecodeString(onChainScriptHex)
	if err != nil {
		return nil, swap.Wrap(swap.KindRpcError, err,
			"decoding on-chain scriptPubKey")
	}
	if len(onChainScript) != 34 || onChainScript[0] != 0x51 {
		return nil, swap.New(swap.KindScriptPubKeyMismatch,
			"on-chain scriptPubKey is not a 34-byte v1 witness program")
	}
	if !bytes.Equal(onChainScript, out.ScriptPubKey) {
		return nil, swap.New(swap.KindScriptPubKeyMismatch,
			"on-chain scriptPubKey %s does not match reconstructed %s",
			onChainScriptHex, hex.EncodeToString(out.ScriptPubKey))
	}

	// Step 5: amount conversion and comparison.
	amountSat := btcToSat(rawTx.Vout[vout].ValueBTC)
	invoiceSat := msatToSatCeil(invoiceAmountMsat)
	if amountSat < invoiceSat {
		return nil, swap.New(swap.KindAmountTooLow,
			"funding output has %d sat, invoice requires %d sat",
			amountSat, invoiceSat)
	}

	var txid [32]byte
	txidBytes, err := hex.DecodeString(txidHex)
	if err == nil && len(txidBytes) == 32 {
		// getrawtransaction txids are displayed big-endian (RPC byte
		// order); reverse them into the internal order FundingOutpoint
		// stores, which FundingOutpoint.String reverses back for display.
		for i := range txidBytes {
			txid[31-i] = txidBytes[i]
		}
	}

	return &Result{
		Outpoint: swap.FundingOutpoint{
			Txid:     txid,
			Vout:     vout,
			ValueSat: amountSat,
		},
		AmountSat:       amountSat,
		Confirmations:   rawTx.Confirmations,
		ScriptPubKeyHex: onChainScriptHex,
	}, nil
}

func userXOnlyFromTemplate(tmpl swap.HTLCTemplate) ([32]byte, error) {
	var out [32]byte
	copy(out[:], tmpl.UserPubkeyCompressed[1:])
	return out, nil
}

// btcToSat applies the round(btc * 1e8) conversion.
func btcToSat(btc float64) uint64 {
	return uint64(math.Round(btc * 1e8))
}

// msatToSatCeil applies the ceil(msat/1000) conversion, used only for the
// required-minimum comparison — never for reverse (sat-to-msat) math.
func msatToSatCeil(msat uint64) uint64 {
	return (msat + 999) / 1000
}
