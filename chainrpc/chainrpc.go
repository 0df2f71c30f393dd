// Package chainrpc is the bitcoin-node adapter: the narrow set of
// JSON-RPC operations the swap engine consumes, grounded on the
// rpcclient.Client usage in itest/bitcoind_harness.go, generalized from a
// regtest test-harness helper into the engine's runtime adapter.
package chainrpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightninglabs/thunderswap/coinselect"
	"github.com/lightninglabs/thunderswap/swap"
)

// Client wraps a btcd rpcclient.Client with the operations the engine uses.
type Client struct {
	rpc *rpcclient.Client
}

// Config is the minimal connection info the engine needs (env vars
// BITCOIN_RPC_URL/BITCOIN_RPC_USER/BITCOIN_RPC_PASS).
type Config struct {
	URL  string
	User string
	Pass string
}

// New dials a bitcoind JSON-RPC endpoint in HTTP POST mode.
func New(cfg Config) (*Client, error) {
	rpc, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         cfg.URL,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
	if err != nil {
		return nil, swap.Wrap(swap.KindRpcError, err,
			"connecting to bitcoin node")
	}
	return &Client{rpc: rpc}, nil
}

// Shutdown closes the underlying RPC client.
func (c *Client) Shutdown() {
	c.rpc.Shutdown()
}

// GetBlockCount returns the current chain tip height.
func (c *Client) GetBlockCount() (int64, error) {
	height, err := c.rpc.GetBlockCount()
	if err != nil {
		return 0, swap.Wrap(swap.KindRpcError, err, "getblockcount")
	}
	return height, nil
}

// VoutInfo is one output of a fetched raw transaction.
type VoutInfo struct {
	ValueBTC     float64
	ScriptPubKeyHex string
}

// RawTxResult is the subset of getrawtransaction verbose output the engine
// consumes.
type RawTxResult struct {
	Confirmations int64
	Vout          []VoutInfo
}

// GetRawTransaction fetches a transaction with confirmation count and
// output scripts.
func (c *Client) GetRawTransaction(txidHex string) (*RawTxResult, error) {
	hash, err := chainhash.NewHashFromStr(txidHex)
	if err != nil {
		return nil, swap.New(swap.KindInvalidInput, "invalid txid: %v", err)
	}

	tx, err := c.rpc.GetRawTransactionVerbose(hash)
	if err != nil {
		return nil, swap.Wrap(swap.KindRpcError, err,
			"getrawtransaction %s", txidHex)
	}

	vouts := make([]VoutInfo, len(tx.Vout))
	for i, v := range tx.Vout {
		vouts[i] = VoutInfo{
			ValueBTC:        v.Value,
			ScriptPubKeyHex: v.ScriptPubKey.Hex,
		}
	}

	return &RawTxResult{
		Confirmations: int64(tx.Confirmations),
		Vout:          vouts,
	}, nil
}

// TxOutResult is the per-output info GetTransactionOutput returns.
type TxOutResult struct {
	ValueSat        uint64
	ScriptPubKeyHex string
}

// GetTransactionOutput fetches one specific output, optionally validating
// its scriptPubKey against an expected value and requiring it be unspent.
func (c *Client) GetTransactionOutput(txidHex string, vout uint32,
	expectedScriptPubKeyHex string, requireUnspent bool) (*TxOutResult,
	error) {

	hash, err := chainhash.NewHashFromStr(txidHex)
	if err != nil {
		return nil, swap.New(swap.KindInvalidInput, "invalid txid: %v", err)
	}

	out, err := c.rpc.GetTxOut(hash, vout, requireUnspent)
	if err != nil {
		return nil, swap.Wrap(swap.KindRpcError, err, "gettxout %s:%d",
			txidHex, vout)
	}
	if out == nil {
		return nil, swap.New(swap.KindRpcError,
			"output %s:%d not found or already spent", txidHex, vout)
	}

	if expectedScriptPubKeyHex != "" &&
		out.ScriptPubKey.Hex != expectedScriptPubKeyHex {

		return nil, swap.New(swap.KindScriptPubKeyMismatch,
			"output %s:%d scriptPubKey %s does not match expected %s",
			txidHex, vout, out.ScriptPubKey.Hex, expectedScriptPubKeyHex)
	}

	return &TxOutResult{
		ValueSat:        btcToSat(out.Value),
		ScriptPubKeyHex: out.ScriptPubKey.Hex,
	}, nil
}

// SendRawTransaction broadcasts a raw transaction hex string and returns
// its txid.
func (c *Client) SendRawTransaction(rawHex string) (string, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return "", swap.New(swap.KindInvalidInput, "invalid raw tx hex: %v", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return "", swap.New(swap.KindInvalidInput,
			"could not deserialize raw tx: %v", err)
	}

	txHash, err := c.rpc.SendRawTransaction(tx, false)
	if err != nil {
		return "", swap.Wrap(swap.KindRpcError, err, "sendrawtransaction")
	}
	return txHash.String(), nil
}

// scanResult mirrors bitcoind's scantxoutset "unspents" shape.
type scanResult struct {
	Success  bool `json:"success"`
	Unspents []struct {
		Txid         string  `json:"txid"`
		Vout         uint32  `json:"vout"`
		ScriptPubKey string  `json:"scriptPubKey"`
		Amount       float64 `json:"amount"`
	} `json:"unspents"`
}

// ScanUtxosByScript scans the UTXO set for outputs paying the given
// scriptPubKey (hex), using bitcoind's scantxoutset with a raw() descriptor.
func (c *Client) ScanUtxosByScript(scriptHex string) ([]coinselect.Candidate,
	error) {

	descriptor := fmt.Sprintf(`raw(%s)`, scriptHex)
	params := []json.RawMessage{
		[]byte(`"start"`),
		mustMarshal([]string{descriptor}),
	}

	raw, err := c.rpc.RawRequest("scantxoutset", params)
	if err != nil {
		return nil, swap.Wrap(swap.KindRpcError, err, "scantxoutset")
	}

	var result scanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, swap.Wrap(swap.KindRpcError, err,
			"decoding scantxoutset response")
	}
	if !result.Success {
		return nil, swap.New(swap.KindRpcError, "scantxoutset reported failure")
	}

	out := make([]coinselect.Candidate, 0, len(result.Unspents))
	for _, u := range result.Unspents {
		hash, err := chainhash.NewHashFromStr(u.Txid)
		if err != nil {
			continue
		}
		var txid [32]byte
		copy(txid[:], hash[:])

		out = append(out, coinselect.Candidate{
			Txid:      txid,
			Vout:      u.Vout,
			ValueSat:  btcToSat(u.Amount),
			ScriptHex: u.ScriptPubKey,
		})
	}
	return out, nil
}

func btcToSat(btc float64) uint64 {
	return uint64(btc*1e8 + 0.5)
}

func mustMarshal(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
