// Package netparams maps a network name to its address
// human-readable part and btcd chain parameters.
package netparams

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/thunderswap/swap"
)

// Tag is one of the four supported network identifiers.
type Tag string

const (
	Regtest Tag = "regtest"
	Signet  Tag = "signet"
	Testnet Tag = "testnet"
	Mainnet Tag = "mainnet"
)

// Params bundles the chain parameters and address HRP for a network tag.
type Params struct {
	Tag    Tag
	HRP    string
	Chain  *chaincfg.Params
}

var registry = map[Tag]*Params{
	Regtest: {Tag: Regtest, HRP: "bcrt", Chain: &chaincfg.RegressionNetParams},
	Signet:  {Tag: Signet, HRP: "tb", Chain: &chaincfg.SigNetParams},
	Testnet: {Tag: Testnet, HRP: "tb", Chain: &chaincfg.TestNet3Params},
	Mainnet: {Tag: Mainnet, HRP: "bc", Chain: &chaincfg.MainNetParams},
}

// Lookup returns the Params for a given tag, or swap.KindConfigError if the
// tag is unknown.
func Lookup(tag string) (*Params, error) {
	p, ok := registry[Tag(tag)]
	if !ok {
		return nil, swap.New(swap.KindConfigError,
			"unknown network %q, must be one of regtest|signet|testnet|mainnet",
			tag)
	}
	return p, nil
}
