package main

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/lightninglabs/thunderswap/chainrpc"
	"github.com/lightninglabs/thunderswap/config"
	"github.com/lightninglabs/thunderswap/keys"
	"github.com/lightninglabs/thunderswap/netparams"
	"github.com/lightninglabs/thunderswap/rln"
	"github.com/lightninglabs/thunderswap/store"
	"github.com/lightninglabs/thunderswap/swap"
)

// runtime bundles the adapters every subcommand needs, built once from the
// loaded Config.
type runtime struct {
	cfg     *config.Config
	net     *netparams.Params
	keyset  *keys.Derived
	chain   *chainrpc.Client
	rlnCli  *rln.Client
	store   *store.Store
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	net, err := netparams.Lookup(cfg.Network)
	if err != nil {
		return nil, err
	}

	derived, err := keys.FromWIF(cfg.WIF, net.Chain)
	if err != nil {
		return nil, err
	}

	chain, err := chainrpc.New(chainrpc.Config{
		URL:  cfg.BitcoinRPCURL,
		User: cfg.BitcoinRPCUser,
		Pass: cfg.BitcoinRPCPass,
	})
	if err != nil {
		return nil, err
	}

	rlnCli := rln.New(cfg.RLNBaseURL, cfg.RLNAPIKey)

	storePath, err := store.DefaultPath()
	if err != nil {
		return nil, err
	}
	hodlStore, err := store.Open(storePath)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		net:    net,
		keyset: derived,
		chain:  chain,
		rlnCli: rlnCli,
		store:  hodlStore,
	}, nil
}

func (rt *runtime) signerScriptHex() (string, error) {
	script, err := txscript.PayToAddrScript(rt.keyset.TaprootAddress)
	if err != nil {
		return "", fmt.Errorf("building signer scriptPubKey: %w", err)
	}
	return fmt.Sprintf("%x", script), nil
}

// parseAddress decodes a user-supplied address string against the active
// network, the way chantools' various sweep commands validate destination
// flags before building a transaction.
func parseAddress(s string, net *chaincfg.Params) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(s, net)
	if err != nil {
		return nil, swap.New(swap.KindInvalidInput,
			"invalid address %q: %v", s, err)
	}
	return addr, nil
}
