package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightninglabs/thunderswap/crypto"
	"github.com/lightninglabs/thunderswap/submarine"
	"github.com/lightninglabs/thunderswap/swaplog"
	"github.com/lightninglabs/thunderswap/userflow"
)

type userCommand struct {
	AmountSat  uint64
	AmountMsat uint64

	cmd *cobra.Command
}

func newUserCommand() *cobra.Command {
	cc := &userCommand{}
	cc.cmd = &cobra.Command{
		Use:   "user",
		Short: "Run the USER side of a submarine swap",
		Long: `Run the USER side of a submarine swap: create a HODL
invoice, fund a Taproot HTLC on-chain, publish the swap data for the LP,
and settle the invoice once the LP marks it claimable.`,
		RunE: cc.execute,
	}
	cc.cmd.Flags().Uint64Var(
		&cc.AmountSat, "amount_sat", 0, "amount to deposit into the "+
			"HTLC, in satoshis",
	)
	cc.cmd.Flags().Uint64Var(
		&cc.AmountMsat, "amount_msat", 0, "amount the HODL invoice "+
			"should request, in millisatoshis",
	)
	return cc.cmd
}

func (c *userCommand) execute(_ *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	lpPubkey, err := crypto.ValidateCompressedPubkeyHex(rt.cfg.LPPubkeyHex)
	if err != nil {
		return err
	}

	signerScriptHex, err := rt.signerScriptHex()
	if err != nil {
		return err
	}

	publisher := submarine.NewPublisher(rt.cfg.ClientCommPort)
	if err := publisher.Start(); err != nil {
		return err
	}
	defer publisher.Shutdown()

	m := userflow.New(userflow.Params{
		Cfg:                rt.cfg,
		Chain:              rt.chain,
		RLN:                rt.rlnCli,
		Store:              rt.store,
		Publisher:          publisher,
		PrivKey:            rt.keyset.WIF.PrivKey,
		SignerScriptHex:    signerScriptHex,
		SignerAddress:      rt.keyset.TaprootAddress,
		NetParams:          rt.net.Chain,
		LPPubkeyCompressed: lpPubkey,
		AmountSat:          c.AmountSat,
		AmountMsat:         c.AmountMsat,
		Log:                swaplog.New("USER"),
	})

	final := m.Run()
	fmt.Printf("user flow finished in state %s\n", final)
	if m.PaymentHash != ([32]byte{}) {
		fmt.Printf("payment hash: %s\n", hex.EncodeToString(
			m.PaymentHash[:]))
	}
	if m.Err != nil {
		return m.Err
	}
	return nil
}
