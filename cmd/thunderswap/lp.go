package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightninglabs/thunderswap/lpflow"
	"github.com/lightninglabs/thunderswap/submarine"
	"github.com/lightninglabs/thunderswap/swaplog"
)

type lpCommand struct {
	cmd *cobra.Command
}

func newLPCommand() *cobra.Command {
	cc := &lpCommand{}
	cc.cmd = &cobra.Command{
		Use:   "lp",
		Short: "Run the LP side of a submarine swap",
		Long: `Run the LP side of a submarine swap: wait for the
USER's swap data, verify the funded HTLC against the decoded invoice, pay
the invoice, and claim the HTLC once the payment settles.`,
		RunE: cc.execute,
	}
	return cc.cmd
}

func (c *lpCommand) execute(_ *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	fetcher := submarine.NewFetcher(rt.cfg.UserCommURL)

	m := lpflow.New(lpflow.Params{
		Cfg:       rt.cfg,
		Chain:     rt.chain,
		RLN:       rt.rlnCli,
		Fetcher:   fetcher,
		PrivKey:   rt.keyset.WIF.PrivKey,
		LPAddress: rt.keyset.TaprootAddress,
		Log:       swaplog.New("LPRL"),
	})

	final := m.Run()
	fmt.Printf("lp flow finished in state %s\n", final)
	if m.ClaimTxid != "" {
		fmt.Printf("claim txid: %s\n", m.ClaimTxid)
	}
	if m.Err != nil {
		return m.Err
	}
	return nil
}
