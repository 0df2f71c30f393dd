// Command thunderswap runs one side (USER or LP) of an atomic submarine
// swap. Structured the way cmd/chantools/root.go wires its cobra root
// command: persistent flags for cross-cutting options, one subcommand per
// operation, version taken from the version constant below.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightninglabs/thunderswap/swaplog"
)

const version = "0.1.0"

var (
	envFile    string
	logFile    string
	debugLevel string

	log = swaplog.New("SWAP")
)

var rootCmd = &cobra.Command{
	Use:   "thunderswap",
	Short: "thunderswap runs one side of an on-chain/Lightning submarine swap",
	Long: `thunderswap executes the USER or LP role of an atomic submarine
swap: a Taproot HTLC bridging an on-chain Bitcoin deposit and an
off-chain HODL-invoice payment against an RGB-Lightning node.`,
	Version:           version,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := swaplog.Init(logFile, debugLevel); err != nil {
			return fmt.Errorf("could not initialize logging: %w", err)
		}
		log.Infof("thunderswap version %s", version)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(
		&envFile, "envfile", "", "optional .env file to load "+
			"configuration from before reading the environment",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFile, "logfile", "./results/thunderswap.log",
		"file to write rotating logs to",
	)
	rootCmd.PersistentFlags().StringVar(
		&debugLevel, "debuglevel", "info",
		"debug level to log at; one of trace|debug|info|warn|error",
	)

	rootCmd.AddCommand(
		newUserCommand(),
		newLPCommand(),
		newRefundCommand(),
		newVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the thunderswap version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("thunderswap version %s\n", version)
			return nil
		},
	}
}
