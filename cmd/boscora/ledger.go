package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and advance the local ledger",
}

var ledgerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the ledger sequence and deployed contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		seq, err := a.host.Sequence()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "network  %s\nsequence %d\n", a.network.Name, seq)
		for _, name := range a.deploymentNames() {
			fmt.Fprintf(out, "%-8s %s\n", name, a.deployments[name])
		}
		return nil
	},
}

var ledgerAdvanceCmd = &cobra.Command{
	Use:   "advance <ledgers>",
	Short: "Close ledgers, letting entries age toward expiry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid ledger count %q: %w", args[0], err)
		}
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		seq, err := a.host.AdvanceLedger(uint32(n))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sequence %d\n", seq)
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerStatusCmd, ledgerAdvanceCmd)
}
