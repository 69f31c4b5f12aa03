package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/config"
	"github.com/boscora/impacta-go/wallet"
)

// Identities created by init.
var defaultIdentities = []string{"admin", "investor"}

var initFlags struct {
	Network  string
	Mnemonic string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory, wallet and default identities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pw, err := password()
		if err != nil {
			return err
		}
		network, err := auth.NetworkByName(initFlags.Network)
		if err != nil {
			return err
		}

		mnemonic := initFlags.Mnemonic
		if mnemonic == "" {
			if mnemonic, err = wallet.GenerateMnemonic(wallet.Mnemonic24Words); err != nil {
				return err
			}
		}
		seed, err := wallet.SeedFromMnemonic(mnemonic, "")
		if err != nil {
			return err
		}
		ks, err := wallet.Create(flags.DataDir, seed, pw, network)
		if err != nil {
			return err
		}

		cfg := config.DefaultConfig()
		cfg.DataDir = flags.DataDir
		cfg.Network = network.Name
		if err := config.SaveConfig(config.ConfigPath(flags.DataDir), cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if initFlags.Mnemonic == "" {
			fmt.Fprintf(out, "mnemonic: %s\n", mnemonic)
		}
		for _, name := range defaultIdentities {
			id, err := ks.Add(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-10s %s\n", name, id.Address)
		}
		return nil
	},
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Manage wallet identities",
}

var identityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Derive a new named identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		id, err := a.keystore.Add(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", args[0], id.Path, id.Address)
		return nil
	},
}

var identityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallet identities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()
		for _, named := range a.keystore.Identities() {
			id, err := a.keystore.Wallet().Identity(named.Index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-20s %s\n", named.Name, id.Path, id.Address)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initFlags.Network, "network", auth.TestNet.Name, "network: mainnet or testnet")
	initCmd.Flags().StringVar(&initFlags.Mnemonic, "mnemonic", "", "restore from an existing BIP39 mnemonic")

	identityCmd.AddCommand(identityAddCmd, identityListCmd)
}
