package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boscora/impacta-go/ledger"
	"github.com/boscora/impacta-go/nft"
	"github.com/boscora/impacta-go/oracle"
	"github.com/boscora/impacta-go/registry"
	"github.com/boscora/impacta-go/token"
)

var extendCmd = &cobra.Command{
	Use:   "extend <parcel-id>",
	Short: "Keep a parcel's registry and oracle records alive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		reg, err := a.registryClient(a.host)
		if err != nil {
			return err
		}
		if err := reg.ExtendTTL(cmd.Context(), id); err != nil {
			return err
		}
		orc, err := a.oracleClient(a.host)
		if err != nil {
			return err
		}
		if err := orc.ExtendTTL(cmd.Context(), id); err != nil && !errors.Is(err, oracle.ErrRecordNotFound) {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "parcel %d extended\n", id)
		return nil
	},
}

var restoreFlags struct {
	Parcel  uint32
	Account string
}

var restoreCmd = &cobra.Command{
	Use:   "restore <token|oracle|registry>",
	Short: "Revive an archived contract instance and, optionally, its records",
	Long: `Restores the contract instance. With --parcel, also restores the parcel's
geo and ownership records (registry) or its impact record (oracle). With
--account, also restores the account's token balance (token).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(passwordSet())
		if err != nil {
			return err
		}
		defer a.Close()

		name := args[0]
		addr, err := a.deployment(name)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		var keys []ledger.Key
		switch {
		case restoreFlags.Parcel != 0 && name == RegistryDeployment:
			keys = registry.ParcelKeys(restoreFlags.Parcel)
		case restoreFlags.Parcel != 0 && name == OracleDeployment:
			keys = []ledger.Key{oracle.MetricsKey(restoreFlags.Parcel)}
		case restoreFlags.Account != "" && name == TokenDeployment:
			acct, err := a.address(restoreFlags.Account)
			if err != nil {
				return err
			}
			keys = []ledger.Key{token.BalanceKey(acct)}
		case restoreFlags.Parcel != 0 || restoreFlags.Account != "":
			return fmt.Errorf("flags do not apply to %s", name)
		}
		if err := a.host.Restore(ctx, addr, keys...); err != nil {
			return err
		}

		if name == RegistryDeployment && restoreFlags.Parcel != 0 {
			owner, err := registry.NewClient(a.host.ReadOnly(), addr).OwnerOf(ctx, restoreFlags.Parcel)
			if err != nil {
				return err
			}
			if err := a.host.Restore(ctx, addr, nft.BalanceKey(owner)); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s restored\n", name)
		return nil
	},
}

func init() {
	restoreCmd.Flags().Uint32Var(&restoreFlags.Parcel, "parcel", 0, "parcel id whose records to restore")
	restoreCmd.Flags().StringVar(&restoreFlags.Account, "account", "", "identity or address whose token balance to restore")
}
