package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boscora/impacta-go/impact"
)

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid parcel id %q: %w", s, err)
	}
	return uint32(id), nil
}

var fundCmd = &cobra.Command{
	Use:   "fund <identity|address> <amount>",
	Short: "Mint payment tokens to an account (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		to, err := a.address(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		signer, err := a.signer()
		if err != nil {
			return err
		}
		tk, err := a.tokenClient(signer)
		if err != nil {
			return err
		}
		if err := tk.Mint(cmd.Context(), to, amount); err != nil {
			return err
		}
		bal, err := tk.Balance(cmd.Context(), to)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s balance %s\n", to, bal)
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <identity|address>",
	Short: "Show payment token and parcel balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(passwordSet())
		if err != nil {
			return err
		}
		defer a.Close()

		addr, err := a.address(args[0])
		if err != nil {
			return err
		}
		tk, err := a.tokenClient(a.host.ReadOnly())
		if err != nil {
			return err
		}
		reg, err := a.registryClient(a.host.ReadOnly())
		if err != nil {
			return err
		}
		funds, err := tk.Balance(cmd.Context(), addr)
		if err != nil {
			return err
		}
		parcels, err := reg.Balance(cmd.Context(), addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tokens  %s\nparcels %d\n", funds, parcels)
		return nil
	},
}

var mintFlags struct {
	Latitude  int32
	Longitude int32
}

var mintCmd = &cobra.Command{
	Use:   "mint <identity|address> <parcel-id>",
	Short: "Buy a parcel for an account at the configured price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		to, err := a.address(args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		signer, err := a.signer()
		if err != nil {
			return err
		}
		reg, err := a.registryClient(signer)
		if err != nil {
			return err
		}
		geo := impact.Geo{Latitude: mintFlags.Latitude, Longitude: mintFlags.Longitude}
		if err := reg.Mint(cmd.Context(), to, id, geo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "parcel %d minted to %s at %d,%d\n", id, to, geo.Latitude, geo.Longitude)
		return nil
	},
}

var geoCmd = &cobra.Command{
	Use:   "geo <parcel-id>",
	Short: "Show a parcel's coordinates",
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
		reg, err := a.registryClient(a.host.ReadOnly())
		if err != nil {
			return err
		}
		geo, err := reg.GeoCoordinates(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d,%d\n", geo.Latitude, geo.Longitude)
		return nil
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner <parcel-id>",
	Short: "Show a parcel's owner and token URI",
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
		reg, err := a.registryClient(a.host.ReadOnly())
		if err != nil {
			return err
		}
		owner, err := reg.OwnerOf(cmd.Context(), id)
		if err != nil {
			return err
		}
		uri, err := reg.TokenURI(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "owner %s\nuri   %s\n", owner, uri)
		return nil
	},
}

func init() {
	mintCmd.Flags().Int32Var(&mintFlags.Latitude, "lat", 0, "scaled latitude")
	mintCmd.Flags().Int32Var(&mintFlags.Longitude, "lon", 0, "scaled longitude")
}
