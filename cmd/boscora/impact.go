package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Read and publish impact measurements",
}

var impactSetCmd = &cobra.Command{
	Use:   "set <asset-id> <biomass> <co2-captured> <health-code>",
	Short: "Replace an asset's impact record (oracle admin)",
	Long:  "Health codes: 0 Germinating, 1 Sprouted, 2 ReadyForTransplant, 3 Planted.",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		biomass, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		co2, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		code, err := strconv.ParseUint(args[3], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid health code %q: %w", args[3], err)
		}
		signer, err := a.signer()
		if err != nil {
			return err
		}
		orc, err := a.oracleClient(signer)
		if err != nil {
			return err
		}
		return orc.UpdateImpactMetrics(cmd.Context(), id, biomass, co2, uint32(code))
	},
}

var impactPriceCmd = &cobra.Command{
	Use:   "price <asset-id> <biomass>",
	Short: "Publish an asset's biomass reading (oracle admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		v, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		signer, err := a.signer()
		if err != nil {
			return err
		}
		orc, err := a.oracleClient(signer)
		if err != nil {
			return err
		}
		return orc.AddPrice(cmd.Context(), id, v)
	},
}

var impactExtendCmd = &cobra.Command{
	Use:   "extend <asset-id>",
	Short: "Extend the lifetime of an asset's impact record",
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
		orc, err := a.oracleClient(a.host)
		if err != nil {
			return err
		}
		return orc.ExtendTTL(cmd.Context(), id)
	},
}

var impactGetCmd = &cobra.Command{
	Use:   "get <parcel-id>",
	Short: "Show a parcel's live impact through the registry",
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
		m, err := reg.LiveImpact(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "biomass      %s g\nco2_captured %s mg\nhealth       %s\n", m.Biomass, m.CO2Captured, m.Health)
		return nil
	},
}

func init() {
	impactCmd.AddCommand(impactSetCmd, impactPriceCmd, impactExtendCmd, impactGetCmd)
}
