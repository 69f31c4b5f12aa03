package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boscora/impacta-go/registry"
)

var deployFlags struct {
	Admin       string
	MaxParcels  uint32
	Price       string
	Decimals    uint32
	TokenName   string
	TokenSymbol string
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the payment token, the impact oracle and the asset registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		admin, err := a.address(deployFlags.Admin)
		if err != nil {
			return err
		}
		price, err := parseAmount(deployFlags.Price)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		deploy := func(name string, args ...any) error {
			if _, ok := a.deployments[name]; ok {
				return fmt.Errorf("%s already deployed at %s", name, a.deployments[name])
			}
			addr, err := a.host.Deploy(ctx, admin, name, codeFor[name], args...)
			if err != nil {
				return fmt.Errorf("deploy %s: %w", name, err)
			}
			a.deployments[name] = addr
			a.log.Info("deployed", zap.String("name", name), zap.String("contract", addr.String()))
			return a.saveDeployments()
		}

		if err := deploy(TokenDeployment, admin, deployFlags.Decimals, deployFlags.TokenName, deployFlags.TokenSymbol); err != nil {
			return err
		}
		if err := deploy(OracleDeployment, admin); err != nil {
			return err
		}
		cfg := registry.Config{
			Admin:        admin,
			Oracle:       a.deployments[OracleDeployment],
			MaxParcels:   deployFlags.MaxParcels,
			PaymentToken: a.deployments[TokenDeployment],
			Price:        price,
		}
		if err := deploy(RegistryDeployment, cfg.Args()...); err != nil {
			return err
		}

		for _, name := range a.deploymentNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, a.deployments[name])
		}
		return nil
	},
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func init() {
	deployCmd.Flags().StringVar(&deployFlags.Admin, "admin", "admin", "admin identity or address")
	deployCmd.Flags().Uint32Var(&deployFlags.MaxParcels, "max-parcels", 500, "highest mintable parcel id")
	deployCmd.Flags().StringVar(&deployFlags.Price, "price", "500000000000", "parcel price in payment token base units")
	deployCmd.Flags().Uint32Var(&deployFlags.Decimals, "decimals", 7, "payment token decimals")
	deployCmd.Flags().StringVar(&deployFlags.TokenName, "token-name", "USD Coin", "payment token name")
	deployCmd.Flags().StringVar(&deployFlags.TokenSymbol, "token-symbol", "USDC", "payment token symbol")
}
