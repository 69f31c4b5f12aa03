// Command boscora runs the Asset Registry and Impact Oracle contracts
// against a local ledger.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boscora/impacta-go/config"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "BOSCORA_PASSWORD"

type globalFlags struct {
	DataDir  string
	Password string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "boscora",
	Short:         "Boscora asset registry and impact oracle",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.DataDir, "datadir", config.DefaultDataDir(), "data directory")
	rootCmd.PersistentFlags().StringVar(&flags.Password, "password", "", "wallet password (default $"+PasswordEnv+")")

	rootCmd.AddCommand(initCmd, identityCmd, deployCmd, fundCmd, balanceCmd, mintCmd, geoCmd, ownerCmd, impactCmd, ledgerCmd, extendCmd, restoreCmd)
}

func password() (string, error) {
	if flags.Password != "" {
		return flags.Password, nil
	}
	if p := os.Getenv(PasswordEnv); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("wallet password required: pass --password or set %s", PasswordEnv)
}

// passwordSet reports whether the wallet can be unlocked for name resolution.
func passwordSet() bool {
	_, err := password()
	return err == nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
