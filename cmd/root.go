package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/cmd/env"
	"github/qdoge/go-wallet/cmd/ledger"
	"github/qdoge/go-wallet/cmd/probe"
	"github/qdoge/go-wallet/cmd/server"
	"github/qdoge/go-wallet/cmd/session"
	"github/qdoge/go-wallet/cmd/transfer"
	"github/qdoge/go-wallet/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "qwallet",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

A Qubic wallet with local, extension bridge and remote pairing signing.
Requires configuration through ENV (QWALLET_*) or QWALLET_CONFIG_FILE.`, config.ModuleName),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		env.New(),
		ledger.New(),
		probe.New(),
		server.New(),
		session.New(),
		transfer.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
