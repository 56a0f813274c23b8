package env

import (
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the env",
		Long: `Prints the currently applied env

The backend API key is masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cfg.Backend.APIKey != "" {
				cfg.Backend.APIKey = "***"
			}

			return command.PrintJSON(cmd, cfg)
		},
	}
}
