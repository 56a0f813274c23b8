package probe

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/util/command"
)

func newLiveness() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long: `Checks that the data directory holding the session record,
the keystore and the pairing topic exists and is writable.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			command.SetupLogger(cfg.Logger)

			if err := probeDataDir(cfg.Paths.DataDir); err != nil {
				log.Error().Err(err).Str("dataDir", cfg.Paths.DataDir).Msg("Liveness probe failed")
				return err
			}

			if verbose {
				log.Info().Str("dataDir", cfg.Paths.DataDir).Msg("Liveness probe succeeded")
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func probeDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}

	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return errors.Wrap(err, "data directory is not writable")
	}

	name := f.Name()
	_ = f.Close()

	return errors.Wrap(os.Remove(filepath.Clean(name)), "failed to remove probe file")
}
