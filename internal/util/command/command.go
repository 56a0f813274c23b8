package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/qdoge/go-wallet/internal/api"
	"github/qdoge/go-wallet/internal/config"
	"github/qdoge/go-wallet/internal/wallet"
	"github/qdoge/go-wallet/internal/wallet/seed"
)

const defaultShutdownTimeout = 10 * time.Second

// NewSubcommandGroup returns a command that only groups subCommands and
// prints its help when run on its own.
func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Subcommands for " + name,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// SetupLogger configures the global zerolog logger from cfg.
func SetupLogger(cfg config.LoggerServer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = "15:04:05"
		}))
	}
}

// WithServer initializes a server from cfg, restores the persisted session
// and runs f. The server is shut down after f returns.
func WithServer(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	SetupLogger(cfg.Logger)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize server")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
		defer cancel()

		if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
			log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		}
	}()

	if _, err := s.Sessions.Restore(ctx); err != nil {
		return errors.Wrap(err, "failed to restore session")
	}

	return f(ctx, s)
}

// PrintJSON writes v as indented JSON to the command's output.
func PrintJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

// EnsureUnlocked supplies the secret of a locked local-secret session, from
// the keystore when one exists and otherwise by prompting for the seed.
func EnsureUnlocked(ctx context.Context, s *api.Server) error {
	active := s.Sessions.Active()
	if active == nil || !active.Locked() {
		return nil
	}

	exists, err := s.Keystore.Exists(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check keystore existence")
	}

	if exists {
		log.Info().Str("identity", active.Identity.String()).Msg("Session is locked. Please enter keystore passphrase to unlock...")

		passphrase, err := wallet.PromptPassphrase("Enter keystore passphrase: ")
		if err != nil {
			return err
		}

		return wallet.UnlockFromKeystore(ctx, s.Sessions, s.Keystore, passphrase)
	}

	letters, err := wallet.PromptPassphrase("Enter seed for " + active.Identity.String() + ": ")
	if err != nil {
		return err
	}

	secret, err := seed.Parse(letters)
	if err != nil {
		return err
	}

	return s.Sessions.Unlock(ctx, secret)
}
