package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

// DotEnvTryLoad forcefully overrides ENV variables through **a maybe available** .env file.
//
// This function is always no-op if a .env file is not available.
// Any other error while loading the file is fatal.
func DotEnvTryLoad(pathToEnvFile string, setEnvFn func(key string, value string) error) {
	err := DotEnvLoad(pathToEnvFile, setEnvFn)
	if err == nil {
		log.Warn().Str("envFile", pathToEnvFile).Msg(".env overrides ENV variables!")
		return
	}

	if !errors.Is(err, os.ErrNotExist) {
		log.Fatal().Err(err).Str("envFile", pathToEnvFile).Msg(".env parse error!")
	}
}

// DotEnvLoad forcefully overrides ENV variables through the supplied .env file.
func DotEnvLoad(pathToEnvFile string, setEnvFn func(key string, value string) error) error {
	file, err := os.Open(pathToEnvFile)
	if err != nil {
		return err
	}
	defer file.Close()

	envs, err := gotenv.StrictParse(file)
	if err != nil {
		return errors.Wrap(err, "failed to parse .env file")
	}

	for key, value := range envs {
		if err := setEnvFn(key, value); err != nil {
			return errors.Wrapf(err, "failed to set %s", key)
		}
	}

	return nil
}
