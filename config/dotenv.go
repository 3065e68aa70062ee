package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/constants"
)

const defaultEnvFile = ".env"

// LoadEnvFile loads variables from the file named by TS_ENV_FILE, or from ./.env if it exists.
// Variables already set in the environment are not overwritten.
// It returns the name of the file loaded or an empty string.
func LoadEnvFile() (string, error) {
	name := os.Getenv(constants.EnvVarEnvFile)
	if name == "" {
		if !fileExists(defaultEnvFile) {
			return "", nil
		}
		name = defaultEnvFile
	}
	if err := godotenv.Load(name); err != nil {
		return "", errors.Wrapf(err, "unable to load env file %v", name)
	}
	return name, nil
}
