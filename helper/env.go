package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/tablesync/constants"
)

// ReadValueFromEnv copies the value of environment variable name into val.
// An unset or empty variable is an error and leaves val untouched.
func ReadValueFromEnv(name string, val *string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fmt.Errorf("value for environment variable %v not found", name)
	}
	*val = v
	return nil
}

// ReadValueFromEnvWithDefault returns the value of name or defaultValue when it is unset.
func ReadValueFromEnvWithDefault(name string, defaultValue string) string {
	var v string
	if err := ReadValueFromEnv(name, &v); err != nil {
		return defaultValue
	}
	return v
}

// ReadBoolFromEnv reports whether name is set to anything other than a false value.
// Unset, "false", "0" and "no" are false.
func ReadBoolFromEnv(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "", "false", "0", "no":
		return false
	}
	return true
}

// GetDsnEnvVarName returns the variable holding the DSN of a connection, e.g. TS_SOURCE_DSN.
func GetDsnEnvVarName(connectionName string) string {
	return connectionEnvVarName(connectionName, "DSN")
}

// GetRegionEnvVarName returns the variable holding the S3 region of a bucket connection.
func GetRegionEnvVarName(connectionName string) string {
	return connectionEnvVarName(connectionName, "S3_REGION")
}

func connectionEnvVarName(connectionName string, suffix string) string {
	n := strings.ToUpper(strings.TrimSpace(connectionName))
	n = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(n)
	return strings.Join([]string{constants.EnvVarPrefix, n, suffix}, "_")
}
