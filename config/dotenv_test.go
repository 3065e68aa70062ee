package config

import (
	"os"
	"path"
	"testing"

	"github.com/relloyd/tablesync/constants"
)

func TestLoadEnvFile(t *testing.T) {
	f := path.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(f, []byte("TS_TEST_DOTENV_VALUE=loaded\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(constants.EnvVarEnvFile, f)
	t.Setenv("TS_TEST_DOTENV_VALUE", "")
	os.Unsetenv("TS_TEST_DOTENV_VALUE")
	name, err := LoadEnvFile()
	if err != nil {
		t.Fatal(err)
	}
	if name != f {
		t.Fatalf("expected file %v to be loaded; got %q", f, name)
	}
	if v := os.Getenv("TS_TEST_DOTENV_VALUE"); v != "loaded" {
		t.Fatalf("expected env var from file; got %q", v)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	t.Setenv(constants.EnvVarEnvFile, path.Join(t.TempDir(), "missing.env"))
	if _, err := LoadEnvFile(); err == nil {
		t.Fatal("expected an error for a missing env file")
	}
}
