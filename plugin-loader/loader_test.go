package plugin_loader

import (
	"os"
	"strings"
	"testing"

	"github.com/relloyd/tablesync/constants"
)

func TestSearchPathsPrefersEnvDir(t *testing.T) {
	_ = os.Setenv(constants.EnvVarPluginDir, "/opt/ts")
	defer os.Unsetenv(constants.EnvVarPluginDir)
	p := searchPaths("x.so")
	if len(p) != len(Locations)+1 {
		t.Fatalf("expected %v paths; got %v", len(Locations)+1, len(p))
	}
	if p[0] != "/opt/ts/x.so" {
		t.Fatalf("expected env dir first; got %v", p[0])
	}
}

func TestLoadPluginExportsMissing(t *testing.T) {
	_, err := LoadPluginExports("does-not-exist.so")
	if err == nil {
		t.Fatal("expected error loading a missing plugin")
	}
	if !strings.Contains(err.Error(), constants.EnvVarPluginDir) {
		t.Fatalf("expected error to mention %v; got %v", constants.EnvVarPluginDir, err)
	}
}
