package plugin_loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"plugin"
	"strings"

	"github.com/relloyd/tablesync/constants"
)

type Loc []string

var Locations = Loc{
	"/usr/local/lib",
}

func init() {
	// Prepend the directory of the tablesync executable to the list of paths to search.
	ex, err := os.Executable()
	if err != nil { // if there was an error finding the executable...
		return
	}
	exReal, err := filepath.EvalSymlinks(ex) // convert executable path to absolute...
	if err != nil {
		return
	}
	Locations = append(Loc{filepath.Dir(exReal)}, Locations...)
}

func (l Loc) String() string {
	tmp := make([]string, 0, len(l))
	for _, v := range l {
		tmp = append(tmp, fmt.Sprintf("'%v'", v))
	}
	return strings.Join(tmp, ", ")
}

// searchPaths returns the full paths to try for pluginName.
// The directory in TS_PLUGIN_DIR is tried first when set.
func searchPaths(pluginName string) []string {
	var retval []string
	if l := os.Getenv(constants.EnvVarPluginDir); l != "" {
		retval = append(retval, path.Join(l, pluginName))
	}
	for _, l := range Locations {
		retval = append(retval, path.Join(l, pluginName))
	}
	return retval
}

func LoadPluginExports(pluginName string) (interface{}, error) {
	var symbolName = "Exports"
	var errs []string
	for _, fullPath := range searchPaths(pluginName) { // for each candidate location...
		plug, err := plugin.Open(fullPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%v: %v", fullPath, err))
			continue
		}
		// Find the required symbol.
		t, err := plug.Lookup(symbolName)
		if err != nil {
			return nil, fmt.Errorf("symbol %v not found in plugin %v: %v", symbolName, fullPath, err)
		}
		return t, nil
	}
	// Build one error string from all errors.
	var errTxt string
	for i, e := range errs { // for each error returned...
		// Build one combined string of format: (<n>) <error>
		errTxt = fmt.Sprintf("%v (%v) %v", errTxt, i+1, e)
	}
	return nil, fmt.Errorf("unable to load plugin (set %v to the plugin directory) due to the following error(s): %v", constants.EnvVarPluginDir, strings.TrimSpace(errTxt))
}
