package actions

import (
	"sort"
	"strings"

	"github.com/relloyd/tablesync/constants"
)

// IsSupportedConnectionType returns true is the connection type is found in the list of ActionFuncs, else false.
// Target types are included so that Snowflake connections can be added.
func IsSupportedConnectionType(schema string) bool {
	m := getSupportedConnectionTypesMap("", "")
	_, ok := m[schema]
	return ok
}

func GetSupportedOdbcConnectionTypes() string {
	return getSupportedConnectionTypes("", constants.ConnectionTypeOdbc)
}

func GetSupportedSourceConnectionTypes() string {
	return getSupportedConnectionTypes(constants.ActionFuncsCommandDiscover, "")
}

func GetSupportedRunConnectionTypes() string {
	return getSupportedSourcesTargetsMap(constants.ActionFuncsCommandRun)
}

// getSupportedConnectionTypes returns a comma separated, sorted string containing all supported connection types
// based on the contents of ActionFuncs. It uses the <src type> in keys of the form: <src type>-<tgt type>.
// Optionally supply a commandFilter to limit the checking of connection types to the given command.
func getSupportedConnectionTypes(commandFilter, srcTypePrefix string) string {
	var s []string
	m := getSupportedConnectionTypesMap(commandFilter, srcTypePrefix)
	for k := range m { // for each supported connection type as a key...
		if k == constants.ConnectionTypeStdout {
			continue
		}
		s = append(s, k) // save unique connection type key
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}

// getSupportedConnectionTypesMap returns the set of source types matching srcTypePrefix.
// When srcTypePrefix is blank the target types are added too.
func getSupportedConnectionTypesMap(commandFilter, srcTypePrefix string) map[string]struct{} {
	m := make(map[string]struct{})
	for ck, command := range ActionFuncs { // for each command in ActionFuncs...
		for k := range command { // for each Action...
			srcTgt := splitSrcTgt(k)
			if filterConnectionType(ck, commandFilter, srcTgt[0], srcTypePrefix) { // if the connection type is valid...
				m[srcTgt[0]] = struct{}{}
			}
			if srcTypePrefix == "" && (commandFilter == "" || commandFilter == ck) {
				m[srcTgt[1]] = struct{}{}
			}
		}
	}
	return m
}

// splitSrcTgt splits keys of the form <src type>-<tgt type>.
func splitSrcTgt(k string) [2]string {
	var retval [2]string
	i := strings.LastIndex(k, "-")
	if i < 0 {
		retval[0] = k
		return retval
	}
	retval[0] = k[:i]
	retval[1] = k[i+1:]
	return retval
}

// filterConnectionType returns true if the connection type is allowed.
// ActionFuncs contains a register of commands that are filtered here based on the supplied filters.
func filterConnectionType(command, commandFilter, srcType, srcTypePrefix string) (retval bool) {
	if commandFilter != "" && command != commandFilter { // if the command is not required...
		return false
	}
	return strings.HasPrefix(srcType, srcTypePrefix) // if the src connection type matches the srcTypeFilter as a prefix...
}

func getSupportedSourcesTargetsMap(commandFilter string) string {
	m := make(map[string]struct{})
	for ck, command := range ActionFuncs { // for each command in ActionFuncs...
		for keySrcTgt := range command { // for each Action...
			if filterConnectionType(ck, commandFilter, keySrcTgt, "") { // if the connection type is valid...
				// Save the src-tgt.
				m[keySrcTgt] = struct{}{}
			}
		}
	}
	// Convert map to sorted slice and then to a CSV string.
	var s []string
	for k := range m { // for each saved src-tgt...
		s = append(s, "  "+k) // add to slice.
	}
	sort.Strings(s)
	return strings.Join(s, "\n")
}
