package actions

import (
	"fmt"
	"reflect"

	"github.com/relloyd/tablesync/constants"
)

type SrcAndTgtConnections struct {
	Connections  ConnectionHandler
	SourceString ConnectionObject
	TargetString ConnectionObject
}

type Action struct {
	FnAction   func(actionCfg interface{}) error                         // the function to execute the action
	ActionCfg  interface{}                                               // the config struct to pass to the FnAction
	FnSetupCfg func(genericCfg interface{}, actionCfg interface{}) error // the function to convert generic cfg to action-specific config for the FnAction
}

// ActionLauncher will:
// 1) call the function fnActionGetter to find the Action{} based on the sourceType and targetType strings supplied.
// 2) Once it has the Action{}, it calls setup function Action.FnSetupCfg() to populate Action.ActionCfg{}.
// 3) Then it can start the action by calling Action.FnAction().
func ActionLauncher(
	cfg interface{},
	fnActionGetter func(sourceType string, targetType string) (Action, error),
	sourceType string,
	targetType string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to config in variable cfg to be supplied to ActionLauncher")
	}
	// Fetch the action.
	a, err := fnActionGetter(sourceType, targetType)
	if err != nil {
		return err
	}
	// Populate the action's config struct using the generic.
	if err = a.FnSetupCfg(cfg, a.ActionCfg); err != nil {
		return err
	}
	// Run the action.
	return a.FnAction(a.ActionCfg)
}

func newTableSyncAction() Action {
	return Action{FnAction: RunTableSync, ActionCfg: &TableSyncConfig{}, FnSetupCfg: SetupTableSync}
}

func newDiscoverAction() Action {
	return Action{FnAction: RunDiscover, ActionCfg: &DiscoverConfig{}, FnSetupCfg: SetupDiscover}
}

// ActionFuncs is a register of all supported actions keyed by command and then <src type>-<tgt type>.
// Note that keys in the final map[string]Action are used to validate DSN-type database connections before
// they are added. See RunConnectionAdd().
var ActionFuncs = map[string]map[string]Action{
	constants.ActionFuncsCommandRun: { // command...
		"sqlserver-snowflake":      newTableSyncAction(),
		"sqlserver-stdout":         newTableSyncAction(),
		"odbc+sqlserver-snowflake": newTableSyncAction(),
		"odbc+sqlserver-stdout":    newTableSyncAction(),
		"postgres-snowflake":       newTableSyncAction(),
		"postgres-stdout":          newTableSyncAction(),
		"mysql-snowflake":          newTableSyncAction(),
		"mysql-stdout":             newTableSyncAction(),
	},
	constants.ActionFuncsCommandDiscover: {
		// Discovery has no target so the target type is always stdout.
		"sqlserver-stdout":      newDiscoverAction(),
		"odbc+sqlserver-stdout": newDiscoverAction(),
		"postgres-stdout":       newDiscoverAction(),
		"mysql-stdout":          newDiscoverAction(),
	},
}

// GetRunAction returns the "run" Action based on sourceType and targetTypes supplied.
func GetRunAction(sourceType string, targetType string) (Action, error) {
	retval, ok := ActionFuncs[constants.ActionFuncsCommandRun][sourceType+"-"+targetType]
	if !ok {
		return Action{}, fmt.Errorf("unsupported run action for source type %q and target type %q", sourceType, targetType)
	}
	return retval, nil
}

// GetDiscoverAction returns the "discover" Action for sourceType.
// The targetType is ignored.
func GetDiscoverAction(sourceType string, _ string) (Action, error) {
	retval, ok := ActionFuncs[constants.ActionFuncsCommandDiscover][sourceType+"-"+constants.ConnectionTypeStdout]
	if !ok {
		return Action{}, fmt.Errorf("unsupported discover action for source type %q", sourceType)
	}
	return retval, nil
}
