package shared

import "errors"

func FixSqlStatementGeneratorConfig(cfg *SqlStatementGeneratorConfig) error {
	if cfg.OutputTable == "" {
		return errors.New("missing output table name")
	}
	if len(cfg.TargetCols) == 0 {
		return errors.New("missing output table columns")
	}
	if cfg.OutputSchema == "" {
		cfg.SchemaSeparator = ""
		cfg.Log.Debug("No output schema supplied; setting a blank separator.")
	} else {
		cfg.SchemaSeparator = "."
	}
	return nil
}
