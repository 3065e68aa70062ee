package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/tablesync"
)

// JsonLogicTableFilter includes tables for which a JSON Logic rule evaluates to true.
// The rule is applied to {"schema": "<schema>", "table": "<table>"}.
type JsonLogicTableFilter struct {
	rule string
}

// NewJsonLogicTableFilter returns an error if rule is not valid JSON Logic.
func NewJsonLogicTableFilter(rule string) (*JsonLogicTableFilter, error) {
	if !jsonlogic.IsValid(strings.NewReader(rule)) {
		return nil, fmt.Errorf("invalid JSON Logic table filter: %v", rule)
	}
	return &JsonLogicTableFilter{rule: rule}, nil
}

func (f *JsonLogicTableFilter) Include(table tablesync.TableRef) (bool, error) {
	data, err := json.Marshal(map[string]string{"schema": table.Schema, "table": table.Name})
	if err != nil {
		return false, err
	}
	var result bytes.Buffer
	if err = jsonlogic.Apply(strings.NewReader(f.rule), bytes.NewReader(data), &result); err != nil {
		return false, fmt.Errorf("error applying table filter to %v: %w", table, err)
	}
	return strings.TrimSpace(result.String()) == "true", nil
}

// TableListFilter includes only the named tables.
// Names may be given as table or schema.table and are matched ignoring case.
type TableListFilter struct {
	names map[string]bool
}

// NewTableListFilter accepts a comma separated list of table names.
func NewTableListFilter(csv string) *TableListFilter {
	f := &TableListFilter{names: make(map[string]bool)}
	for _, n := range helper.CsvToStringSliceTrimSpaces(csv) {
		if n != "" {
			f.names[strings.ToUpper(n)] = true
		}
	}
	return f
}

func (f *TableListFilter) Include(table tablesync.TableRef) (bool, error) {
	return f.names[strings.ToUpper(table.Name)] || f.names[strings.ToUpper(table.String())], nil
}

// AllTableFilters includes a table only when every filter includes it.
type AllTableFilters []tablesync.TableFilter

func (a AllTableFilters) Include(table tablesync.TableRef) (bool, error) {
	for _, f := range a {
		ok, err := f.Include(table)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
