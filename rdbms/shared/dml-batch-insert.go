package shared

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SqlInsertTxtBatch implements interface SqlStmtTxtBatcher
// and is able to generate multi-row INSERT statements using positional binds :1, :2, ...
type SqlInsertTxtBatch struct {
	SqlStatementGeneratorConfig // mandatory to be populated.
	sqlCoreCfg
}

// NewInsertGenerator creates a new SqlStmtGenerator that implements interface SqlStmtTxtBatcher.
// Configure defaults in SqlStatementGeneratorConfig.
func (*DmlGeneratorTxtBatch) NewInsertGenerator(cfg *SqlStatementGeneratorConfig) (SqlStmtGenerator, error) {
	if err := FixSqlStatementGeneratorConfig(cfg); err != nil {
		return nil, err
	}
	cfg.Log.Debug("Creating NewInsertGenerator")
	o := &SqlInsertTxtBatch{SqlStatementGeneratorConfig: *cfg}
	o.setupSqlStatement()
	return o, nil
}

func (o *SqlInsertTxtBatch) setupSqlStatement() {
	// Populate the SQL template.
	o.sqlStmtTemplate = `insert into <SCHEMA><SEPARATOR><TABLE> (<TGT-COLS>) values <VALUES>`
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<SCHEMA>", o.OutputSchema, 1)
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<SEPARATOR>", o.SchemaSeparator, 1)
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<TABLE>", o.OutputTable, 1)
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<TGT-COLS>", strings.Join(o.TargetCols, ","), 1)
	o.previousNumRowsInBatch = -1
	o.Log.Debug("setup INSERT generator with SQL (VALUES pending): ", o.sqlStmtTemplate)
}

func (o *SqlInsertTxtBatch) InitBatch(batchSize int) {
	o.batchSize = batchSize
	o.rowsInBatch = 0
	// Allocate a new buffer to hold all values (args) to exec.
	o.sqlValues = make([]interface{}, 0, o.batchSize*len(o.TargetCols)) // many values per row in a batch.
}

func (o *SqlInsertTxtBatch) AddValuesToBatch(values []interface{}) (batchIsFull bool, err error) {
	if o.rowsInBatch >= o.batchSize {
		err = errors.New("no more rows allowed in INSERT batch")
		batchIsFull = true
		return
	}
	if len(values) != len(o.TargetCols) {
		err = errors.New("the number of values supplied does not match the number of table columns")
		return
	}
	// Append values to buffer.
	o.sqlValues = append(o.sqlValues, values...)
	o.rowsInBatch++ // keep track of how close we are to the batch limit.
	batchIsFull = o.rowsInBatch >= o.batchSize
	return
}

func (o *SqlInsertTxtBatch) GetValues() []interface{} {
	return o.sqlValues
}

func (o *SqlInsertTxtBatch) NumRows() int {
	return o.rowsInBatch
}

// GetStatement returns SQL with one row of bind variables per row added to the batch.
// The statement is cached until the number of rows changes.
func (o *SqlInsertTxtBatch) GetStatement() string {
	if o.previousNumRowsInBatch != o.rowsInBatch { // if we have a new number of rows and need to generate SQL...
		allRows := strings.Builder{}
		valIdx := 1
		for rowIdx := 0; rowIdx < o.rowsInBatch; rowIdx++ { // for each row in the batch...
			// Build the current row of bind variables.
			// , :1, :2, :3, etc   <<< trim left comma later.
			row := strings.Builder{}
			for idy := 0; idy < len(o.TargetCols); idy++ { // for each field in the current row...
				row.WriteString(fmt.Sprintf(",:%v", valIdx)) // include a bind variable.
				valIdx++
			}
			// Save the row of bind variables: ',( :1, :2, :n )'  <<< ltrim later.
			allRows.WriteString(fmt.Sprintf(",( %v )", strings.TrimLeft(row.String(), ",")))
		}
		// Trim the leading comma and save all rows as the <VALUES>.
		o.sqlStmt = strings.Replace(o.sqlStmtTemplate, "<VALUES>", strings.TrimLeft(allRows.String(), ","), 1)
		o.previousNumRowsInBatch = o.rowsInBatch
	} // else we have the same number of rows and can use cached SQL...
	return o.sqlStmt
}
