package components

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/aws/s3"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/file"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	tabledefinition "github.com/relloyd/tablesync/table-definition"
	"github.com/relloyd/tablesync/tablesync"
)

// csvNullValue is written for nil values in staged CSV files and matched by NULL_IF in the COPY statement.
const csvNullValue = `\N`

type SnowflakeLoaderConfig struct {
	Log            logger.Logger           `errorTxt:"logger" mandatory:"yes"`
	Opener         shared.ConnectionOpener `errorTxt:"Snowflake connection" mandatory:"yes"`
	SourceType     string                  `errorTxt:"source connection type" mandatory:"yes"`
	LoadMode       string                  // insert (default) or stage.
	BatchSize      int                     // rows per INSERT statement.
	StageName      string                  // external Snowflake stage on Bucket, required in stage mode.
	Bucket         s3.BasicClient          // required in stage mode.
	CsvMaxFileRows int
	RunId          string // used to make S3 keys unique per run.
}

// SnowflakeLoader implements tablesync.Loader.
// Every Load is a destructive full replace of the target table: rows are written to a staging
// table which is then swapped with the target, so the target never holds partial data.
type SnowflakeLoader struct {
	cfg     SnowflakeLoaderConfig
	mapper  tabledefinition.Mapper
	dialect rdbms.Dialect
}

func NewSnowflakeLoader(cfg *SnowflakeLoaderConfig) (*SnowflakeLoader, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	c := *cfg
	if c.LoadMode == "" {
		c.LoadMode = constants.LoadModeInsert
	}
	if c.BatchSize <= 0 {
		c.BatchSize = constants.LoadTxtBatchNumRowsDefault
	}
	if c.CsvMaxFileRows <= 0 {
		c.CsvMaxFileRows = constants.CsvMaxFileRowsDefault
	}
	switch c.LoadMode {
	case constants.LoadModeInsert:
	case constants.LoadModeStage:
		if c.StageName == "" || c.Bucket == nil {
			return nil, errors.New("load mode stage requires a Snowflake stage name and an S3 bucket")
		}
	default:
		return nil, fmt.Errorf("unsupported load mode %q", c.LoadMode)
	}
	m, err := tabledefinition.GetMapper(c.SourceType)
	if err != nil {
		return nil, err
	}
	d, err := rdbms.GetDialect(constants.ConnectionTypeSnowflake)
	if err != nil {
		return nil, err
	}
	return &SnowflakeLoader{cfg: c, mapper: m, dialect: d}, nil
}

// Load replaces the contents of target with rows, creating the target table if it does not exist.
func (l *SnowflakeLoader) Load(ctx context.Context, rows *tablesync.RowSet, target tablesync.LoadTarget) (tablesync.LoadResult, error) {
	log := l.cfg.Log
	tgt := rdbms.SchemaTable{Database: target.Database, Schema: target.Schema, Table: target.Table}
	stage := tgt.AppendSuffix(constants.StageTableSuffix)
	ddl, unmapped, err := tabledefinition.ConvertTableDefinitionToSnowflake(log, getTableColumns(rows), stage, l.mapper, true)
	if err != nil {
		return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
	}
	if len(unmapped) > 0 {
		log.Warn("Columns with unsupported data types will be loaded as varchar: ", strings.Join(unmapped, ", "))
	}
	conn, err := l.cfg.Opener.Open(ctx)
	if err != nil {
		return tablesync.LoadResult{}, &tablesync.ConnectionError{Table: target.String(), Err: err}
	}
	defer conn.Close()
	// Create and fill the staging table.
	if err = execSql(ctx, log, conn, ddl); err != nil {
		return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
	}
	stageCreated := true
	defer func() {
		if stageCreated { // if we failed before the swap...
			if e := execSql(context.Background(), log, conn, l.getDropSql(stage)); e != nil {
				log.Warn("Unable to drop staging table ", stage, ": ", e)
			}
		}
	}()
	if l.cfg.LoadMode == constants.LoadModeStage {
		err = l.loadViaStage(ctx, conn, rows, stage)
	} else {
		err = l.loadViaInsert(ctx, conn, rows, stage)
	}
	if err != nil {
		return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
	}
	// Swap the staging table into place.
	queries := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %v LIKE %v", l.dialect.QualifiedName(tgt), l.dialect.QualifiedName(stage)),
		fmt.Sprintf("ALTER TABLE %v SWAP WITH %v", l.dialect.QualifiedName(tgt), l.dialect.QualifiedName(stage)),
	}
	for _, q := range queries {
		if err = execSql(ctx, log, conn, q); err != nil {
			return tablesync.LoadResult{}, &tablesync.WriteError{Table: target.String(), Err: err}
		}
	}
	// The old target data now lives in the staging table.
	stageCreated = false
	if err = execSql(ctx, log, conn, l.getDropSql(stage)); err != nil {
		log.Warn("Unable to drop staging table ", stage, ": ", err)
	}
	log.Info("Loaded ", rows.Len(), " rows into ", target)
	return tablesync.LoadResult{RowsExported: rows.Len()}, nil
}

func (l *SnowflakeLoader) getDropSql(stage rdbms.SchemaTable) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %v", l.dialect.QualifiedName(stage))
}

// loadViaInsert writes rows using batches of multi-row INSERT statements in a single transaction.
func (l *SnowflakeLoader) loadViaInsert(ctx context.Context, conn shared.Connector, rows *tablesync.RowSet, stage rdbms.SchemaTable) (err error) {
	if rows.Len() == 0 {
		return nil
	}
	gen, err := conn.GetDmlGenerator().NewInsertGenerator(&shared.SqlStatementGeneratorConfig{
		Log:          l.cfg.Log,
		OutputSchema: l.dialect.QualifiedSchema(stage),
		OutputTable:  l.dialect.QuoteIdentifier(stage.Table),
		TargetCols:   l.dialect.QuoteIdentifiers(rows.ColumnNames()),
	})
	if err != nil {
		return err
	}
	batch, ok := gen.(shared.SqlStmtTxtBatcher)
	if !ok {
		return errors.New("the Snowflake DML generator does not support batched INSERT statements")
	}
	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	rollbackRequired := true
	defer func() {
		if rollbackRequired {
			if e := tx.Rollback(); e != nil {
				l.cfg.Log.Warn("Error during rollback: ", e)
			}
		}
	}()
	flush := func() error {
		if batch.NumRows() == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, batch.GetStatement(), batch.GetValues()...); err != nil {
			return errors.Wrapf(err, "error inserting batch of %v rows", batch.NumRows())
		}
		batch.InitBatch(l.cfg.BatchSize)
		return nil
	}
	batch.InitBatch(l.cfg.BatchSize)
	for _, row := range rows.Rows { // for each row...
		vals, err := getBindValues(row)
		if err != nil {
			return err
		}
		full, err := batch.AddValuesToBatch(vals)
		if err != nil {
			return err
		}
		if full {
			if err = flush(); err != nil {
				return err
			}
		}
	}
	if err = flush(); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "error during commit")
	}
	rollbackRequired = false
	return nil
}

// loadViaStage writes rows to gzipped CSV files, puts them to S3 under the external stage and COPYs them in.
// Local files and S3 objects are removed afterwards.
func (l *SnowflakeLoader) loadViaStage(ctx context.Context, conn shared.Connector, rows *tablesync.RowSet, stage rdbms.SchemaTable) (err error) {
	log := l.cfg.Log
	if rows.Len() == 0 {
		return nil
	}
	csv, err := file.NewCSVFileOutput(log, "", strings.ToLower(stage.Table), "csv", l.cfg.CsvMaxFileRows, 0, true)
	if err != nil {
		return err
	}
	defer func() {
		if e := csv.RemoveAll(); e != nil {
			log.Warn("Unable to remove local CSV files in ", csv.Directory(), ": ", e)
		}
	}()
	for _, row := range rows.Rows { // for each row...
		rec, err := getCsvRecord(row)
		if err != nil {
			return err
		}
		if _, err = csv.WriteToCSV(rec); err != nil {
			return err
		}
	}
	if err = csv.Close(); err != nil {
		return err
	}
	// Put the files.
	keyPrefix := path.Join(l.getRunId(), strings.ToLower(stage.Schema), strings.ToLower(stage.Table))
	fileNames := make([]string, 0, len(csv.ListOfOutputFiles))
	defer func() {
		for _, f := range fileNames {
			if e := l.cfg.Bucket.Delete(path.Join(keyPrefix, f)); e != nil {
				log.Warn("Unable to delete staged file ", l.cfg.Bucket.Url(path.Join(keyPrefix, f)), ": ", e)
			}
		}
	}()
	for _, f := range csv.ListOfOutputFiles {
		if err = putFile(l.cfg.Bucket, path.Join(keyPrefix, path.Base(f)), f); err != nil {
			return err
		}
		fileNames = append(fileNames, path.Base(f))
		log.Debug("Staged file ", l.cfg.Bucket.Url(path.Join(keyPrefix, path.Base(f))))
	}
	return execSql(ctx, log, conn, getSqlSnowflakeCopyInto(l.dialect.QualifiedName(stage), l.cfg.StageName, keyPrefix, fileNames))
}

func (l *SnowflakeLoader) getRunId() string {
	if l.cfg.RunId != "" {
		return l.cfg.RunId
	}
	return time.Now().UTC().Format(constants.TimeFormatYearSeconds)
}

func putFile(bucket s3.BasicClient, key string, fileName string) error {
	f, err := os.Open(fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to open file %v", fileName)
	}
	defer f.Close()
	if err = bucket.BufferPut(key, f); err != nil {
		return errors.Wrapf(err, "unable to put file %v to %v", fileName, bucket.Url(key))
	}
	return nil
}

// getSqlSnowflakeCopyInto generates SQL to copy the named files found under stageName/keyPrefix into table.
func getSqlSnowflakeCopyInto(table string, stageName string, keyPrefix string, fileNames []string) string {
	quoted := make([]string, len(fileNames))
	for idx, f := range fileNames {
		quoted[idx] = "'" + f + "'"
	}
	return fmt.Sprintf("COPY INTO %v FROM @%v/%v/ FILES=(%v) "+
		`FILE_FORMAT=(TYPE=CSV COMPRESSION=GZIP FIELD_OPTIONALLY_ENCLOSED_BY='"' EMPTY_FIELD_AS_NULL=FALSE ESCAPE_UNENCLOSED_FIELD=NONE NULL_IF=('\\N') BINARY_FORMAT=HEX) `+
		"FORCE=TRUE",
		table, stageName, keyPrefix, strings.Join(quoted, ","))
}

func execSql(ctx context.Context, log logger.Logger, conn shared.Connector, sqltext string) error {
	log.Debug("Executing SQL: ", sqltext)
	res, err := conn.ExecContext(ctx, sqltext)
	if err != nil {
		return fmt.Errorf("error executing SQL: '%v': %w", sqltext, err)
	}
	if res != nil {
		if i, e := res.RowsAffected(); e == nil { // if we have the number of rows affected...
			log.Debug("Rows affected: ", i)
		}
	}
	return nil
}

// getTableColumns converts RowSet metadata for the table definition package.
func getTableColumns(rows *tablesync.RowSet) tabledefinition.TableColumns {
	tc := tabledefinition.TableColumns{Columns: make([]tabledefinition.TableColumn, len(rows.Columns))}
	for idx, c := range rows.Columns {
		tc.Columns[idx] = tabledefinition.TableColumn{
			ColName:       c.Name,
			DataType:      c.DatabaseType,
			DataLen:       int(c.Length),
			DataPrecision: int(c.Precision),
			DataScale:     int(c.Scale),
			Nullable:      c.Nullable,
			TargetType:    c.TargetType,
		}
	}
	return tc
}

// getBindValues returns row with values converted to types the Snowflake driver can bind.
func getBindValues(row []interface{}) ([]interface{}, error) {
	retval := make([]interface{}, len(row))
	for idx, v := range row {
		switch t := v.(type) {
		case nil, int64, float64, string, bool, time.Time, []byte:
			retval[idx] = t
		default:
			s, err := helper.GetStringFromInterfaceUseUtcTime(t)
			if err != nil {
				return nil, err
			}
			retval[idx] = s
		}
	}
	return retval, nil
}

// getCsvRecord returns row as strings suitable for COPY INTO.
func getCsvRecord(row []interface{}) ([]string, error) {
	retval := make([]string, len(row))
	for idx, v := range row {
		switch t := v.(type) {
		case nil:
			retval[idx] = csvNullValue
		case []byte:
			retval[idx] = strings.ToUpper(hex.EncodeToString(t))
		default:
			s, err := helper.GetStringFromInterfaceUseUtcTime(t)
			if err != nil {
				return nil, err
			}
			retval[idx] = s
		}
	}
	return retval, nil
}
