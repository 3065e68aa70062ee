package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/aws/s3"
	"github.com/relloyd/tablesync/components"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/relloyd/tablesync/stats"
	"github.com/relloyd/tablesync/tablesync"
)

// RunConfig is the generic config for the run command as supplied by the CLI.
// SetupTableSync converts it into a TableSyncConfig.
type RunConfig struct {
	SrcAndTgtConnections
	SourceDatabase      string
	TargetDatabase      string
	TargetSchema        string
	LoadMode            string
	BatchSize           int
	StageName           string
	S3Connection        string // name of the S3 bucket connection used by load mode stage.
	CsvMaxFileRows      int
	TableFilter         string // JSON Logic rule.
	Tables              string // CSV of table names.
	Retries             int
	RetryBackoffSeconds int
	Output              string
	FailOnError         bool
	StatsDumpFrequency  int
	LogLevel            string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic    bool
	Writer              io.Writer // rows printed by a stdout target; defaults to os.Stdout.
	ReportWriter        io.Writer // defaults to os.Stdout, or os.Stderr when the target is stdout.
}

// TableSyncConfig holds the resolved settings for one or more runs of a tablesync.Job.
type TableSyncConfig struct {
	Log               logger.Logger             `errorTxt:"logger" mandatory:"yes"`
	SrcConnDetails    *shared.ConnectionDetails `errorTxt:"source connection" mandatory:"yes"`
	TgtConnDetails    *shared.ConnectionDetails `errorTxt:"target connection" mandatory:"yes"`
	BucketConnDetails *shared.ConnectionDetails
	SourceDatabase    string `errorTxt:"source database" mandatory:"yes"`
	TargetDatabase    string
	TargetSchema      string
	LoadMode          string
	BatchSize         int
	StageName         string
	CsvMaxFileRows    int
	TableFilter       string
	Tables            string
	Retry             tablesync.RetryPolicy
	Output            string
	FailOnError       bool
	StatsDumpFreq     int
	Writer            io.Writer
	ReportWriter      io.Writer
	// Optional overrides used instead of opening real connections.
	SourceOpener shared.ConnectionOpener
	TargetOpener shared.ConnectionOpener
	Bucket       s3.BasicClient
}

// SetupTableSync populates actionCfg, a *TableSyncConfig, from genericCfg, a *RunConfig.
func SetupTableSync(genericCfg interface{}, actionCfg interface{}) error {
	src, ok := genericCfg.(*RunConfig)
	if !ok {
		return errors.New("unexpected config type supplied to SetupTableSync")
	}
	tgt, ok := actionCfg.(*TableSyncConfig)
	if !ok {
		return errors.New("unexpected action config type supplied to SetupTableSync")
	}
	if err := helper.ValidateStructIsPopulated(src); err != nil {
		return err
	}
	if src.Connections == nil {
		return errors.New("missing connection handler")
	}
	var err error
	tgt.Log = logger.NewLogger("tablesync", src.LogLevel, src.StackDumpOnPanic)
	// Source.
	if tgt.SrcConnDetails, err = src.Connections.GetConnectionDetails(src.SourceString.GetConnectionName()); err != nil {
		return err
	}
	if tgt.SourceDatabase, err = getSourceDatabase(src.SourceDatabase, src.SourceString.GetObject(), tgt.SrcConnDetails); err != nil {
		return err
	}
	// Target.
	tgtType, err := src.Connections.GetConnectionType(src.TargetString.GetConnectionName())
	if err != nil {
		return err
	}
	if tgtType == constants.ConnectionTypeStdout {
		tgt.TgtConnDetails = &shared.ConnectionDetails{Type: constants.ConnectionTypeStdout, LogicalName: constants.ConnectionTypeStdout}
	} else if tgt.TgtConnDetails, err = src.Connections.GetConnectionDetails(src.TargetString.GetConnectionName()); err != nil {
		return err
	}
	if tgt.TargetDatabase, tgt.TargetSchema, err = getTargetDatabaseSchema(src.TargetDatabase, src.TargetSchema, src.TargetString.GetObject(), tgt.TgtConnDetails); err != nil {
		return err
	}
	// Load settings.
	tgt.LoadMode = strings.ToLower(src.LoadMode)
	if tgt.LoadMode == "" {
		tgt.LoadMode = constants.LoadModeInsert
	}
	if tgt.LoadMode == constants.LoadModeStage && tgt.TgtConnDetails.Type == constants.ConnectionTypeSnowflake {
		if src.S3Connection == "" || src.StageName == "" {
			return errors.New("load mode stage requires an S3 connection and a Snowflake stage name")
		}
		if tgt.BucketConnDetails, err = src.Connections.GetConnectionDetails(src.S3Connection); err != nil {
			return err
		}
	}
	tgt.BatchSize = src.BatchSize
	tgt.StageName = src.StageName
	tgt.CsvMaxFileRows = src.CsvMaxFileRows
	tgt.TableFilter = src.TableFilter
	tgt.Tables = src.Tables
	if src.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %v", src.Retries)
	}
	tgt.Retry = tablesync.RetryPolicy{MaxAttempts: src.Retries + 1, Backoff: time.Duration(src.RetryBackoffSeconds) * time.Second}
	tgt.Output = strings.ToLower(src.Output)
	if tgt.Output == "" {
		tgt.Output = constants.OutputFormatText
	}
	tgt.FailOnError = src.FailOnError
	tgt.StatsDumpFreq = src.StatsDumpFrequency
	tgt.Writer = src.Writer
	if tgt.Writer == nil {
		tgt.Writer = os.Stdout
	}
	tgt.ReportWriter = src.ReportWriter
	if tgt.ReportWriter == nil {
		tgt.ReportWriter = os.Stdout
		if tgtType == constants.ConnectionTypeStdout {
			tgt.ReportWriter = os.Stderr
		}
	}
	return helper.ValidateStructIsPopulated(tgt)
}

// getSourceDatabase returns the first of flagValue, object or the database named in the source DSN.
func getSourceDatabase(flagValue string, object string, c *shared.ConnectionDetails) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if object != "" {
		return object, nil
	}
	db, err := shared.GetDsnConnectionDetails(c).GetDatabase()
	if err != nil {
		return "", errors.Wrapf(err, "unable to find the source database, please supply one for connection %q", c.LogicalName)
	}
	return db, nil
}

// getTargetDatabaseSchema falls back to the database and schema of the Snowflake DSN.
// The object of the target connection string is a schema name.
func getTargetDatabaseSchema(flagDatabase, flagSchema, object string, c *shared.ConnectionDetails) (database string, schema string, err error) {
	database = flagDatabase
	schema = flagSchema
	if schema == "" {
		schema = object
	}
	if c.Type != constants.ConnectionTypeSnowflake || (database != "" && schema != "") {
		return
	}
	sf, err := rdbms.SnowflakeParseDSN(c.Data[shared.DefaultDsnConnectionKeyNames.Dsn])
	if err != nil {
		return "", "", errors.Wrapf(err, "unable to parse Snowflake DSN for connection %q", c.LogicalName)
	}
	if database == "" {
		database = sf.DBName
	}
	if schema == "" {
		schema = sf.Schema
	}
	if database == "" || schema == "" {
		err = fmt.Errorf("unable to find the target database and schema, please supply them for connection %q", c.LogicalName)
	}
	return
}

// NewTableSyncJob wires the source, target and filters in cfg into a new tablesync.Job.
// watcher may be nil.
func NewTableSyncJob(cfg *TableSyncConfig, runId string, watcher tablesync.ProgressWatcher) (*tablesync.Job, error) {
	log := cfg.Log
	if runId == "" {
		runId = tablesync.NewRunId()
	}
	srcOpener := cfg.SourceOpener
	if srcOpener == nil {
		srcOpener = rdbms.NewConnectionOpener(log, *cfg.SrcConnDetails)
	}
	discoverer, err := components.NewCatalogDiscoverer(&components.CatalogDiscovererConfig{Log: log, Opener: srcOpener})
	if err != nil {
		return nil, err
	}
	extractor, err := components.NewTableExtractor(&components.TableExtractorConfig{Log: log, Opener: srcOpener})
	if err != nil {
		return nil, err
	}
	loader, err := newLoader(cfg, srcOpener.GetType(), runId)
	if err != nil {
		return nil, err
	}
	filter, err := newTableFilter(cfg.TableFilter, cfg.Tables)
	if err != nil {
		return nil, err
	}
	jobCfg := tablesync.JobConfig{
		Log:            log,
		RunId:          runId,
		SourceDatabase: cfg.SourceDatabase,
		TargetDatabase: cfg.TargetDatabase,
		TargetSchema:   cfg.TargetSchema,
		Discoverer:     discoverer,
		Extractor:      extractor,
		Loader:         loader,
		Filter:         filter,
		Watcher:        watcher,
		Retry:          cfg.Retry,
	}
	return tablesync.NewJob(jobCfg)
}

func newLoader(cfg *TableSyncConfig, sourceType string, runId string) (tablesync.Loader, error) {
	switch cfg.TgtConnDetails.Type {
	case constants.ConnectionTypeStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		return components.NewStdOutLoader(cfg.Log, w), nil
	case constants.ConnectionTypeSnowflake:
		tgtOpener := cfg.TargetOpener
		if tgtOpener == nil {
			tgtOpener = rdbms.NewConnectionOpener(cfg.Log, *cfg.TgtConnDetails)
		}
		bucket := cfg.Bucket
		if bucket == nil && cfg.LoadMode == constants.LoadModeStage {
			b, err := s3.NewAwsBucket(cfg.BucketConnDetails)
			if err != nil {
				return nil, err
			}
			if bucket, err = s3.NewBasicClient(b.Name, b.Region, b.Prefix); err != nil {
				return nil, errors.Wrap(err, "unable to create S3 client")
			}
		}
		return components.NewSnowflakeLoader(&components.SnowflakeLoaderConfig{
			Log:            cfg.Log,
			Opener:         tgtOpener,
			SourceType:     sourceType,
			LoadMode:       cfg.LoadMode,
			BatchSize:      cfg.BatchSize,
			StageName:      cfg.StageName,
			Bucket:         bucket,
			CsvMaxFileRows: cfg.CsvMaxFileRows,
			RunId:          runId,
		})
	}
	return nil, fmt.Errorf("unsupported target connection type %q", cfg.TgtConnDetails.Type)
}

// newTableFilter returns nil if there is nothing to filter.
func newTableFilter(rule string, tables string) (tablesync.TableFilter, error) {
	var filters components.AllTableFilters
	if strings.TrimSpace(rule) != "" {
		f, err := components.NewJsonLogicTableFilter(rule)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if strings.TrimSpace(tables) != "" {
		filters = append(filters, components.NewTableListFilter(tables))
	}
	if len(filters) == 0 {
		return nil, nil
	}
	return filters, nil
}

// RunTableSync runs a single tablesync.Job using actionCfg, a *TableSyncConfig.
// Interrupts cancel the run after the current table.
func RunTableSync(actionCfg interface{}) error {
	cfg, ok := actionCfg.(*TableSyncConfig)
	if !ok {
		return errors.New("unexpected config type supplied to RunTableSync")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chanQuit := make(chan os.Signal, 2)
	signal.Notify(chanQuit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(chanQuit)
	go func() {
		select {
		case <-chanQuit:
			cfg.Log.Warn("User abort. Stopping after the current table...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return runTableSync(ctx, cfg)
}

func runTableSync(ctx context.Context, cfg *TableSyncConfig) error {
	watcher := stats.NewRunWatcher(cfg.Log, stats.SetStatsDumpFrequency(cfg.StatsDumpFreq))
	job, err := NewTableSyncJob(cfg, "", watcher)
	if err != nil {
		return err
	}
	report, err := job.Run(ctx)
	if report != nil {
		if e := writeReport(cfg.ReportWriter, cfg.Output, report); e != nil {
			return e
		}
	}
	if err != nil {
		return err
	}
	if cfg.FailOnError && report.HasFailures() {
		return fmt.Errorf("%v of %v tables failed", len(report.Failures), len(report.Failures)+len(report.Successes))
	}
	return nil
}

// writeReport prints report as text, json or yaml.
func writeReport(w io.Writer, format string, report *tablesync.RunReport) error {
	if format != constants.OutputFormatText && format != "" {
		return writeOutput(w, format, report)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run %v: %v tables succeeded, %v failed, %v rows exported\n",
		report.RunId, len(report.Successes), len(report.Failures), report.TotalRowsExported()))
	for _, s := range report.Successes {
		sb.WriteString(fmt.Sprintf("  ok    %v.%v (%v rows)\n", s.Schema, s.Table, s.RowsExported))
	}
	for _, f := range report.Failures {
		sb.WriteString(fmt.Sprintf("  %v  %v.%v: %v\n", constants.EmojiBang, f.Schema, f.Table, f.Error))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
