package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
)

// CreateStageConfig creates the external Snowflake stage used by load mode stage.
type CreateStageConfig struct {
	Connections      ConnectionHandler `errorTxt:"connections" mandatory:"yes"`
	TargetString     ConnectionObject
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	ExecuteDDL       bool
	StackDumpOnPanic bool
	StageName        string `errorTxt:"Snowflake stage" mandatory:"yes"`
	S3Url            string `errorTxt:"AWS S3 URL" mandatory:"yes"`
	S3Key            string `errorTxt:"AWS S3 access key" mandatory:"yes"`
	S3Secret         string `errorTxt:"AWS S3 secret key" mandatory:"yes"`
	Writer           io.Writer
	// fnExec is used to execute DDL and defaults to rdbms.SnowflakeDDLExec.
	fnExec func(log logger.Logger, d *shared.DsnConnectionDetails, sql string) error
}

func RunCreateStage(cfg *CreateStageConfig) error {
	// Setup logging.
	if cfg.LogLevel == "" {
		cfg.LogLevel = "error"
	}
	log := logger.NewLogger("tablesync", cfg.LogLevel, cfg.StackDumpOnPanic)
	// Get AWS variables from env.
	if value := os.Getenv("AWS_ACCESS_KEY_ID"); cfg.S3Key == "" && value != "" { // if the CLI didn't supply a key and there is one we can get from the env...
		cfg.S3Key = value
	}
	if value := os.Getenv("AWS_SECRET_ACCESS_KEY"); cfg.S3Secret == "" && value != "" { // if the CLI didn't supply a secret and there is one we can get from the env...
		cfg.S3Secret = value
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.fnExec == nil {
		cfg.fnExec = rdbms.SnowflakeDDLExec
	}
	// Get real connection details.
	tgtConnDetails, err := cfg.Connections.GetConnectionDetails(cfg.TargetString.GetConnectionName())
	if err != nil {
		return err
	}
	stageDDL := getSnowflakeStageDDL(cfg.StageName, cfg.S3Url, cfg.S3Key, cfg.S3Secret, !cfg.ExecuteDDL) // if we want to execute then disable terminator in SQL strings.
	for _, stmt := range stageDDL {
		if !cfg.ExecuteDDL {
			if _, err = fmt.Fprintln(cfg.Writer, redactStageDDL(stmt, cfg.S3Secret)); err != nil {
				return err
			}
			continue
		}
		log.Info("Executing SQL to create stage ", cfg.StageName)
		if err = cfg.fnExec(log, shared.GetDsnConnectionDetails(tgtConnDetails), stmt); err != nil {
			return errors.Wrapf(err, "unable to create stage %v", cfg.StageName)
		}
		log.Info("SQL succeeded without error.")
	}
	if cfg.ExecuteDDL {
		_, err = fmt.Fprintf(cfg.Writer, "Stage %q created\n", cfg.StageName)
	}
	return err
}

// redactStageDDL hides the AWS secret from printed DDL.
func redactStageDDL(stmt string, secret string) string {
	if secret == "" {
		return stmt
	}
	return strings.ReplaceAll(stmt, secret, "xxxxx")
}

// getSnowflakeStageDDL returns DDL for an external stage whose file format matches the CSV files written by
// components.SnowflakeLoader.
func getSnowflakeStageDDL(stageName string, s3Url string, key string, secret string, addTerminator bool) []string {
	terminator := ""
	s3Url = "s3://" + strings.TrimPrefix(s3Url, "s3://") // ensure 's3://' leading string.
	if !strings.HasSuffix(s3Url, "/") {
		s3Url = s3Url + "/"
	}
	if addTerminator {
		terminator = ";"
	}
	s := [1]string{}
	s[0] = fmt.Sprintf(`create or replace stage %v
  url = '%v'
  credentials = (
    aws_key_id = '%v'
    aws_secret_key = '%v'
  )
  file_format = (
    type = csv
    compression = gzip
    field_optionally_enclosed_by = '"'
    empty_field_as_null = false
    escape_unenclosed_field = none
    null_if = ('\\N')
    binary_format = hex
  )
  comment = 'TableSync bronze layer staging'%v`,
		stageName,
		s3Url,
		key,
		secret,
		terminator)
	return s[:]
}
