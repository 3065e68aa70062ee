package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/constants"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms/shared"
	sf "github.com/snowflakedb/gosnowflake"
)

const snowflakeScheme = "snowflake://"

// SnowflakeConnectionDetails is the parsed form of a snowflake:// DSN.
// DBName and Schema are the default load target for a run.
type SnowflakeConnectionDetails struct {
	Account   string
	DBName    string
	Schema    string
	User      string
	Password  string
	Warehouse string
	RoleName  string
}

// SnowflakeGetDSN builds a snowflake:// DSN from c.
func SnowflakeGetDSN(c *SnowflakeConnectionDetails) (string, error) {
	dsn, err := sf.DSN(&sf.Config{
		Account:   c.Account,
		Database:  c.DBName,
		Schema:    c.Schema,
		User:      c.User,
		Password:  c.Password,
		Warehouse: c.Warehouse,
		Role:      c.RoleName,
	})
	if err != nil {
		return "", errors.Wrap(err, "unable to build Snowflake DSN")
	}
	if !strings.HasPrefix(dsn, snowflakeScheme) {
		dsn = snowflakeScheme + dsn
	}
	return dsn, nil
}

// SnowflakeParseDSN validates a snowflake:// DSN using the driver's own parser.
// A region returned separately by the driver is folded back into Account.
func SnowflakeParseDSN(dsn string) (*SnowflakeConnectionDetails, error) {
	if !strings.HasPrefix(dsn, snowflakeScheme) {
		return nil, fmt.Errorf("unsupported Snowflake DSN format, expected prefix %v", snowflakeScheme)
	}
	cfg, err := sf.ParseDSN(strings.TrimPrefix(dsn, snowflakeScheme))
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse Snowflake DSN")
	}
	d := &SnowflakeConnectionDetails{
		Account:   cfg.Account,
		DBName:    cfg.Database,
		Schema:    cfg.Schema,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		RoleName:  cfg.Role,
	}
	if cfg.Region != "" && !strings.Contains(d.Account, ".") {
		d.Account = d.Account + "." + cfg.Region
	}
	return d, nil
}

func newSnowflakeConnection(ctx context.Context, log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	conn := &shared.HpConnection{
		Dml:    &shared.DmlGeneratorTxtBatch{},
		DbType: constants.ConnectionTypeSnowflake,
	}
	var err error
	conn.DbSql, err = sql.Open("snowflake", strings.TrimPrefix(d.Dsn, snowflakeScheme))
	if err != nil {
		return nil, err
	}
	if err = conn.DbSql.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("Successful database connection to Snowflake: ", shared.RedactDsn(d.Dsn))
	return conn, nil
}

// SnowflakeDDLExec opens a connection to Snowflake, executes a single statement and closes the connection.
func SnowflakeDDLExec(log logger.Logger, connDetails *shared.DsnConnectionDetails, stmt string) error {
	conn, err := newSnowflakeConnection(context.Background(), log, connDetails)
	if err != nil {
		return err
	}
	defer conn.Close()
	if _, err = conn.Exec(stmt); err != nil {
		return errors.Wrap(err, "failed to execute Snowflake DDL")
	}
	return nil
}
