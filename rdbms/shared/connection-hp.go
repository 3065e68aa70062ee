package shared

import (
	"context"
	"database/sql"
	"errors"
)

// HpConnection is a wrapper around Go native sql.DB.
// It also adds the DmlGenerator interface for use in components that output records to a database.
type HpConnection struct {
	DbSql  *sql.DB
	Dml    DmlGenerator
	DbType string
}

// Connector:

func (c *HpConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *HpConnection) BeginTx(ctx context.Context) (Transacter, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	tx, err := c.DbSql.BeginTx(ctx, nil)
	return &HpTx{txSql: tx}, err
}

func (c *HpConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *HpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *HpConnection) Query(query string, args ...interface{}) (*HpRows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error) {
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &HpRows{Rows: r}, nil
}

func (c *HpConnection) PingContext(ctx context.Context) error {
	return c.DbSql.PingContext(ctx)
}

func (c *HpConnection) Close() {
	if c.DbSql != nil {
		_ = c.DbSql.Close()
	}
}

func (c *HpConnection) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

func (c *HpConnection) GetType() string {
	return c.DbType
}

// Transacter:

type HpTx struct {
	txSql *sql.Tx
}

func (t *HpTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *HpTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.txSql.ExecContext(ctx, query, args...)
}

func (t *HpTx) Commit() error {
	return t.txSql.Commit()
}

func (t *HpTx) Rollback() error {
	return t.txSql.Rollback()
}

// Rows:

// HpRows embeds the native rows so callers get ColumnTypes, Scan etc.
type HpRows struct {
	*sql.Rows
}
