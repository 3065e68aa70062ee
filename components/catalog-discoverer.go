package components

import (
	"context"
	"fmt"

	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/rdbms"
	"github.com/relloyd/tablesync/rdbms/shared"
	"github.com/relloyd/tablesync/tablesync"
)

type CatalogDiscovererConfig struct {
	Log    logger.Logger           `errorTxt:"logger" mandatory:"yes"`
	Opener shared.ConnectionOpener `errorTxt:"source connection" mandatory:"yes"`
}

// CatalogDiscoverer implements tablesync.Discoverer using the source's INFORMATION_SCHEMA.
type CatalogDiscoverer struct {
	log     logger.Logger
	opener  shared.ConnectionOpener
	dialect rdbms.Dialect
}

func NewCatalogDiscoverer(cfg *CatalogDiscovererConfig) (*CatalogDiscoverer, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	d, err := rdbms.GetDialect(cfg.Opener.GetType())
	if err != nil {
		return nil, err
	}
	return &CatalogDiscoverer{log: cfg.Log, opener: cfg.Opener, dialect: d}, nil
}

// Discover returns the base tables of sourceDatabase in catalog order.
// The connection is closed before returning.
func (d *CatalogDiscoverer) Discover(ctx context.Context, sourceDatabase string) ([]tablesync.TableRef, error) {
	conn, err := d.opener.Open(ctx)
	if err != nil {
		return nil, &tablesync.ConnectionError{Err: err}
	}
	defer conn.Close()
	sqltext := d.dialect.DiscoverySql(sourceDatabase)
	d.log.Debug("Discovering tables using SQL: ", sqltext)
	h := &tableRefCollector{}
	if err = rdbms.SqlQuery(ctx, d.log, conn, sqltext, h, sourceDatabase); err != nil {
		return nil, &tablesync.QueryError{Sql: sqltext, Err: err}
	}
	return h.tables, nil
}

// tableRefCollector implements shared.SqlResultHandler.
// It expects rows of (schema, table).
type tableRefCollector struct {
	tables []tablesync.TableRef
}

func (c *tableRefCollector) HandleHeader(i []interface{}) error {
	if len(i) != 2 {
		return fmt.Errorf("expected 2 columns (schema, table) from the catalog query; got %v", len(i))
	}
	c.tables = make([]tablesync.TableRef, 0)
	return nil
}

func (c *tableRefCollector) HandleRow(i []interface{}) error {
	schema, err := helper.GetStringFromInterface(i[0], false)
	if err != nil {
		return err
	}
	name, err := helper.GetStringFromInterface(i[1], false)
	if err != nil {
		return err
	}
	c.tables = append(c.tables, tablesync.TableRef{Schema: schema, Name: name})
	return nil
}
