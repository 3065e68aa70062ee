package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/tablesync/constants"
)

// Dialect holds the SQL differences between the supported databases.
type Dialect struct {
	Type              string
	quoteOpen         string
	quoteClose        string
	bindFn            func(n int) string
	discoverySql      string
	qualifyByDatabase bool // true if fully qualified names include the database.
}

var dialects = map[string]Dialect{
	constants.ConnectionTypeSqlServer: {
		Type:      constants.ConnectionTypeSqlServer,
		quoteOpen: "[", quoteClose: "]",
		bindFn: func(n int) string { return fmt.Sprintf("@p%v", n) },
		discoverySql: `SELECT TABLE_SCHEMA, TABLE_NAME FROM <DATABASE>.INFORMATION_SCHEMA.TABLES ` +
			`WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = <BIND1>`,
		qualifyByDatabase: true,
	},
	constants.ConnectionTypeOdbcSqlServer: {
		Type:      constants.ConnectionTypeOdbcSqlServer,
		quoteOpen: "[", quoteClose: "]",
		bindFn: func(n int) string { return "?" },
		discoverySql: `SELECT TABLE_SCHEMA, TABLE_NAME FROM <DATABASE>.INFORMATION_SCHEMA.TABLES ` +
			`WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = <BIND1>`,
		qualifyByDatabase: true,
	},
	constants.ConnectionTypePostgres: {
		Type:      constants.ConnectionTypePostgres,
		quoteOpen: `"`, quoteClose: `"`,
		bindFn: func(n int) string { return fmt.Sprintf("$%v", n) },
		discoverySql: `SELECT table_schema, table_name FROM information_schema.tables ` +
			`WHERE table_type = 'BASE TABLE' AND table_catalog = <BIND1> ` +
			`AND table_schema NOT IN ('pg_catalog', 'information_schema')`,
	},
	constants.ConnectionTypeMySql: {
		Type:      constants.ConnectionTypeMySql,
		quoteOpen: "`", quoteClose: "`",
		bindFn: func(n int) string { return "?" },
		discoverySql: `SELECT TABLE_SCHEMA, TABLE_NAME FROM INFORMATION_SCHEMA.TABLES ` +
			`WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_SCHEMA = <BIND1>`,
	},
	constants.ConnectionTypeSnowflake: {
		Type:      constants.ConnectionTypeSnowflake,
		quoteOpen: `"`, quoteClose: `"`,
		bindFn: func(n int) string { return fmt.Sprintf(":%v", n) },
		discoverySql: `SELECT TABLE_SCHEMA, TABLE_NAME FROM <DATABASE>.INFORMATION_SCHEMA.TABLES ` +
			`WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = <BIND1>`,
		qualifyByDatabase: true,
	},
}

// GetDialect returns the Dialect for the connection type.
func GetDialect(connectionType string) (Dialect, error) {
	d, ok := dialects[connectionType]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database type for SQL generation, %q", connectionType)
	}
	return d, nil
}

// QuoteIdentifier wraps s in the dialect's quotes, escaping any closing quote by doubling it.
func (d Dialect) QuoteIdentifier(s string) string {
	return d.quoteOpen + strings.ReplaceAll(s, d.quoteClose, d.quoteClose+d.quoteClose) + d.quoteClose
}

// QuoteIdentifiers quotes every value in s.
func (d Dialect) QuoteIdentifiers(s []string) []string {
	retval := make([]string, len(s))
	for i, v := range s {
		retval[i] = d.QuoteIdentifier(v)
	}
	return retval
}

// Bind returns the n'th (1-based) bind variable placeholder.
func (d Dialect) Bind(n int) string {
	return d.bindFn(n)
}

// QualifiedName returns the quoted name of st.
// The database is left out for dialects that can't reference other databases.
func (d Dialect) QualifiedName(st SchemaTable) string {
	parts := make([]string, 0, 3)
	if d.qualifyByDatabase && st.Database != "" {
		parts = append(parts, d.QuoteIdentifier(st.Database))
	}
	if st.Schema != "" {
		parts = append(parts, d.QuoteIdentifier(st.Schema))
	}
	parts = append(parts, d.QuoteIdentifier(st.Table))
	return strings.Join(parts, ".")
}

// QualifiedSchema returns the quoted database.schema of st.
func (d Dialect) QualifiedSchema(st SchemaTable) string {
	if d.qualifyByDatabase && st.Database != "" {
		return d.QuoteIdentifier(st.Database) + "." + d.QuoteIdentifier(st.Schema)
	}
	return d.QuoteIdentifier(st.Schema)
}

// DiscoverySql returns SQL that lists base tables as (schema, table) for database.
// The database name is expected as the first bind variable.
func (d Dialect) DiscoverySql(database string) string {
	s := strings.Replace(d.discoverySql, "<DATABASE>", d.QuoteIdentifier(database), 1)
	return strings.Replace(s, "<BIND1>", d.Bind(1), 1)
}

// SelectAllSql returns SQL to fetch every row and column of st.
func (d Dialect) SelectAllSql(st SchemaTable) string {
	return fmt.Sprintf("SELECT * FROM %v", d.QualifiedName(st))
}
