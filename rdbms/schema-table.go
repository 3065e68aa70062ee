package rdbms

import (
	"regexp"
	"strings"
)

// SchemaTable names a table, optionally qualified by schema and database.
type SchemaTable struct {
	Database string
	Schema   string
	Table    string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	return SchemaTable{Schema: schema, Table: table}
}

var reQuotedTable = regexp.MustCompile(`^"(.+)"$`)

// ParseSchemaTable converts [<schema>.]<table> into a SchemaTable.
// Quotes are removed and a quoted "random.table" is treated as a single table name.
func ParseSchemaTable(s string) SchemaTable {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && !strings.Contains(s, `"."`) {
		// if the whole value is one quoted name...
		return SchemaTable{Table: unquote(s)}
	}
	sep := strings.Index(s, ".")
	if strings.HasPrefix(s, `"`) { // if the schema is quoted it may contain dots...
		if i := strings.Index(s[1:], `".`); i >= 0 {
			sep = i + 2
		}
	}
	if sep < 0 { // if we have just a table...
		return SchemaTable{Table: unquote(s)}
	}
	return SchemaTable{Schema: unquote(s[:sep]), Table: unquote(s[sep+1:])}
}

func unquote(s string) string {
	if m := reQuotedTable.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// AppendSuffix returns a copy of st with suffix added to the table name.
func (st SchemaTable) AppendSuffix(suffix string) SchemaTable {
	st.Table = st.Table + suffix
	return st
}

func (st SchemaTable) String() string {
	if st.Schema == "" {
		return st.Table
	}
	return st.Schema + "." + st.Table
}
