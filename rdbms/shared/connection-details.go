package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/tablesync/constants"
	"github.com/xo/dburl"
)

// ConnectionDetails is intended to hold credentials for a logical database connection.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"database type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"database logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data[DefaultDsnConnectionKeyNames.Dsn]; ok { // if there's a DSN...
		x = append(x, fmt.Sprintf("  dsn = %v", RedactDsn(v)))
	} else { // else there's no DSN... (could be S3 connection)
		keys := make([]string, 0, len(c.Data))
		for k := range c.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := c.Data[k]
			if k == "password" {
				v = "xxxxx"
			}
			x = append(x, fmt.Sprintf("  %v = %v", k, v))
		}
	}
	return strings.Join(x, "\n")
}

// RedactDsn removes the password from dsn.
// Snowflake DSNs are handled explicitly since their format is not a URL.
func RedactDsn(dsn string) string {
	if strings.HasPrefix(dsn, constants.ConnectionTypeSnowflake+"://") {
		s := strings.TrimPrefix(dsn, constants.ConnectionTypeSnowflake+"://")
		at := strings.LastIndex(s, "@")
		colon := strings.Index(s, ":")
		if at > 0 && colon > 0 && colon < at { // if there is a user:password@...
			return fmt.Sprintf("%v://%v:xxxxx%v", constants.ConnectionTypeSnowflake, s[:colon], s[at:])
		}
		return dsn
	}
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "<unparsable DSN>"
	}
	return u.Redacted()
}

// ConnectionTypeFromDsn returns the connection type implied by the scheme of dsn.
// The full scheme is kept for ODBC connections e.g. odbc+sqlserver.
func ConnectionTypeFromDsn(dsn string) (string, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok || scheme == "" {
		return "", fmt.Errorf("unable to find a scheme in DSN %q", RedactDsn(dsn))
	}
	scheme = strings.ToLower(scheme)
	switch scheme {
	case "mssql", "sqlserver", "ms":
		return constants.ConnectionTypeSqlServer, nil
	case "postgres", "postgresql", "pg", "pgsql":
		return constants.ConnectionTypePostgres, nil
	case "mysql", "my", "maria", "mariadb":
		return constants.ConnectionTypeMySql, nil
	case "snowflake", "sf":
		return constants.ConnectionTypeSnowflake, nil
	case "s3":
		return constants.ConnectionTypeS3, nil
	case constants.ConnectionTypeOdbcSqlServer:
		return constants.ConnectionTypeOdbcSqlServer, nil
	}
	return "", fmt.Errorf("unsupported DSN scheme %q", scheme)
}
