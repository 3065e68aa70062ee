package shared

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xo/dburl"
)

var DefaultDsnConnectionKeyNames = struct {
	Dsn string
}{
	Dsn: "dsn",
}

// DsnConnectionDetails is a simple struct to hold a DSN only.
type DsnConnectionDetails struct {
	Dsn            string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
	OriginalScheme string
}

// String returns the DSN with redacted password.
func (d DsnConnectionDetails) String() string {
	return RedactDsn(d.Dsn)
}

// Parse validates the DSN and saves its original scheme e.g. odbc+sqlserver.
func (d *DsnConnectionDetails) Parse() error {
	if d.Dsn == "" { // if the Dsn is invalid...
		return errors.New("DSN not found")
	}
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return errors.Wrap(err, "DSN could not be parsed")
	}
	d.OriginalScheme = u.OriginalScheme // save the full connection type e.g. odbc+sqlserver, since pure sqlserver will be using the Go native module.
	return nil
}

func (d *DsnConnectionDetails) GetScheme() (string, error) {
	if d.OriginalScheme == "" {
		if err := d.Parse(); err != nil {
			return "", err
		}
	}
	return d.OriginalScheme, nil
}

// GetDatabase returns the database named in the DSN.
// SQL Server DSNs use the "database" query parameter while Postgres and MySQL use the URL path.
func (d *DsnConnectionDetails) GetDatabase() (string, error) {
	u, err := dburl.Parse(d.Dsn)
	if err != nil {
		return "", errors.Wrap(err, "DSN could not be parsed")
	}
	q := u.Query()
	for _, k := range []string{"database", "Database", "dbname"} {
		if v := q.Get(k); v != "" {
			return v, nil
		}
	}
	// Use the path, ignoring a SQL Server instance name if one exists.
	p := strings.Trim(u.Path, "/")
	if p != "" && !strings.Contains(u.OriginalScheme, "sqlserver") && !strings.Contains(u.OriginalScheme, "mssql") {
		return p, nil
	}
	return "", fmt.Errorf("no database found in DSN %v", d)
}

func (d DsnConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultDsnConnectionKeyNames.Dsn] = d.Dsn
	return m
}

// GetDsnConnectionDetails converts generic ConnectionDetails to DsnConnectionDetails
// and returns a pointer to the new struct.
func GetDsnConnectionDetails(c *ConnectionDetails) *DsnConnectionDetails {
	return &DsnConnectionDetails{
		Dsn:            c.Data[DefaultDsnConnectionKeyNames.Dsn],
		OriginalScheme: c.Type,
	}
}
