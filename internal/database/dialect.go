package database

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// Supported driver names
const (
	DriverSQLServer = "sqlserver"
	DriverPgx       = "pgx"
	DriverPostgres  = "postgres"
)

const defaultSQLServerSchema = "dbo"

// Dialect renders routine invocations for one driver. Statements are written
// with '?' placeholders and rebound to the driver's bind style, so argument
// values never become part of the SQL text.
type Dialect struct {
	driver string
	schema string
}

// NewDialect creates a dialect; SQL Server routines default to the dbo schema
func NewDialect(driver, schema string) Dialect {
	if schema == "" && driver == DriverSQLServer {
		schema = defaultSQLServerSchema
	}
	return Dialect{driver: driver, schema: schema}
}

// Driver returns the database/sql driver name
func (d Dialect) Driver() string {
	return d.driver
}

// Rebind converts '?' placeholders to the driver's bind style
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(d.driver), query)
}

// CallProcedure renders a stored procedure call with argc bound parameters
func (d Dialect) CallProcedure(name string, argc int) string {
	if d.driver == DriverSQLServer {
		query := "EXEC " + d.qualify(name)
		if argc > 0 {
			query += " " + placeholders(argc)
		}
		return d.Rebind(query)
	}

	return d.Rebind("CALL " + d.qualify(name) + "(" + placeholders(argc) + ")")
}

// SelectScalar renders a scalar function call returning one column named alias
func (d Dialect) SelectScalar(name, alias string, argc int) string {
	return d.Rebind("SELECT " + d.qualify(name) + "(" + placeholders(argc) + ") AS " + alias)
}

// SelectFromFunction renders a select over a table-valued function
func (d Dialect) SelectFromFunction(name string, argc int) string {
	return d.Rebind("SELECT * FROM " + d.qualify(name) + "(" + placeholders(argc) + ")")
}

func (d Dialect) qualify(name string) string {
	if d.schema == "" {
		return name
	}
	return d.schema + "." + name
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
