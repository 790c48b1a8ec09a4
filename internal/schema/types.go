// Package schema introspects relational databases: table lists, table and
// column comments, and column types, across the five supported engines.
package schema

// Supported engine identifiers. Doris speaks the MySQL wire protocol and is
// driven through the mysql driver with its own introspection queries.
const (
	EngineMySQL      = "mysql"
	EnginePostgreSQL = "postgresql"
	EngineOracle     = "oracle"
	EngineMSSQL      = "mssql"
	EngineDoris      = "doris"
)

// ConnectParams carries everything needed to reach a database.
// Properties is an optional URL-encoded query string of driver options.
type ConnectParams struct {
	Engine     string
	Host       string
	Port       int
	Username   string
	Password   string
	Database   string
	Properties string
}

// Column describes one column of a table.
type Column struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Comment string `json:"comment"`
}

// TableSchema describes one table: its comment and ordered columns.
type TableSchema struct {
	Name    string   `json:"table_name"`
	Comment string   `json:"comment"`
	Columns []Column `json:"columns"`
}
