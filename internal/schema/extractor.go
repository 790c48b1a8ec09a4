package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/datapivot/schemabridge/internal/common"
)

// Extractor introspects one database connection.
type Extractor struct {
	db     *sql.DB
	params ConnectParams
	logger *common.Logger
}

// Open connects to the database described by params and verifies the
// connection with a ping.
func Open(ctx context.Context, params ConnectParams, logger *common.Logger) (*Extractor, error) {
	driver, dsn, err := BuildDSN(params)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", params.Engine, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach %s at %s:%d: %w", params.Engine, params.Host, params.Port, err)
	}

	logger.Debug().
		Str("engine", params.Engine).
		Str("host", params.Host).
		Str("database", params.Database).
		Msg("database connection established")

	return &Extractor{db: db, params: params, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (e *Extractor) Close() error {
	return e.db.Close()
}

// ListTables returns the base table names visible to the connection.
func (e *Extractor) ListTables(ctx context.Context) ([]string, error) {
	switch e.params.Engine {
	case EngineMySQL:
		return e.mysqlTables(ctx)
	case EngineDoris:
		return e.dorisTables(ctx)
	case EnginePostgreSQL:
		return e.postgresTables(ctx)
	case EngineMSSQL:
		return e.mssqlTables(ctx)
	case EngineOracle:
		return e.oracleTables(ctx)
	default:
		return nil, fmt.Errorf("unsupported database engine %q", e.params.Engine)
	}
}

// TableSchema returns the comment and columns of one table.
// An empty table comment falls back to the table name so every exported
// document has a usable title.
func (e *Extractor) TableSchema(ctx context.Context, table string) (*TableSchema, error) {
	var ts *TableSchema
	var err error

	switch e.params.Engine {
	case EngineMySQL:
		ts, err = e.mysqlTableSchema(ctx, table)
	case EngineDoris:
		ts, err = e.dorisTableSchema(ctx, table)
	case EnginePostgreSQL:
		ts, err = e.postgresTableSchema(ctx, table)
	case EngineMSSQL:
		ts, err = e.mssqlTableSchema(ctx, table)
	case EngineOracle:
		ts, err = e.oracleTableSchema(ctx, table)
	default:
		return nil, fmt.Errorf("unsupported database engine %q", e.params.Engine)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to introspect table %s: %w", table, err)
	}

	if ts.Comment == "" {
		ts.Comment = ts.Name
	}
	for i := range ts.Columns {
		ts.Columns[i].Comment = strings.ReplaceAll(ts.Columns[i].Comment, "\n", "")
	}
	return ts, nil
}

// AllTableSchemas introspects every table, or only those named in the
// comma-separated filter. Filter entries missing from the database are
// skipped silently.
func (e *Extractor) AllTableSchemas(ctx context.Context, tableNames string) ([]*TableSchema, error) {
	all, err := e.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	targets := FilterTables(all, tableNames)

	schemas := make([]*TableSchema, 0, len(targets))
	for _, table := range targets {
		ts, err := e.TableSchema(ctx, table)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, ts)
	}
	return schemas, nil
}

// FilterTables intersects the actual table list with a comma-separated filter.
// An empty filter keeps everything.
func FilterTables(all []string, tableNames string) []string {
	if strings.TrimSpace(tableNames) == "" {
		return all
	}

	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t] = true
	}

	var targets []string
	for _, raw := range strings.Split(tableNames, ",") {
		name := strings.TrimSpace(raw)
		if name != "" && known[name] {
			targets = append(targets, name)
		}
	}
	return targets
}

// queryStrings runs a query expected to return a single string column.
func (e *Extractor) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// queryComment runs a query expected to return a single nullable string.
// Missing rows and NULLs both come back as "".
func (e *Extractor) queryComment(ctx context.Context, query string, args ...interface{}) (string, error) {
	var comment sql.NullString
	err := e.db.QueryRowContext(ctx, query, args...).Scan(&comment)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return comment.String, nil
}

// queryColumns runs a query expected to return (name, type, nullable comment) rows.
func (e *Extractor) queryColumns(ctx context.Context, query string, args ...interface{}) ([]Column, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, typ string
		var comment sql.NullString
		if err := rows.Scan(&name, &typ, &comment); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: typ, Comment: comment.String})
	}
	return cols, rows.Err()
}
