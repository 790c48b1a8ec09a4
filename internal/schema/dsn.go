package schema

import (
	"fmt"
	"net/url"

	// Registered database/sql drivers for the supported engines.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"
)

// BuildDSN maps connect parameters onto a registered driver name and its DSN.
// Doris reuses the mysql driver.
func BuildDSN(p ConnectParams) (driver string, dsn string, err error) {
	props, err := url.ParseQuery(p.Properties)
	if err != nil {
		return "", "", fmt.Errorf("invalid connection properties %q: %w", p.Properties, err)
	}

	switch p.Engine {
	case EngineMySQL, EngineDoris:
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", p.Username, p.Password, p.Host, p.Port, p.Database)
		if enc := props.Encode(); enc != "" {
			dsn += "?" + enc
		}
		return "mysql", dsn, nil

	case EnginePostgreSQL:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
			Path:     "/" + p.Database,
			RawQuery: props.Encode(),
		}
		return "pgx", u.String(), nil

	case EngineMSSQL:
		props.Set("database", p.Database)
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
			RawQuery: props.Encode(),
		}
		return "sqlserver", u.String(), nil

	case EngineOracle:
		u := url.URL{
			Scheme:   "oracle",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
			Path:     "/" + p.Database,
			RawQuery: props.Encode(),
		}
		return "oracle", u.String(), nil

	default:
		return "", "", fmt.Errorf("unsupported database engine %q", p.Engine)
	}
}
