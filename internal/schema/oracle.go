package schema

import (
	"context"
	"strings"
)

// Oracle folds unquoted identifiers to upper case, so lookups try both the
// name as given and its upper-case form, owned by the connecting user.

func (e *Extractor) oracleTables(ctx context.Context) ([]string, error) {
	return e.queryStrings(ctx,
		`SELECT TABLE_NAME FROM ALL_TABLES WHERE OWNER = :1 ORDER BY TABLE_NAME`,
		strings.ToUpper(e.params.Username))
}

func (e *Extractor) oracleTableSchema(ctx context.Context, table string) (*TableSchema, error) {
	owner := strings.ToUpper(e.params.Username)

	comment, err := e.queryComment(ctx,
		`SELECT COMMENTS FROM ALL_TAB_COMMENTS
		 WHERE OWNER = :1 AND TABLE_NAME IN (:2, :3)`,
		owner, table, strings.ToUpper(table))
	if err != nil {
		return nil, err
	}

	columns, err := e.queryColumns(ctx,
		`SELECT a.COLUMN_NAME,
		        a.DATA_TYPE,
		        b.COMMENTS
		 FROM ALL_TAB_COLUMNS a
		 LEFT JOIN ALL_COL_COMMENTS b
		        ON a.OWNER = b.OWNER
		       AND a.TABLE_NAME = b.TABLE_NAME
		       AND a.COLUMN_NAME = b.COLUMN_NAME
		 WHERE a.OWNER = :1
		   AND a.TABLE_NAME IN (:2, :3)
		 ORDER BY a.COLUMN_ID`,
		owner, table, strings.ToUpper(table))
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: table, Comment: comment, Columns: columns}, nil
}
