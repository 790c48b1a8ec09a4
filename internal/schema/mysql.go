package schema

import "context"

func (e *Extractor) mysqlTables(ctx context.Context) ([]string, error) {
	return e.queryStrings(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = ? AND table_type = 'BASE TABLE'
		 ORDER BY table_name`,
		e.params.Database)
}

func (e *Extractor) mysqlTableSchema(ctx context.Context, table string) (*TableSchema, error) {
	comment, err := e.queryComment(ctx,
		`SELECT table_comment FROM information_schema.tables
		 WHERE table_schema = ? AND table_name = ?`,
		e.params.Database, table)
	if err != nil {
		return nil, err
	}

	columns, err := e.queryColumns(ctx,
		`SELECT column_name, column_type, column_comment
		 FROM information_schema.columns
		 WHERE table_schema = ? AND table_name = ?
		 ORDER BY ordinal_position`,
		e.params.Database, table)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: table, Comment: comment, Columns: columns}, nil
}
