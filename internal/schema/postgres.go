package schema

import "context"

func (e *Extractor) postgresTables(ctx context.Context) ([]string, error) {
	return e.queryStrings(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
}

func (e *Extractor) postgresTableSchema(ctx context.Context, table string) (*TableSchema, error) {
	comment, err := e.queryComment(ctx,
		`SELECT obj_description(quote_ident($1)::regclass, 'pg_class')`, table)
	if err != nil {
		return nil, err
	}

	// pg_attribute keeps declaration order; attnum > 0 excludes system columns.
	columns, err := e.queryColumns(ctx,
		`SELECT a.attname,
		        format_type(a.atttypid, a.atttypmod),
		        col_description(a.attrelid, a.attnum)
		 FROM pg_attribute a
		 WHERE a.attrelid = quote_ident($1)::regclass
		   AND a.attnum > 0
		   AND NOT a.attisdropped
		 ORDER BY a.attnum`, table)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: table, Comment: comment, Columns: columns}, nil
}
