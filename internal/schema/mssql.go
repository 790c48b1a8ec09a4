package schema

import "context"

func (e *Extractor) mssqlTables(ctx context.Context) ([]string, error) {
	return e.queryStrings(ctx, `SELECT name FROM sys.tables ORDER BY name`)
}

func (e *Extractor) mssqlTableSchema(ctx context.Context, table string) (*TableSchema, error) {
	comment, err := e.queryComment(ctx,
		`SELECT CAST(EP.value AS nvarchar(500))
		 FROM sys.tables T
		 INNER JOIN sys.extended_properties EP ON T.object_id = EP.major_id
		 WHERE T.name = @p1 AND EP.minor_id = 0 AND EP.name = 'MS_Description'`,
		table)
	if err != nil {
		return nil, err
	}

	columns, err := e.queryColumns(ctx,
		`SELECT c.name,
		        t.name,
		        CAST(ep.value AS nvarchar(500))
		 FROM sys.columns c
		 INNER JOIN sys.tables tb ON tb.object_id = c.object_id
		 INNER JOIN sys.types t ON t.user_type_id = c.user_type_id
		 LEFT JOIN sys.extended_properties ep
		        ON ep.major_id = c.object_id
		       AND ep.minor_id = c.column_id
		       AND ep.name = 'MS_Description'
		 WHERE tb.name = @p1
		 ORDER BY c.column_id`,
		table)
	if err != nil {
		return nil, err
	}

	return &TableSchema{Name: table, Comment: comment, Columns: columns}, nil
}
