package schema

import (
	"context"
	"regexp"
)

var dorisCommentRe = regexp.MustCompile(`(?i)COMMENT='(.*?)'`)

// Doris exposes information_schema over the MySQL protocol but its reflection
// support is partial: table listing goes through SHOW TABLES, and the table
// comment falls back to parsing SHOW CREATE TABLE output.

func (e *Extractor) dorisTables(ctx context.Context) ([]string, error) {
	return e.queryStrings(ctx, `SHOW TABLES`)
}

func (e *Extractor) dorisTableSchema(ctx context.Context, table string) (*TableSchema, error) {
	comment, err := e.queryComment(ctx,
		`SELECT table_comment FROM information_schema.tables
		 WHERE table_schema = ? AND table_name = ?`,
		e.params.Database, table)
	if err != nil {
		return nil, err
	}
	if comment == "" {
		comment = e.dorisCreateStatementComment(ctx, table)
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

// dorisCreateStatementComment parses the COMMENT clause out of SHOW CREATE
// TABLE output. Best effort: any failure returns "".
func (e *Extractor) dorisCreateStatementComment(ctx context.Context, table string) string {
	var name, stmt string
	if err := e.db.QueryRowContext(ctx, `SHOW CREATE TABLE `+quoteMySQLIdent(table)).Scan(&name, &stmt); err != nil {
		return ""
	}
	if m := dorisCommentRe.FindStringSubmatch(stmt); m != nil {
		return m[1]
	}
	return ""
}

// quoteMySQLIdent backtick-quotes an identifier for statements that cannot
// take placeholders (SHOW CREATE TABLE).
func quoteMySQLIdent(ident string) string {
	out := make([]byte, 0, len(ident)+2)
	out = append(out, '`')
	for i := 0; i < len(ident); i++ {
		if ident[i] == '`' {
			out = append(out, '`')
		}
		out = append(out, ident[i])
	}
	return string(append(out, '`'))
}
