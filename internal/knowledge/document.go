// Package knowledge turns table schemas into embedded documents inside a
// knowledge collection, and answers similarity queries over them.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/datapivot/schemabridge/internal/schema"
)

// Document is one embedded table-schema document in a knowledge collection.
type Document struct {
	ID         string    `badgerhold:"key"`
	Collection string    `badgerholdIndex:"Collection"`
	Table      string
	Content    string
	Hash       string
	Vector     []float32
	UpdatedAt  time.Time
}

// RenderDocument renders one table schema as a markdown document.
// Layout is stable so the content hash only changes when the schema does.
func RenderDocument(ts *schema.TableSchema) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Table: %s\n\n", ts.Name)
	if ts.Comment != "" && ts.Comment != ts.Name {
		fmt.Fprintf(&b, "%s\n\n", ts.Comment)
	}

	b.WriteString("| Column | Type | Comment |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, col := range ts.Columns {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", col.Name, col.Type, escapeCell(col.Comment))
	}

	return b.String()
}

// ContentHash returns the hex SHA-256 of a document's content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// escapeCell keeps pipe characters from breaking the markdown table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
