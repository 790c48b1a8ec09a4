package integration

import (
	"context"
	"testing"
	"time"

	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/schema"
	testcommon "github.com/datapivot/schemabridge/tests/common"
)

func TestPostgresExtractor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	params := testcommon.StartPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	execAll(t, ctx, params,
		`CREATE TABLE invoices (
			id BIGSERIAL PRIMARY KEY,
			amount NUMERIC(12,2) NOT NULL,
			issued_at TIMESTAMPTZ
		)`,
		`COMMENT ON TABLE invoices IS 'issued customer invoices'`,
		`COMMENT ON COLUMN invoices.amount IS 'gross amount'`,
		`CREATE TABLE audit_log (
			id BIGSERIAL PRIMARY KEY,
			entry TEXT
		)`,
		`CREATE VIEW open_invoices AS SELECT * FROM invoices`,
	)

	ex, err := schema.Open(ctx, params, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to open extractor: %v", err)
	}
	defer ex.Close()

	// Views are excluded from the table list.
	tables, err := ex.ListTables(ctx)
	if err != nil {
		t.Fatalf("failed to list tables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "audit_log" || tables[1] != "invoices" {
		t.Fatalf("expected [audit_log invoices], got %v", tables)
	}

	ts, err := ex.TableSchema(ctx, "invoices")
	if err != nil {
		t.Fatalf("failed to introspect invoices: %v", err)
	}
	if ts.Comment != "issued customer invoices" {
		t.Errorf("expected table comment, got %q", ts.Comment)
	}
	if len(ts.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(ts.Columns))
	}
	if ts.Columns[0].Name != "id" || ts.Columns[0].Type != "bigint" {
		t.Errorf("unexpected first column: %+v", ts.Columns[0])
	}
	if ts.Columns[1].Name != "amount" || ts.Columns[1].Comment != "gross amount" {
		t.Errorf("unexpected amount column: %+v", ts.Columns[1])
	}
	if ts.Columns[1].Type != "numeric(12,2)" {
		t.Errorf("expected typmod in column type, got %q", ts.Columns[1].Type)
	}
	if ts.Columns[2].Comment != "" {
		t.Errorf("expected empty column comment, got %q", ts.Columns[2].Comment)
	}

	ts, err = ex.TableSchema(ctx, "audit_log")
	if err != nil {
		t.Fatalf("failed to introspect audit_log: %v", err)
	}
	if ts.Comment != "audit_log" {
		t.Errorf("expected comment fallback to table name, got %q", ts.Comment)
	}
}
