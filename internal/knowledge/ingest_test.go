package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/datapivot/schemabridge/internal/cache"
	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/platform"
	"github.com/datapivot/schemabridge/internal/schema"
)

// memStore is an in-memory DocumentStore for tests.
type memStore struct {
	docs map[string]*Document // key: collection/table
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]*Document)}
}

func (s *memStore) Upsert(_ context.Context, doc *Document) error {
	copied := *doc
	s.docs[doc.Collection+"/"+doc.Table] = &copied
	return nil
}

func (s *memStore) Get(_ context.Context, collection, table string) (*Document, error) {
	doc, ok := s.docs[collection+"/"+table]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *memStore) FindByCollection(_ context.Context, collection string) ([]Document, error) {
	var out []Document
	for _, doc := range s.docs {
		if doc.Collection == collection {
			out = append(out, *doc)
		}
	}
	return out, nil
}

// fakeEmbedder returns fixed vectors and counts calls.
type fakeEmbedder struct {
	vector []float32
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func testSchemas() []*schema.TableSchema {
	return []*schema.TableSchema{
		{Name: "orders", Comment: "orders", Columns: []schema.Column{{Name: "id", Type: "bigint"}}},
		{Name: "customers", Comment: "customers", Columns: []schema.Column{{Name: "id", Type: "bigint"}}},
	}
}

func TestIngest_WritesDocuments(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	ing := NewIngestor(store, embedder, nil, common.NewSilentLogger())

	report, err := ing.Ingest(context.Background(), "sales", testSchemas(), "embed-1")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if report.Written != 2 || report.Skipped != 0 || report.Tables != 2 {
		t.Errorf("unexpected report: %+v", report)
	}

	doc, _ := store.Get(context.Background(), "sales", "orders")
	if doc == nil {
		t.Fatal("orders document not stored")
	}
	if doc.ID == "" || doc.Hash == "" || len(doc.Vector) != 2 {
		t.Errorf("incomplete document: %+v", doc)
	}
	if doc.UpdatedAt.IsZero() || time.Since(doc.UpdatedAt) > time.Minute {
		t.Errorf("unexpected UpdatedAt: %v", doc.UpdatedAt)
	}
}

func TestIngest_SkipsUnchanged(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{vector: []float32{1}}
	ing := NewIngestor(store, embedder, nil, common.NewSilentLogger())
	ctx := context.Background()

	if _, err := ing.Ingest(ctx, "sales", testSchemas(), "embed-1"); err != nil {
		t.Fatal(err)
	}
	firstCalls := embedder.calls

	report, err := ing.Ingest(ctx, "sales", testSchemas(), "embed-1")
	if err != nil {
		t.Fatal(err)
	}

	if report.Written != 0 || report.Skipped != 2 {
		t.Errorf("unchanged schemas should be skipped: %+v", report)
	}
	if embedder.calls != firstCalls {
		t.Errorf("no embedding calls expected for skipped documents, got %d extra", embedder.calls-firstCalls)
	}
}

func TestIngest_UpdatedSchemaKeepsDocumentID(t *testing.T) {
	store := newMemStore()
	embedder := &fakeEmbedder{vector: []float32{1}}
	ing := NewIngestor(store, embedder, nil, common.NewSilentLogger())
	ctx := context.Background()

	schemas := testSchemas()
	if _, err := ing.Ingest(ctx, "sales", schemas, "embed-1"); err != nil {
		t.Fatal(err)
	}
	before, _ := store.Get(ctx, "sales", "orders")

	schemas[0].Columns = append(schemas[0].Columns, schema.Column{Name: "total", Type: "decimal(10,2)"})
	report, err := ing.Ingest(ctx, "sales", schemas, "embed-1")
	if err != nil {
		t.Fatal(err)
	}
	if report.Written != 1 || report.Skipped != 1 {
		t.Errorf("expected 1 rewrite and 1 skip: %+v", report)
	}

	after, _ := store.Get(ctx, "sales", "orders")
	if after.ID != before.ID {
		t.Error("rewriting a changed table must keep the document ID")
	}
	if after.Hash == before.Hash {
		t.Error("hash should change with the schema")
	}
}

func TestIngest_UsesEmbeddingCache(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	c := cache.New(time.Minute, 100)
	ctx := context.Background()

	// Two ingestors sharing the cache but not the store: the second run hits
	// the cache instead of the embedder.
	ingA := NewIngestor(newMemStore(), embedder, c, common.NewSilentLogger())
	if _, err := ingA.Ingest(ctx, "sales", testSchemas(), "embed-1"); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := embedder.calls

	ingB := NewIngestor(newMemStore(), embedder, c, common.NewSilentLogger())
	if _, err := ingB.Ingest(ctx, "sales", testSchemas(), "embed-1"); err != nil {
		t.Fatal(err)
	}

	if embedder.calls != callsAfterFirst {
		t.Errorf("cached vectors should avoid embedding calls, got %d extra", embedder.calls-callsAfterFirst)
	}
}

var _ platform.Embedder = (*fakeEmbedder)(nil)
