package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datapivot/schemabridge/internal/cache"
	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/platform"
	"github.com/datapivot/schemabridge/internal/schema"
)

// DocumentStore is the slice of storage the ingestor and searcher need.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *Document) error
	Get(ctx context.Context, collection, table string) (*Document, error)
	FindByCollection(ctx context.Context, collection string) ([]Document, error)
}

// IngestReport summarises one export run.
type IngestReport struct {
	Collection string `json:"collection"`
	Written    int    `json:"written"`
	Skipped    int    `json:"skipped"`
	Tables     int    `json:"tables"`
}

// Ingestor writes table-schema documents into a knowledge collection.
type Ingestor struct {
	store    DocumentStore
	embedder platform.Embedder
	cache    *cache.EmbeddingCache
	logger   *common.Logger
}

// NewIngestor creates an ingestor. The embedding cache is optional.
func NewIngestor(store DocumentStore, embedder platform.Embedder, c *cache.EmbeddingCache, logger *common.Logger) *Ingestor {
	return &Ingestor{store: store, embedder: embedder, cache: c, logger: logger}
}

// Ingest renders, embeds, and upserts one document per table schema.
// Documents whose content hash matches the stored copy are skipped without an
// embedding call.
func (ing *Ingestor) Ingest(ctx context.Context, collection string, schemas []*schema.TableSchema, embeddingModel string) (*IngestReport, error) {
	report := &IngestReport{Collection: collection, Tables: len(schemas)}

	for _, ts := range schemas {
		content := RenderDocument(ts)
		hash := ContentHash(content)

		existing, err := ing.store.Get(ctx, collection, ts.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing document for %s: %w", ts.Name, err)
		}
		if existing != nil && existing.Hash == hash {
			report.Skipped++
			continue
		}

		vector, err := ing.embed(ctx, embeddingModel, content, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to embed schema for %s: %w", ts.Name, err)
		}

		doc := &Document{
			ID:         uuid.New().String(),
			Collection: collection,
			Table:      ts.Name,
			Content:    content,
			Hash:       hash,
			Vector:     vector,
			UpdatedAt:  time.Now().UTC(),
		}
		if existing != nil {
			doc.ID = existing.ID
		}

		if err := ing.store.Upsert(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to store document for %s: %w", ts.Name, err)
		}
		report.Written++

		ing.logger.Debug().
			Str("collection", collection).
			Str("table", ts.Name).
			Msg("schema document written")
	}

	ing.logger.Info().
		Str("collection", collection).
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Msg("schema export complete")

	return report, nil
}

// embed returns the vector for content, consulting the cache first.
func (ing *Ingestor) embed(ctx context.Context, model, content, hash string) ([]float32, error) {
	key := cache.MakeKey(model, hash)
	if ing.cache != nil {
		if vec, ok := ing.cache.Get(key); ok {
			return vec, nil
		}
	}

	vectors, err := ing.embedder.Embed(ctx, model, []string{content})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 vector, got %d", len(vectors))
	}

	if ing.cache != nil {
		ing.cache.Set(key, vectors[0])
	}
	return vectors[0], nil
}
