package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/knowledge"
)

// DocumentStorage implements interfaces.DocumentStorage using BadgerDB.
type DocumentStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewDocumentStorage creates document storage backed by BadgerDB.
func NewDocumentStorage(db *BadgerDB, logger *common.Logger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a document, replacing any existing document with the same ID.
func (s *DocumentStorage) Upsert(_ context.Context, doc *knowledge.Document) error {
	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to upsert document %s/%s: %w", doc.Collection, doc.Table, err)
	}
	return nil
}

// Get returns the document for one table in a collection, or nil when absent.
func (s *DocumentStorage) Get(_ context.Context, collection, table string) (*knowledge.Document, error) {
	var docs []knowledge.Document
	query := badgerhold.Where("Collection").Eq(collection).Index("Collection").
		And("Table").Eq(table)
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to find document %s/%s: %w", collection, table, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// FindByCollection returns every document in a collection.
func (s *DocumentStorage) FindByCollection(_ context.Context, collection string) ([]knowledge.Document, error) {
	var docs []knowledge.Document
	query := badgerhold.Where("Collection").Eq(collection).Index("Collection")
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to find documents in collection %s: %w", collection, err)
	}
	return docs, nil
}

// DeleteCollection removes every document in a collection and returns how
// many were deleted.
func (s *DocumentStorage) DeleteCollection(ctx context.Context, collection string) (int, error) {
	docs, err := s.FindByCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	query := badgerhold.Where("Collection").Eq(collection).Index("Collection")
	if err := s.db.Store().DeleteMatching(&knowledge.Document{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}

	s.logger.Debug().
		Str("collection", collection).
		Int("documents", len(docs)).
		Msg("collection deleted")

	return len(docs), nil
}

// Collections returns the distinct collection names, sorted.
func (s *DocumentStorage) Collections(_ context.Context) ([]string, error) {
	var docs []knowledge.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, doc := range docs {
		if !seen[doc.Collection] {
			seen[doc.Collection] = true
			names = append(names, doc.Collection)
		}
	}
	sort.Strings(names)
	return names, nil
}
