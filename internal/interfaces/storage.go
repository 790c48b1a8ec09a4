package interfaces

import (
	"context"
	"time"

	"github.com/datapivot/schemabridge/internal/knowledge"
)

// StorageManager provides access to domain-specific storage interfaces.
// Implementations can be swapped (BadgerDB now, centralised DB later).
type StorageManager interface {
	DocumentStorage() DocumentStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}

// DocumentStorage persists knowledge documents grouped into collections.
type DocumentStorage interface {
	Upsert(ctx context.Context, doc *knowledge.Document) error
	Get(ctx context.Context, collection, table string) (*knowledge.Document, error)
	FindByCollection(ctx context.Context, collection string) ([]knowledge.Document, error)
	DeleteCollection(ctx context.Context, collection string) (int, error)
	Collections(ctx context.Context) ([]string, error)
}

// KeyValueStorage provides basic key-value operations plus the typed export
// cursors recording when each collection was last exported.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)

	RecordExport(ctx context.Context, collection string, at time.Time) error
	LastExport(ctx context.Context, collection string) (time.Time, bool, error)
	ClearExport(ctx context.Context, collection string) error
}
