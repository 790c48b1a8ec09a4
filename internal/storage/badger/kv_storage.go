package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/datapivot/schemabridge/internal/common"
)

// exportCursorPrefix namespaces the per-collection export cursor keys.
const exportCursorPrefix = "export:last:"

// KVEntry is one stored key-value pair.
type KVEntry struct {
	Key   string `badgerhold:"key"`
	Value string
}

// KVStorage implements interfaces.KeyValueStorage on badgerhold: generic
// string pairs plus the typed export cursors.
type KVStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewKVStorage creates a key-value storage over an open BadgerDB.
func NewKVStorage(db *BadgerDB, logger *common.Logger) *KVStorage {
	return &KVStorage{db: db, logger: logger}
}

// Get retrieves a value by key. A missing key is an error.
func (s *KVStorage) Get(_ context.Context, key string) (string, error) {
	var entry KVEntry
	if err := s.db.Store().Get(key, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", fmt.Errorf("key not found: %s", key)
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set stores a key-value pair, replacing any existing value.
func (s *KVStorage) Set(_ context.Context, key, value string) error {
	if err := s.db.Store().Upsert(key, &KVEntry{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is a no-op.
func (s *KVStorage) Delete(_ context.Context, key string) error {
	if err := s.db.Store().Delete(key, KVEntry{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// GetAll retrieves every stored key-value pair.
func (s *KVStorage) GetAll(_ context.Context) (map[string]string, error) {
	var entries []KVEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	result := make(map[string]string, len(entries))
	for _, entry := range entries {
		result[entry.Key] = entry.Value
	}
	return result, nil
}

// RecordExport stores the export cursor for a collection.
func (s *KVStorage) RecordExport(ctx context.Context, collection string, at time.Time) error {
	return s.Set(ctx, exportCursorPrefix+collection, at.UTC().Format(time.RFC3339))
}

// LastExport returns the export cursor for a collection. Missing and
// unparseable cursors both report absent.
func (s *KVStorage) LastExport(_ context.Context, collection string) (time.Time, bool, error) {
	var entry KVEntry
	err := s.db.Store().Get(exportCursorPrefix+collection, &entry)
	if err == badgerhold.ErrNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read export cursor for %s: %w", collection, err)
	}

	at, err := time.Parse(time.RFC3339, entry.Value)
	if err != nil {
		s.logger.Warn().Str("collection", collection).Str("cursor", entry.Value).Msg("discarding malformed export cursor")
		return time.Time{}, false, nil
	}
	return at, true, nil
}

// ClearExport removes a collection's export cursor.
func (s *KVStorage) ClearExport(ctx context.Context, collection string) error {
	return s.Delete(ctx, exportCursorPrefix+collection)
}
