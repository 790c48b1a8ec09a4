package badger

import (
	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/config"
	"github.com/datapivot/schemabridge/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger.
type Manager struct {
	db        *BadgerDB
	documents interfaces.DocumentStorage
	kv        interfaces.KeyValueStorage
	logger    *common.Logger
}

// NewManager creates a new Badger storage manager.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		documents: NewDocumentStorage(db, logger),
		kv:        NewKVStorage(db, logger),
		logger:    logger,
	}

	logger.Debug().Msg("Badger storage manager initialized")

	return manager, nil
}

// DocumentStorage returns the document storage interface.
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documents
}

// KeyValueStorage returns the KeyValue storage interface.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
