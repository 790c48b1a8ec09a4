// Package app wires configuration, storage, the platform client, and the
// HTTP/MCP handlers into one application instance.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/datapivot/schemabridge/internal/cache"
	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/config"
	"github.com/datapivot/schemabridge/internal/handlers"
	"github.com/datapivot/schemabridge/internal/interfaces"
	"github.com/datapivot/schemabridge/internal/manifest"
	"github.com/datapivot/schemabridge/internal/mcp"
	"github.com/datapivot/schemabridge/internal/platform"
	"github.com/datapivot/schemabridge/internal/schema"
	"github.com/datapivot/schemabridge/internal/storage"
)

// Embedding cache bounds. Keyed by model+content hash, so entries only matter
// within one export run and its near-term repeats.
const (
	embeddingCacheTTL     = 24 * time.Hour
	embeddingCacheEntries = 4096
)

// App holds all application components and dependencies.
type App struct {
	Config    *config.Config
	Logger    *common.Logger
	Storage   interfaces.StorageManager
	Platform  *platform.Client
	Manifests []*manifest.Manifest

	// HTTP handlers
	HealthHandler      *handlers.HealthHandler
	VersionHandler     *handlers.VersionHandler
	CollectionsHandler *handlers.CollectionsHandler
	MCPHandler         *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = storageManager

	a.Platform = platform.NewClient(cfg.Platform.URL, cfg.Platform.APIKey, cfg.Platform.GetTimeout(), logger)

	loaded, err := manifest.LoadDir(cfg.Manifest.Dir)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	a.Manifests = manifest.FilterValid(loaded, logger)
	if len(a.Manifests) == 0 {
		logger.Warn().Str("dir", cfg.Manifest.Dir).Msg("no valid manifests found")
	}

	a.initHandlers()

	logger.Info().
		Int("manifests", len(a.Manifests)).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	deps := &mcp.Deps{
		Logger:     a.Logger,
		Documents:  a.Storage.DocumentStorage(),
		KV:         a.Storage.KeyValueStorage(),
		Embedder:   a.Platform,
		Reranker:   a.Platform,
		Cache:      cache.New(embeddingCacheTTL, embeddingCacheEntries),
		Defaults:   a.Config.Manifest.Defaults,
		OpenSource: openExtractor(a.Logger),
	}

	a.MCPHandler = mcp.NewHandler(deps, a.Manifests, a.Config.Auth.APIKey, a.Logger)

	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.CollectionsHandler = handlers.NewCollectionsHandler(
		a.Logger,
		a.Storage.DocumentStorage(),
		a.Storage.KeyValueStorage(),
	)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// openExtractor adapts the database extractor to the handler's source interface.
func openExtractor(logger *common.Logger) mcp.OpenSourceFunc {
	return func(ctx context.Context, params schema.ConnectParams) (mcp.SchemaSource, error) {
		return schema.Open(ctx, params, logger)
	}
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
