package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/datapivot/schemabridge/internal/cache"
	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/interfaces"
	"github.com/datapivot/schemabridge/internal/knowledge"
	"github.com/datapivot/schemabridge/internal/manifest"
	"github.com/datapivot/schemabridge/internal/platform"
	"github.com/datapivot/schemabridge/internal/schema"
)

// SchemaSource is the slice of the extractor the export handler needs.
// Swappable so tests can run without a live database.
type SchemaSource interface {
	AllTableSchemas(ctx context.Context, tableNames string) ([]*schema.TableSchema, error)
	Close() error
}

// OpenSourceFunc opens a schema source for the given connection parameters.
type OpenSourceFunc func(ctx context.Context, params schema.ConnectParams) (SchemaSource, error)

// Deps carries everything the tool handlers need.
type Deps struct {
	Logger     *common.Logger
	Documents  interfaces.DocumentStorage
	KV         interfaces.KeyValueStorage
	Embedder   platform.Embedder
	Reranker   platform.Reranker
	Cache      *cache.EmbeddingCache
	Defaults   map[string]string
	OpenSource OpenSourceFunc
}

// ExportHandler returns the handler behind schema_export: introspect the
// database, render one document per table, embed, and upsert into the
// knowledge collection.
func ExportHandler(deps *Deps, m *manifest.Manifest) server.ToolHandlerFunc {
	rv := NewResolver(m, deps.Defaults)

	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := resolveConnectParams(rv, r)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		collection, err := rv.String(r, "collection")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		embeddingModel, err := rv.String(r, "embedding_model")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		tableNames, err := rv.String(r, "table_names")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		src, err := deps.OpenSource(ctx, params)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		defer src.Close()

		schemas, err := src.AllTableSchemas(ctx, tableNames)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		ingestor := knowledge.NewIngestor(deps.Documents, deps.Embedder, deps.Cache, deps.Logger)
		report, err := ingestor.Ingest(ctx, collection, schemas, embeddingModel)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		// Record the export cursor; a failure here does not fail the export.
		if err := deps.KV.RecordExport(ctx, collection, time.Now().UTC()); err != nil {
			deps.Logger.Warn().Err(err).Str("collection", collection).Msg("failed to record export cursor")
		}

		return jsonResult(report)
	}
}

// SearchHandler returns the handler behind schema_search: embed the query and
// rank the collection's documents, optionally reranked.
func SearchHandler(deps *Deps, m *manifest.Manifest) server.ToolHandlerFunc {
	rv := NewResolver(m, deps.Defaults)

	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		collection, err := rv.String(r, "collection")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		query, err := rv.String(r, "query")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		topK, err := rv.Int(r, "top_k")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		embeddingModel, err := rv.String(r, "embedding_model")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		rerankModel, err := rv.String(r, "rerank_model")
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		searcher := knowledge.NewSearcher(deps.Documents, deps.Embedder, deps.Reranker, deps.Logger)
		results, err := searcher.Search(ctx, collection, query, topK, embeddingModel, rerankModel)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"collection": collection,
			"query":      query,
			"results":    results,
		})
	}
}

// resolveConnectParams resolves the database connection parameters shared by
// export-style tools.
func resolveConnectParams(rv *Resolver, r mcp.CallToolRequest) (schema.ConnectParams, error) {
	var params schema.ConnectParams
	var err error

	if params.Engine, err = rv.String(r, "db_type"); err != nil {
		return params, err
	}
	if params.Host, err = rv.String(r, "host"); err != nil {
		return params, err
	}
	if params.Port, err = rv.Int(r, "port"); err != nil {
		return params, err
	}
	if params.Username, err = rv.String(r, "username"); err != nil {
		return params, err
	}
	if params.Password, err = rv.String(r, "password"); err != nil {
		return params, err
	}
	if params.Database, err = rv.String(r, "database"); err != nil {
		return params, err
	}
	if params.Properties, err = rv.String(r, "properties"); err != nil {
		return params, err
	}

	return params, nil
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into an MCP text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: failed to marshal result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}, nil
}
