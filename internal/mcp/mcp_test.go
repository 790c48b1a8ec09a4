package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/knowledge"
	"github.com/datapivot/schemabridge/internal/manifest"
	"github.com/datapivot/schemabridge/internal/platform"
	"github.com/datapivot/schemabridge/internal/schema"
)

// --- Helpers ---

func strptr(s string) *string { return &s }
func f64ptr(f float64) *float64 { return &f }

// exportManifest builds the schema_export manifest used across tests.
func exportManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Identity: manifest.Identity{
			Name:   "schema_export",
			Author: "datapivot",
			Label:  map[string]string{manifest.DefaultLocale: "Export Database Schema"},
		},
		Description: manifest.Description{
			Human: map[string]string{manifest.DefaultLocale: "Export table schemas into a knowledge collection."},
			LLM:   "Extract table metadata and store one document per table.",
		},
		Extra: &manifest.Extra{Python: manifest.PythonExtra{Source: "tools/schema_export.py"}},
		Parameters: []manifest.Parameter{
			{Name: "db_type", Type: manifest.TypeSelect, Required: true, Form: manifest.FormForm,
				Options: []manifest.Option{
					{Value: "mysql"}, {Value: "postgresql"}, {Value: "oracle"}, {Value: "mssql"}, {Value: "doris"},
				}},
			{Name: "host", Type: manifest.TypeString, Required: true, Form: manifest.FormForm},
			{Name: "port", Type: manifest.TypeNumber, Required: true, Form: manifest.FormForm,
				Min: f64ptr(1), Max: f64ptr(65535)},
			{Name: "username", Type: manifest.TypeString, Required: true, Form: manifest.FormForm},
			{Name: "password", Type: manifest.TypeSecretInput, Required: true, Form: manifest.FormForm},
			{Name: "database", Type: manifest.TypeString, Required: true, Form: manifest.FormForm},
			{Name: "properties", Type: manifest.TypeString, Required: false, Form: manifest.FormForm},
			{Name: "table_names", Type: manifest.TypeString, Required: false, Form: manifest.FormLLM,
				LLMDescription: "Comma-separated list of tables to export."},
			{Name: "collection", Type: manifest.TypeString, Required: true, Form: manifest.FormLLM,
				LLMDescription: "Knowledge collection to write into."},
			{Name: "embedding_model", Type: manifest.TypeModelSelector, Required: true, Form: manifest.FormForm,
				Scope: "text-embedding"},
		},
	}
}

// searchManifest builds the schema_search manifest used across tests.
func searchManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Identity: manifest.Identity{
			Name:   "schema_search",
			Author: "datapivot",
			Label:  map[string]string{manifest.DefaultLocale: "Search Schema Knowledge"},
		},
		Description: manifest.Description{
			LLM: "Search a knowledge collection of exported table schemas.",
		},
		Parameters: []manifest.Parameter{
			{Name: "collection", Type: manifest.TypeString, Required: true, Form: manifest.FormLLM},
			{Name: "query", Type: manifest.TypeString, Required: true, Form: manifest.FormLLM},
			{Name: "top_k", Type: manifest.TypeNumber, Required: false, Form: manifest.FormLLM,
				Default: strptr("5"), Min: f64ptr(1), Max: f64ptr(50)},
			{Name: "embedding_model", Type: manifest.TypeModelSelector, Required: true, Form: manifest.FormForm,
				Scope: "text-embedding"},
			{Name: "rerank_model", Type: manifest.TypeModelSelector, Required: false, Form: manifest.FormForm,
				Scope: "rerank"},
		},
	}
}

// testDefaults supplies the operator configuration for form-scoped parameters.
func testDefaults() map[string]string {
	return map[string]string{
		"db_type":         "mysql",
		"host":            "db.internal",
		"port":            "3306",
		"username":        "reader",
		"password":        "secret",
		"database":        "sales",
		"embedding_model": "embed-1",
	}
}

// --- Fakes ---

// fakeDocs is an in-memory interfaces.DocumentStorage.
type fakeDocs struct {
	docs map[string]*knowledge.Document // key: collection/table
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: make(map[string]*knowledge.Document)}
}

func (s *fakeDocs) Upsert(_ context.Context, doc *knowledge.Document) error {
	copied := *doc
	s.docs[doc.Collection+"/"+doc.Table] = &copied
	return nil
}

func (s *fakeDocs) Get(_ context.Context, collection, table string) (*knowledge.Document, error) {
	doc, ok := s.docs[collection+"/"+table]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeDocs) FindByCollection(_ context.Context, collection string) ([]knowledge.Document, error) {
	var out []knowledge.Document
	for _, doc := range s.docs {
		if doc.Collection == collection {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *fakeDocs) DeleteCollection(_ context.Context, collection string) (int, error) {
	deleted := 0
	for key, doc := range s.docs {
		if doc.Collection == collection {
			delete(s.docs, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeDocs) Collections(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, doc := range s.docs {
		if !seen[doc.Collection] {
			seen[doc.Collection] = true
			names = append(names, doc.Collection)
		}
	}
	return names, nil
}

// fakeKV is an in-memory interfaces.KeyValueStorage.
type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

func (s *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("key not found: %s", key)
	}
	return v, nil
}

func (s *fakeKV) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *fakeKV) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *fakeKV) GetAll(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *fakeKV) RecordExport(_ context.Context, collection string, at time.Time) error {
	s.values["export:last:"+collection] = at.UTC().Format(time.RFC3339)
	return nil
}

func (s *fakeKV) LastExport(_ context.Context, collection string) (time.Time, bool, error) {
	raw, ok := s.values["export:last:"+collection]
	if !ok {
		return time.Time{}, false, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func (s *fakeKV) ClearExport(_ context.Context, collection string) error {
	delete(s.values, "export:last:"+collection)
	return nil
}

// fakeEmbedder returns a fixed vector per text, with a fallback default.
type fakeEmbedder struct {
	vectors map[string][]float32
	fallback []float32
	calls    int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = f.fallback
		}
	}
	return out, nil
}

// fakeReranker scores documents in reverse request order.
type fakeReranker struct {
	calls int
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, _ string, documents []string) ([]platform.RerankResult, error) {
	f.calls++
	out := make([]platform.RerankResult, len(documents))
	for i := range documents {
		out[i] = platform.RerankResult{Index: len(documents) - 1 - i, Score: float64(i + 1)}
	}
	return out, nil
}

// fakeSource serves canned table schemas without a database.
type fakeSource struct {
	schemas []*schema.TableSchema
	closed  bool
}

func (f *fakeSource) AllTableSchemas(_ context.Context, tableNames string) ([]*schema.TableSchema, error) {
	if tableNames == "" {
		return f.schemas, nil
	}
	var names []string
	for _, ts := range f.schemas {
		names = append(names, ts.Name)
	}
	keep := make(map[string]bool)
	for _, name := range schema.FilterTables(names, tableNames) {
		keep[name] = true
	}
	var out []*schema.TableSchema
	for _, ts := range f.schemas {
		if keep[ts.Name] {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func testTableSchemas() []*schema.TableSchema {
	return []*schema.TableSchema{
		{Name: "orders", Comment: "customer orders", Columns: []schema.Column{
			{Name: "id", Type: "bigint", Comment: "primary key"},
			{Name: "total", Type: "decimal(10,2)", Comment: "order total"},
		}},
		{Name: "customers", Comment: "customer master", Columns: []schema.Column{
			{Name: "id", Type: "bigint", Comment: "primary key"},
			{Name: "name", Type: "varchar(255)", Comment: ""},
		}},
	}
}

// newTestDeps wires fakes into a Deps ready for handler tests.
func newTestDeps(source *fakeSource) (*Deps, *fakeDocs, *fakeKV, *fakeEmbedder) {
	docs := newFakeDocs()
	kv := newFakeKV()
	embedder := &fakeEmbedder{fallback: []float32{0.5, 0.5}}

	deps := &Deps{
		Logger:    common.NewSilentLogger(),
		Documents: docs,
		KV:        kv,
		Embedder:  embedder,
		Reranker:  &fakeReranker{},
		Defaults:  testDefaults(),
		OpenSource: func(_ context.Context, params schema.ConnectParams) (SchemaSource, error) {
			if _, _, err := schema.BuildDSN(params); err != nil {
				return nil, err
			}
			return source, nil
		},
	}
	return deps, docs, kv, embedder
}

// newTestServer builds an MCPServer with the standard tool set registered.
func newTestServer(t *testing.T, deps *Deps) *mcpserver.MCPServer {
	t.Helper()

	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	manifests := []*manifest.Manifest{exportManifest(), searchManifest()}
	count := RegisterTools(s, deps, manifests)
	if count != 2 {
		t.Fatalf("expected 2 tools registered, got %d", count)
	}
	s.AddTool(VersionTool(), VersionToolHandler(count))
	return s
}

// newTestServerWith builds an MCPServer registering only the given manifests.
func newTestServerWith(t *testing.T, deps *Deps, manifests ...*manifest.Manifest) *mcpserver.MCPServer {
	t.Helper()

	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	RegisterTools(s, deps, manifests)
	return s
}

// listTools calls tools/list on the MCPServer and returns the tools.
func listTools(t *testing.T, s *mcpserver.MCPServer) []mcpgo.Tool {
	t.Helper()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(context.Background(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T", result)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var toolsResult mcpgo.ListToolsResult
	if err := json.Unmarshal(resultJSON, &toolsResult); err != nil {
		t.Fatalf("failed to unmarshal ListToolsResult: %v", err)
	}

	return toolsResult.Tools
}

// callTool calls a tool on the MCPServer and returns the result.
func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcpgo.CallToolResult {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(paramsJSON) + `}`)
	result := s.HandleMessage(context.Background(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T", result)
	}

	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}

	var callResult mcpgo.CallToolResult
	if err := json.Unmarshal(resultJSON, &callResult); err != nil {
		t.Fatalf("failed to unmarshal CallToolResult: %v", err)
	}

	return &callResult
}

// resultText extracts the first text content from a tool result.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	text, ok := result.Content[0].(mcpgo.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}
