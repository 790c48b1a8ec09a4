package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const exportManifest = `
identity:
  name: schema_export
  author: datapivot
  label:
    en_US: Export Database Schema
description:
  human:
    en_US: Export table schemas into a knowledge collection.
  llm: Extract table metadata and store it in a knowledge collection.
extra:
  python:
    source: tools/schema_export.py
parameters:
  - name: db_type
    type: select
    required: true
    form: form
    label:
      en_US: Database Type
    llm_description: Database engine.
    options:
      - value: mysql
        label:
          en_US: MySQL
      - value: postgresql
        label:
          en_US: PostgreSQL
  - name: port
    type: number
    required: true
    form: form
    min: 1
    max: 65535
    label:
      en_US: Port
    llm_description: Database server port.
  - name: password
    type: secret-input
    required: true
    form: form
    label:
      en_US: Password
    llm_description: Database password.
  - name: embedding_model
    type: model-selector
    required: true
    form: form
    scope: text-embedding
    label:
      en_US: Embedding Model
    llm_description: Embedding model reference.
`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "schema_export.yaml", exportManifest)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Identity.Name != "schema_export" {
		t.Errorf("expected identity name schema_export, got %s", m.Identity.Name)
	}
	if m.Identity.Label["en_US"] != "Export Database Schema" {
		t.Errorf("unexpected label: %q", m.Identity.Label["en_US"])
	}
	if m.Extra == nil || m.Extra.Python.Source != "tools/schema_export.py" {
		t.Error("expected extra.python.source to be decoded")
	}
	if len(m.Parameters) != 4 {
		t.Fatalf("expected 4 parameters, got %d", len(m.Parameters))
	}

	dbType := m.Param("db_type")
	if dbType == nil {
		t.Fatal("db_type parameter not found")
	}
	if dbType.Type != TypeSelect {
		t.Errorf("expected select type, got %s", dbType.Type)
	}
	if got := dbType.OptionValues(); len(got) != 2 || got[0] != "mysql" || got[1] != "postgresql" {
		t.Errorf("unexpected option values: %v", got)
	}

	port := m.Param("port")
	if port == nil || port.Min == nil || port.Max == nil {
		t.Fatal("port parameter missing min/max")
	}
	if *port.Min != 1 || *port.Max != 65535 {
		t.Errorf("unexpected port range: %v-%v", *port.Min, *port.Max)
	}

	if m.Param("embedding_model").Scope != "text-embedding" {
		t.Errorf("unexpected model scope: %s", m.Param("embedding_model").Scope)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	content := `
identity:
  name: bad_tool
description:
  llm: something
parameters:
  - name: x
    type: string
    form: llm
    typo_field: true
`
	path := writeManifest(t, t.TempDir(), "bad.yaml", content)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown manifest key")
	}
}

func TestLoad_NameFallsBackToFileName(t *testing.T) {
	content := `
description:
  llm: something
parameters: []
`
	path := writeManifest(t, t.TempDir(), "my_tool.yaml", content)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Identity.Name != "my_tool" {
		t.Errorf("expected name fallback my_tool, got %s", m.Identity.Name)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "b_tool.yaml", "identity:\n  name: b_tool\ndescription:\n  llm: b\nparameters: []\n")
	writeManifest(t, dir, "a_tool.yml", "identity:\n  name: a_tool\ndescription:\n  llm: a\nparameters: []\n")
	writeManifest(t, dir, "notes.txt", "not a manifest")

	manifests, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(manifests) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(manifests))
	}
	// Sorted by file name: a_tool.yml before b_tool.yaml
	if manifests[0].Identity.Name != "a_tool" || manifests[1].Identity.Name != "b_tool" {
		t.Errorf("unexpected order: %s, %s", manifests[0].Identity.Name, manifests[1].Identity.Name)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := LoadDir("/nonexistent/manifests"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
