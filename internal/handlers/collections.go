package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/interfaces"
)

// CollectionsHandler serves the knowledge-collection admin API:
// listing collections, inspecting one, and dropping one.
type CollectionsHandler struct {
	logger *common.Logger
	docs   interfaces.DocumentStorage
	kv     interfaces.KeyValueStorage
}

// CollectionSummary is one row of the collection list.
type CollectionSummary struct {
	Name       string `json:"name"`
	Documents  int    `json:"documents"`
	LastExport string `json:"last_export,omitempty"`
}

// CollectionDetail is the full view of one collection.
type CollectionDetail struct {
	Name       string   `json:"name"`
	Documents  int      `json:"documents"`
	Tables     []string `json:"tables"`
	LastExport string   `json:"last_export,omitempty"`
}

// NewCollectionsHandler creates a new collections handler.
func NewCollectionsHandler(logger *common.Logger, docs interfaces.DocumentStorage, kv interfaces.KeyValueStorage) *CollectionsHandler {
	return &CollectionsHandler{logger: logger, docs: docs, kv: kv}
}

// List handles GET /api/collections.
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.docs.Collections(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list collections")
		WriteError(w, http.StatusInternalServerError, "failed to list collections")
		return
	}

	summaries := make([]CollectionSummary, 0, len(names))
	for _, name := range names {
		docs, err := h.docs.FindByCollection(r.Context(), name)
		if err != nil {
			h.logger.Error().Err(err).Str("collection", name).Msg("failed to load collection")
			WriteError(w, http.StatusInternalServerError, "failed to load collection "+name)
			return
		}
		summary := CollectionSummary{Name: name, Documents: len(docs)}
		if at, ok, _ := h.kv.LastExport(r.Context(), name); ok {
			summary.LastExport = at.Format(time.RFC3339)
		}
		summaries = append(summaries, summary)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collections": summaries,
	})
}

// Get handles GET /api/collections/{name}.
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "collection name is required")
		return
	}

	docs, err := h.docs.FindByCollection(r.Context(), name)
	if err != nil {
		h.logger.Error().Err(err).Str("collection", name).Msg("failed to load collection")
		WriteError(w, http.StatusInternalServerError, "failed to load collection")
		return
	}
	if len(docs) == 0 {
		WriteError(w, http.StatusNotFound, "collection not found")
		return
	}

	tables := make([]string, 0, len(docs))
	for _, doc := range docs {
		tables = append(tables, doc.Table)
	}
	sort.Strings(tables)

	detail := CollectionDetail{Name: name, Documents: len(docs), Tables: tables}
	if at, ok, _ := h.kv.LastExport(r.Context(), name); ok {
		detail.LastExport = at.Format(time.RFC3339)
	}

	WriteJSON(w, http.StatusOK, detail)
}

// Delete handles DELETE /api/collections/{name}.
func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "collection name is required")
		return
	}

	deleted, err := h.docs.DeleteCollection(r.Context(), name)
	if err != nil {
		h.logger.Error().Err(err).Str("collection", name).Msg("failed to delete collection")
		WriteError(w, http.StatusInternalServerError, "failed to delete collection")
		return
	}
	if deleted == 0 {
		WriteError(w, http.StatusNotFound, "collection not found")
		return
	}

	// Drop the export cursor alongside the documents.
	if err := h.kv.ClearExport(r.Context(), name); err != nil {
		h.logger.Warn().Err(err).Str("collection", name).Msg("failed to delete export cursor")
	}

	h.logger.Info().Str("collection", name).Int("documents", deleted).Msg("collection dropped")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"collection": name,
		"deleted":    deleted,
	})
}
