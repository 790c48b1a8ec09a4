package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/platform"
)

// rerankCandidates caps how many cosine hits are handed to the rerank model.
const rerankCandidates = 20

// SearchResult is one scored document.
type SearchResult struct {
	Table   string  `json:"table"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher answers similarity queries over a knowledge collection.
type Searcher struct {
	store    DocumentStore
	embedder platform.Embedder
	reranker platform.Reranker
	logger   *common.Logger
}

// NewSearcher creates a searcher. The reranker is optional at call time:
// passing an empty rerank model skips the rerank pass.
func NewSearcher(store DocumentStore, embedder platform.Embedder, reranker platform.Reranker, logger *common.Logger) *Searcher {
	return &Searcher{store: store, embedder: embedder, reranker: reranker, logger: logger}
}

// Search embeds the query, ranks the collection by cosine similarity, and
// optionally re-orders the top candidates with a rerank model.
func (s *Searcher) Search(ctx context.Context, collection, query string, topK int, embeddingModel, rerankModel string) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	docs, err := s.store.FindByCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, embeddingModel, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, SearchResult{
			Table:   doc.Table,
			Content: doc.Content,
			Score:   CosineSimilarity(queryVec, doc.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	// A rerank failure degrades to the similarity ordering rather than
	// failing the search.
	if rerankModel != "" && s.reranker != nil {
		reranked, err := s.rerank(ctx, rerankModel, query, results)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("collection", collection).
				Str("model", rerankModel).
				Msg("rerank failed, keeping similarity order")
		} else {
			results = reranked
		}
	}

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// rerank re-orders the top cosine candidates by rerank model score. Results
// past the candidate window keep their similarity order behind them, so a
// large topK still returns the full result set.
func (s *Searcher) rerank(ctx context.Context, model, query string, results []SearchResult) ([]SearchResult, error) {
	n := len(results)
	if n > rerankCandidates {
		n = rerankCandidates
	}
	candidates := results[:n]

	contents := make([]string, n)
	for i, r := range candidates {
		contents[i] = r.Content
	}

	scored, err := s.reranker.Rerank(ctx, model, query, contents)
	if err != nil {
		return nil, fmt.Errorf("rerank failed: %w", err)
	}

	reranked := make([]SearchResult, 0, n)
	for _, rr := range scored {
		r := candidates[rr.Index]
		r.Score = rr.Score
		reranked = append(reranked, r)
	}
	sort.SliceStable(reranked, func(i, j int) bool { return reranked[i].Score > reranked[j].Score })

	return append(reranked, results[n:]...), nil
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
