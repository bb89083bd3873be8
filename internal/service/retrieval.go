package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"venuescout/internal/model"
)

// VectorIndex is the similarity-search contract the retrieval layer needs
// from the index storage engine.
type VectorIndex interface {
	Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]string) ([]model.IndexHit, error)
}

// Embedder turns texts into fixed-length vectors.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// PatternFilters narrow a pattern retrieval by exact metadata match.
// Destinations are lower-cased before comparison.
type PatternFilters struct {
	Destination string
	BudgetTier  string
	Category    string
}

// Retriever issues similarity queries against both corpus collections.
// Unlike intent extraction, failures here propagate: without retrieval
// there is no signal worth recommending from.
type Retriever struct {
	index            VectorIndex
	embedder         Embedder
	patternThreshold float64
	phraseThreshold  float64
	topK             int
}

// NewRetriever creates a retriever with independent score thresholds for
// the pattern and phrase collections.
func NewRetriever(index VectorIndex, embedder Embedder, patternThreshold, phraseThreshold float64, topK int) *Retriever {
	return &Retriever{
		index:            index,
		embedder:         embedder,
		patternThreshold: patternThreshold,
		phraseThreshold:  phraseThreshold,
		topK:             topK,
	}
}

// QueryPatterns retrieves success patterns similar to the query text,
// keeping only hits at or above the pattern threshold. Index order (by
// descending similarity) is preserved; no re-ranking happens here.
func (r *Retriever) QueryPatterns(ctx context.Context, text string, filters *PatternFilters) ([]model.RAGResult, error) {
	vector, err := r.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	filter := map[string]string{}
	if filters != nil {
		if filters.Destination != "" {
			filter["destination"] = strings.ToLower(filters.Destination)
		}
		if filters.BudgetTier != "" {
			filter["budget_tier"] = filters.BudgetTier
		}
		if filters.Category != "" {
			filter["category"] = filters.Category
		}
	}

	hits, err := r.index.Query(ctx, model.CollectionPattern, vector, r.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("pattern query failed: %w", err)
	}

	results := make([]model.RAGResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < r.patternThreshold {
			continue
		}
		var pattern model.SuccessPattern
		if err := json.Unmarshal(hit.Content, &pattern); err != nil {
			return nil, fmt.Errorf("malformed pattern record %s: %w", hit.ID, err)
		}
		results = append(results, model.RAGResult{
			Type:       model.CollectionPattern,
			Pattern:    &pattern,
			Confidence: hit.Score,
			Source:     "pattern:" + hit.ID,
		})
	}

	return results, nil
}

// QueryPhrases retrieves language patterns similar to the query text,
// keeping only hits at or above the phrase threshold.
func (r *Retriever) QueryPhrases(ctx context.Context, text string) ([]model.RAGResult, error) {
	vector, err := r.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	hits, err := r.index.Query(ctx, model.CollectionPhrase, vector, r.topK, nil)
	if err != nil {
		return nil, fmt.Errorf("phrase query failed: %w", err)
	}

	results := make([]model.RAGResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < r.phraseThreshold {
			continue
		}
		var phrase model.LanguagePattern
		if err := json.Unmarshal(hit.Content, &phrase); err != nil {
			return nil, fmt.Errorf("malformed phrase record %s: %w", hit.ID, err)
		}
		results = append(results, model.RAGResult{
			Type:       model.CollectionPhrase,
			Phrase:     &phrase,
			Confidence: hit.Score,
			Source:     "phrase:" + hit.ID,
		})
	}

	return results, nil
}

func (r *Retriever) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := r.embedder.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding client returned no vectors")
	}
	return vectors[0], nil
}
