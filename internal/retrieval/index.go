package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Embedder turns texts into vectors. The language-model gateway satisfies it.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Index is an ephemeral in-memory semantic index over a document list. It is
// rebuilt per request and never persisted.
type Index struct {
	embedder  Embedder
	documents []string
	vectors   [][]float64
}

// Build embeds the documents once and returns a searchable index.
func Build(ctx context.Context, embedder Embedder, documents []string) (*Index, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("no documents to index")
	}

	vectors, err := embedder.EmbedTexts(ctx, documents)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}

	return &Index{embedder: embedder, documents: documents, vectors: vectors}, nil
}

// Search returns the top-k documents by cosine similarity to the query.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	queryVectors, err := ix.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(queryVectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(queryVectors))
	}
	qv := queryVectors[0]

	type scored struct {
		doc   string
		score float64
	}
	results := make([]scored, 0, len(ix.documents))
	for i, doc := range ix.documents {
		results = append(results, scored{doc: doc, score: cosine(qv, ix.vectors[i])})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if k > len(results) {
		k = len(results)
	}
	top := make([]string, 0, k)
	for _, r := range results[:k] {
		top = append(top, r.doc)
	}
	return top, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
