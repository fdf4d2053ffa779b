// Package retriever provides the semantic retrieval layer: per-product,
// per-source vector indexes over historical hazard records, backed by
// chromem-go with a pluggable embedder.
package retriever

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

// Sentinel errors for retrieval operations.
var (
	// ErrIndexNotFound is returned when no index exists for a product/source.
	ErrIndexNotFound = errors.New("index not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyQuery is returned for empty query text. The index contract
	// does not define results for empty queries, so callers must validate.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrEmptyRecords indicates an attempt to index an empty record set.
	ErrEmptyRecords = errors.New("empty record set")
)

// Embedder generates vector embeddings from text.
//
// Document and query embeddings may be prefixed differently by the model
// (e.g. "passage: " vs "query: " for BGE/E5 families), so the two methods
// are kept distinct.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Hit is one ranked search result: the indexed record, its source and the
// cosine similarity against the query (normalized embeddings, so in [-1,1]).
type Hit struct {
	Record hazard.Record
	Source hazard.Source
	Score  float32
}

// StepMatch is one suggested step name from SimilarSteps, with the best
// similarity seen for that step across all source documents.
type StepMatch struct {
	Etapa        string        `json:"etapa"`
	Origem       hazard.Source `json:"origem"`
	Similaridade float32       `json:"similaridade"`
}
