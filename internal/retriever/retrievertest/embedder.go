// Package retrievertest provides test doubles for the retrieval layer.
package retrievertest

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

// Embedder is a deterministic, dependency-free embedder for tests. It maps
// text to a normalized bag-of-words vector via token hashing, so cosine
// similarity correlates with token overlap: texts sharing words score
// higher than unrelated texts, which is enough to exercise ranking logic
// without a real model.
type Embedder struct {
	// Dim is the vector dimension. Zero means 256.
	Dim int

	// Err, when set, is returned by every call.
	Err error
}

func (e *Embedder) dim() int {
	if e.Dim <= 0 {
		return 256
	}
	return e.Dim
}

func (e *Embedder) embed(text string) []float32 {
	v := make([]float32, e.dim())
	// Fold tokens so accented and unaccented spellings of the same word
	// land on the same dimension, as a multilingual model would.
	for _, token := range strings.Fields(hazard.Fold(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		v[h.Sum32()%uint32(len(v))]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range v {
			v[i] *= scale
		}
	}
	return v
}

// EmbedDocuments implements retriever.Embedder.
func (e *Embedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

// EmbedQuery implements retriever.Embedder.
func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.embed(text), nil
}
