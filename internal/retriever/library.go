package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

var libraryTracer = otel.Tracer("haccpd.retriever")

// Config holds configuration for the index library.
type Config struct {
	// Path is the directory for persistent storage. Empty means a purely
	// in-memory library (tests, ingestion dry runs).
	Path string

	// Compress enables gzip compression for the stored vectors.
	Compress bool
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Path != "" && !filepath.IsAbs(c.Path) {
		return fmt.Errorf("%w: path must be absolute, got %q", ErrInvalidConfig, c.Path)
	}
	return nil
}

// Library manages the per-product, per-source vector indexes together with
// their record sidecars. The vectors live in a chromem-go database (one
// collection per product and source document); the raw records are kept as
// JSON sidecars so exact-match scans never go through the vector store.
//
// A Library is safe for concurrent use: indexes are read-only at request
// time and only ingestion mutates them.
type Library struct {
	db       *chromem.DB
	embedder Embedder
	logger   *zap.Logger
	path     string

	mu      sync.RWMutex
	records map[string][]hazard.Record
}

// NewLibrary creates an index library. With cfg.Path set, vectors and
// record sidecars persist under that directory and indexes written by a
// previous process are picked up lazily on first Open.
func NewLibrary(cfg Config, embedder Embedder, logger *zap.Logger) (*Library, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		vectorPath := filepath.Join(cfg.Path, "vectors")
		if err := os.MkdirAll(vectorPath, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory %s: %w", vectorPath, err)
		}
		var err error
		db, err = chromem.NewPersistentDB(vectorPath, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem DB: %w", err)
		}
	}

	logger.Info("index library initialized",
		zap.String("path", cfg.Path),
		zap.Bool("compress", cfg.Compress),
	)

	return &Library{
		db:       db,
		embedder: embedder,
		logger:   logger,
		path:     cfg.Path,
		records:  make(map[string][]hazard.Record),
	}, nil
}

func collectionName(product string, source hazard.Source) string {
	return fmt.Sprintf("%s_%s", hazard.Slug(product), source)
}

// embeddingFunc adapts the library's embedder for chromem query encoding.
func (l *Library) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return l.embedder.EmbedQuery(ctx, text)
	}
}

// AddRecords indexes a record set for a product and source document,
// replacing any previous index for that pair. Each record is embedded from
// its Sentence() text; document IDs encode the row number so search hits
// map back to records in insertion order.
func (l *Library) AddRecords(ctx context.Context, product string, source hazard.Source, recs []hazard.Record) error {
	ctx, span := libraryTracer.Start(ctx, "Library.AddRecords")
	defer span.End()

	if len(recs) == 0 {
		return ErrEmptyRecords
	}

	slug := hazard.Slug(product)
	name := collectionName(product, source)
	span.SetAttributes(
		attribute.String("collection", name),
		attribute.Int("record_count", len(recs)),
	)

	texts := make([]string, len(recs))
	for i, r := range recs {
		texts[i] = r.Sentence()
	}

	start := time.Now()
	embeddings, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	EmbedDuration.Observe(time.Since(start).Seconds())

	docs := make([]chromem.Document, len(recs))
	for i := range recs {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s_%06d", name, i),
			Content:   texts[i],
			Metadata:  map[string]string{"row": strconv.Itoa(i)},
			Embedding: embeddings[i],
		}
	}

	// Replace semantics: a re-ingested sheet fully supersedes the old one.
	_ = l.db.DeleteCollection(name)
	collection, err := l.db.GetOrCreateCollection(name, nil, l.embeddingFunc())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("creating collection %s: %w", name, err)
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("adding documents to %s: %w", name, err)
	}

	if err := l.writeSidecar(slug, source, recs); err != nil {
		return err
	}

	l.mu.Lock()
	l.records[name] = recs
	l.mu.Unlock()

	IndexedRecords.WithLabelValues(string(source)).Set(float64(len(recs)))
	l.logger.Info("indexed records",
		zap.String("product", slug),
		zap.String("source", string(source)),
		zap.Int("count", len(recs)),
	)
	span.SetStatus(codes.Ok, "success")
	return nil
}

func (l *Library) sidecarPath(slug string, source hazard.Source) string {
	return filepath.Join(l.path, "records", slug, string(source)+".json")
}

func (l *Library) writeSidecar(slug string, source hazard.Source, recs []hazard.Record) error {
	if l.path == "" {
		return nil
	}
	path := l.sidecarPath(slug, source)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating sidecar directory: %w", err)
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sidecar %s: %w", path, err)
	}
	return nil
}

// Open returns the index for a product and source document, loading the
// record sidecar on first use. Returns ErrIndexNotFound if the pair was
// never ingested.
func (l *Library) Open(ctx context.Context, product string, source hazard.Source) (*Index, error) {
	slug := hazard.Slug(product)
	name := collectionName(product, source)

	l.mu.RLock()
	recs, ok := l.records[name]
	l.mu.RUnlock()

	if !ok {
		if l.path == "" {
			return nil, fmt.Errorf("%w: %s/%s", ErrIndexNotFound, slug, source)
		}
		data, err := os.ReadFile(l.sidecarPath(slug, source))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s/%s", ErrIndexNotFound, slug, source)
			}
			return nil, fmt.Errorf("reading sidecar: %w", err)
		}
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decoding sidecar %s/%s: %w", slug, source, err)
		}
		l.mu.Lock()
		l.records[name] = recs
		l.mu.Unlock()
	}

	collection := l.db.GetCollection(name, l.embeddingFunc())
	if collection == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrIndexNotFound, slug, source)
	}

	return &Index{
		product:    slug,
		source:     source,
		records:    recs,
		collection: collection,
	}, nil
}

// Sources returns the source documents with an index for the product, in
// canonical scan order.
func (l *Library) Sources(ctx context.Context, product string) []hazard.Source {
	var out []hazard.Source
	for _, src := range hazard.Sources {
		if _, err := l.Open(ctx, product, src); err == nil {
			out = append(out, src)
		}
	}
	return out
}

// HasProduct reports whether at least one source index exists for the
// product.
func (l *Library) HasProduct(ctx context.Context, product string) bool {
	return len(l.Sources(ctx, product)) > 0
}

// SimilarSteps queries every source index of a product for steps similar
// to the typed text, groups hits by folded step name keeping the best
// score, and returns the top-N matches in descending similarity. A product
// with no indexes at all yields ErrIndexNotFound; a product whose indexes
// simply have no hits yields an empty slice.
func (l *Library) SimilarSteps(ctx context.Context, product, stepText string, topN int) ([]StepMatch, error) {
	ctx, span := libraryTracer.Start(ctx, "Library.SimilarSteps")
	defer span.End()

	if stepText == "" {
		return nil, ErrEmptyQuery
	}
	if topN <= 0 {
		topN = 3
	}

	const perSourceHits = 10

	var (
		found bool
		best  = make(map[string]StepMatch)
	)
	for _, src := range hazard.Sources {
		idx, err := l.Open(ctx, product, src)
		if err != nil {
			continue
		}
		found = true

		hits, err := idx.Search(ctx, hazard.Fold(stepText), perSourceHits)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, h := range hits {
			step := h.Record.Etapa
			if step == "" {
				continue
			}
			key := hazard.Fold(step)
			if prev, ok := best[key]; !ok || h.Score > prev.Similaridade {
				best[key] = StepMatch{
					Etapa:        step,
					Origem:       src,
					Similaridade: h.Score,
				}
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: product %s", ErrIndexNotFound, hazard.Slug(product))
	}

	matches := make([]StepMatch, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similaridade > matches[j].Similaridade
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// Index is one read-only product×source index: the vector collection plus
// its raw record set.
type Index struct {
	product    string
	source     hazard.Source
	records    []hazard.Record
	collection *chromem.Collection
}

// Source returns the source document this index was built from.
func (i *Index) Source() hazard.Source { return i.source }

// Records returns the full indexed record set in insertion order. Callers
// must treat the slice as read-only.
func (i *Index) Records() []hazard.Record { return i.records }

// Search runs a similarity query against the index, returning up to topK
// hits in descending score order. Ties keep the insertion order of the
// underlying index.
func (i *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	ctx, span := libraryTracer.Start(ctx, "Index.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("product", i.product),
		attribute.String("source", string(i.source)),
		attribute.Int("top_k", topK),
	)

	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	// chromem rejects queries for more results than there are documents.
	if count := i.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return []Hit{}, nil
	}

	start := time.Now()
	results, err := i.collection.Query(ctx, query, topK, nil, nil)
	SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		SearchesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying %s/%s: %w", i.product, i.source, err)
	}
	SearchesTotal.WithLabelValues("success").Inc()

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		row, err := strconv.Atoi(res.Metadata["row"])
		if err != nil || row < 0 || row >= len(i.records) {
			// A document without a valid row pointer means the sidecar and
			// the vector collection are out of sync; skip rather than fail.
			continue
		}
		hits = append(hits, Hit{
			Record: i.records[row],
			Source: i.source,
			Score:  res.Similarity,
		})
	}
	return hits, nil
}
