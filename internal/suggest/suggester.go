// Package suggest implements the Formulário I suggester: given a confirmed
// hazard it drafts a monitoring plan by re-ranking the exact-matching
// historical records against each of the eight plan sub-questions.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
)

var suggestTracer = otel.Tracer("haccpd.suggest")

// ErrNoSuggestion is returned when no indexed record matches the confirmed
// hazard exactly, or the product has no index at all. Advisory: callers
// present a blank plan, never an error dialog.
var ErrNoSuggestion = errors.New("no suggestion available")

// Query identifies the confirmed hazard a plan is being drafted for.
type Query struct {
	Produto       string
	Etapa         string
	Tipo          string
	Perigo        string
	Medida        string
	Justificativa string
}

// question binds a plan sub-question to the record field that answers it.
type question struct {
	field string // canonical record field holding the answer
	text  string // questionnaire wording interpolated into the prompt
}

// The eight fixed sub-questions, in plan order.
var questions = []question{
	{"limite_critico", "Qual o limite crítico necessário para garantir que esse perigo esteja sob controle?"},
	{"monitoramento_oque", "O que deve ser monitorado para garantir o controle desse perigo?"},
	{"monitoramento_como", "Como o monitoramento deve ser realizado?"},
	{"monitoramento_quando", "Com que frequência o monitoramento deve ocorrer?"},
	{"monitoramento_quem", "Quem é o responsável por realizar o monitoramento?"},
	{"acao_corretiva", "Qual ação corretiva deve ser tomada se o perigo não estiver controlado?"},
	{"registro", "Quais registros devem ser mantidos para comprovar o controle?"},
	{"verificacao", "Como verificar se o controle do perigo está sendo efetivo?"},
}

// topHits is how many local candidates each sub-question inspects before
// giving up on a non-empty answer.
const topHits = 3

// Suggester drafts monitoring plans from the index library.
type Suggester struct {
	library  *retriever.Library
	embedder retriever.Embedder
	logger   *zap.Logger
}

// New creates a Suggester. The embedder must be the same one the library
// indexes with, so prompt and candidate vectors share a space.
func New(library *retriever.Library, embedder retriever.Embedder, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{library: library, embedder: embedder, logger: logger}
}

// SuggestMonitoringPlan drafts a Form I for the confirmed hazard.
//
// The retrieval is two-stage: first an exact filter over the product's
// indexed records on (step, hazard type, hazard description), then a fresh
// in-memory index over just those candidates which each sub-question is
// searched against. The global index is never queried directly for
// sub-questions: it ranks by step similarity and would happily pull an
// answer from a different hazard in the same step.
//
// Each sub-answer is the first non-empty source field among the top-3
// local hits; a sub-question with no non-empty answer yields "".
func (s *Suggester) SuggestMonitoringPlan(ctx context.Context, q Query) (*hazard.FormI, error) {
	ctx, span := suggestTracer.Start(ctx, "Suggester.SuggestMonitoringPlan")
	defer span.End()

	span.SetAttributes(
		attribute.String("product", hazard.Slug(q.Produto)),
		attribute.String("step", q.Etapa),
	)

	candidates, err := s.filterCandidates(ctx, q)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		SuggestionsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	span.SetAttributes(attribute.Int("candidate_count", len(candidates)))

	local, err := s.buildLocalIndex(ctx, candidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	answers := make(map[string]string, len(questions))
	for _, sub := range questions {
		answer, err := s.answer(ctx, local, candidates, q, sub)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		answers[sub.field] = answer
	}

	SuggestionsTotal.WithLabelValues("success").Inc()
	s.logger.Debug("monitoring plan suggested",
		zap.String("product", hazard.Slug(q.Produto)),
		zap.String("step", q.Etapa),
		zap.Int("candidates", len(candidates)),
	)

	return &hazard.FormI{
		LimiteCritico: answers["limite_critico"],
		Monitoramento: hazard.Monitoring{
			OQue:   answers["monitoramento_oque"],
			Como:   answers["monitoramento_como"],
			Quando: answers["monitoramento_quando"],
			Quem:   answers["monitoramento_quem"],
		},
		AcaoCorretiva: answers["acao_corretiva"],
		Registro:      answers["registro"],
		Verificacao:   answers["verificacao"],
	}, nil
}

// filterCandidates collects the records of every source document whose
// step, hazard type and hazard description all match the query exactly
// (folded comparison for free text, trimmed case-insensitive for the type
// code).
func (s *Suggester) filterCandidates(ctx context.Context, q Query) ([]hazard.Record, error) {
	var (
		candidates []hazard.Record
		indexed    bool
	)
	for _, src := range hazard.Sources {
		idx, err := s.library.Open(ctx, q.Produto, src)
		if err != nil {
			if errors.Is(err, retriever.ErrIndexNotFound) {
				continue
			}
			return nil, err
		}
		indexed = true
		for _, rec := range idx.Records() {
			if hazard.FoldEqual(rec.Etapa, q.Etapa) &&
				hazard.FoldEqual(rec.Perigo, q.Perigo) &&
				strings.EqualFold(strings.TrimSpace(rec.Tipo), strings.TrimSpace(q.Tipo)) {
				candidates = append(candidates, rec)
			}
		}
	}
	if !indexed {
		return nil, fmt.Errorf("%w: product %s has no index", ErrNoSuggestion, hazard.Slug(q.Produto))
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no record matches step %q hazard %q", ErrNoSuggestion, q.Etapa, q.Perigo)
	}
	return candidates, nil
}

// buildLocalIndex embeds the candidates into a fresh in-memory collection
// scoped to this request. Reusing the product index here would leak
// answers across hazards.
func (s *Suggester) buildLocalIndex(ctx context.Context, candidates []hazard.Record) (*chromem.Collection, error) {
	texts := make([]string, len(candidates))
	for i, rec := range candidates {
		texts[i] = rec.Sentence()
	}
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", retriever.ErrEmbeddingFailed, err)
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("formulario_i_local", nil, func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("creating local collection: %w", err)
	}

	docs := make([]chromem.Document, len(candidates))
	for i := range candidates {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   texts[i],
			Metadata:  map[string]string{"row": strconv.Itoa(i)},
			Embedding: embeddings[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("populating local collection: %w", err)
	}
	return collection, nil
}

// prompt interpolates the hazard context into a sub-question template.
func prompt(q Query, text string) string {
	return fmt.Sprintf(
		"Produto: %s. Etapa: %s. Perigo identificado: (%s) %s. Medida preventiva: %s. Justificativa: %s. %s",
		q.Produto, q.Etapa, q.Tipo, q.Perigo, q.Medida, q.Justificativa, text,
	)
}

// answer searches the local index with the sub-question prompt and returns
// the first non-empty value of the corresponding source field among the
// top hits, or "" when every hit is empty.
func (s *Suggester) answer(ctx context.Context, local *chromem.Collection, candidates []hazard.Record, q Query, sub question) (string, error) {
	k := topHits
	if k > len(candidates) {
		k = len(candidates)
	}
	results, err := local.Query(ctx, prompt(q, sub.text), k, nil, nil)
	if err != nil {
		return "", fmt.Errorf("searching local index for %s: %w", sub.field, err)
	}
	for _, res := range results {
		row, err := strconv.Atoi(res.Metadata["row"])
		if err != nil || row < 0 || row >= len(candidates) {
			continue
		}
		if value := strings.TrimSpace(candidates[row].Field(sub.field)); value != "" {
			return value, nil
		}
	}
	EmptyAnswersTotal.WithLabelValues(sub.field).Inc()
	return "", nil
}
