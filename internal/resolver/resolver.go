// Package resolver assembles the full hazard set for a confirmed process
// step by scanning the indexed records of every source document, without
// going through similarity search.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
)

// ErrNoHazards is returned when no indexed record matches the confirmed
// step. Recoverable by the caller: present "no hazards found" and prompt
// for manual entry.
var ErrNoHazards = errors.New("no hazards found for step")

// HazardSet is the resolved hazard list for one product step, in the shape
// the review UI persists as the Form G draft.
type HazardSet struct {
	Produto string             `json:"produto"`
	Etapa   string             `json:"etapa"`
	Perigos []hazard.Candidate `json:"formulario_g"`
}

// Resolver resolves hazard sets against the index library.
type Resolver struct {
	library *retriever.Library
	logger  *zap.Logger
}

// New creates a Resolver.
func New(library *retriever.Library, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{library: library, logger: logger}
}

// ResolveHazards scans every source document of the product for records
// whose step matches the confirmed step (case- and accent-insensitive
// exact match, never a similarity query) and returns one candidate per
// matching record, tagged with its source. Sources without an index are
// skipped; duplicates across sources are kept, since curation is the
// reviewer's job. Zero matches overall yields ErrNoHazards.
func (r *Resolver) ResolveHazards(ctx context.Context, product, confirmedStep string) (*HazardSet, error) {
	if confirmedStep == "" {
		return nil, fmt.Errorf("%w: empty step", ErrNoHazards)
	}

	var candidates []hazard.Candidate
	for _, src := range hazard.Sources {
		idx, err := r.library.Open(ctx, product, src)
		if err != nil {
			if errors.Is(err, retriever.ErrIndexNotFound) {
				continue
			}
			return nil, err
		}
		for _, rec := range idx.Records() {
			if hazard.FoldEqual(rec.Etapa, confirmedStep) {
				candidates = append(candidates, hazard.NewCandidate(rec, src))
			}
		}
	}

	if len(candidates) == 0 {
		r.logger.Debug("no hazards matched step",
			zap.String("product", product),
			zap.String("step", confirmedStep),
		)
		return nil, fmt.Errorf("%w: %s", ErrNoHazards, confirmedStep)
	}

	return &HazardSet{
		Produto: hazard.Slug(product),
		Etapa:   confirmedStep,
		Perigos: candidates,
	}, nil
}
