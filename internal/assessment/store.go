// Package assessment persists per-assessment snapshots as flat JSON files:
// one file per (product, step) review, holding the Form G hazard list and
// the optional Form H/I records attached to each hazard.
package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

// Sentinel errors for assessment operations.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrHazardNotFound     = errors.New("hazard not found in assessment")
)

// Entry is one reviewed hazard inside an assessment: its Form G fields
// plus at most one Form H and one Form I record. The optional records are
// pointers, not single-element lists.
type Entry struct {
	ID string `json:"id"`
	hazard.FormG
	FormularioH *hazard.FormH `json:"formulario_h,omitempty"`
	FormularioI *hazard.FormI `json:"formulario_i,omitempty"`
}

// Assessment is one persisted review of a product step.
type Assessment struct {
	ID           string    `json:"id"`
	Produto      string    `json:"produto"`
	Etapa        string    `json:"etapa"`
	Perigos      []*Entry  `json:"perigos"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

func (a *Assessment) entry(entryID string) (*Entry, bool) {
	for _, e := range a.Perigos {
		if e.ID == entryID {
			return e, true
		}
	}
	return nil, false
}

// Store reads and writes assessment files under a root directory, one
// JSON file per assessment keyed by UUID.
//
// Writes to the same assessment are serialized by a store-wide mutex;
// across processes the semantics stay last-write-wins.
type Store struct {
	root   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore creates an assessment store rooted at dir, creating it if
// needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("assessment store directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating assessment directory %s: %w", dir, err)
	}
	return &Store{root: dir, logger: logger}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

func (s *Store) load(id string) (*Assessment, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
		}
		return nil, fmt.Errorf("reading assessment %s: %w", id, err)
	}
	var a Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding assessment %s: %w", id, err)
	}
	return &a, nil
}

func (s *Store) save(a *Assessment) error {
	a.AtualizadoEm = time.Now().UTC()
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding assessment %s: %w", a.ID, err)
	}
	if err := os.WriteFile(s.path(a.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing assessment %s: %w", a.ID, err)
	}
	return nil
}

// Create persists a new assessment for a product step with the given
// reviewed hazards.
func (s *Store) Create(ctx context.Context, produto, etapa string, perigos []hazard.FormG) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(produto) == "" || strings.TrimSpace(etapa) == "" {
		return nil, errors.New("product and step are required")
	}

	entries := make([]*Entry, len(perigos))
	for i, g := range perigos {
		entries[i] = &Entry{ID: uuid.NewString(), FormG: g}
	}
	a := &Assessment{
		ID:       uuid.NewString(),
		Produto:  hazard.Slug(produto),
		Etapa:    etapa,
		Perigos:  entries,
		CriadoEm: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(a); err != nil {
		return nil, err
	}
	s.logger.Info("assessment created",
		zap.String("id", a.ID),
		zap.String("product", a.Produto),
		zap.String("step", a.Etapa),
		zap.Int("hazards", len(entries)),
	)
	return a, nil
}

// Get returns one assessment by ID.
func (s *Store) Get(ctx context.Context, id string) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// List returns all assessments, optionally filtered by product slug,
// newest first.
func (s *Store) List(ctx context.Context, produto string) ([]*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(produto)
}

// list is List without locking; callers hold s.mu.
func (s *Store) list(produto string) ([]*Assessment, error) {
	files, err := filepath.Glob(filepath.Join(s.root, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing assessments: %w", err)
	}

	slug := hazard.Slug(produto)
	var out []*Assessment
	for _, f := range files {
		id := strings.TrimSuffix(filepath.Base(f), ".json")
		a, err := s.load(id)
		if err != nil {
			s.logger.Warn("skipping unreadable assessment file",
				zap.String("file", f),
				zap.Error(err),
			)
			continue
		}
		if produto != "" && a.Produto != slug {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CriadoEm.After(out[j].CriadoEm)
	})
	return out, nil
}

// AddHazard appends a reviewed hazard to an existing assessment.
func (s *Store) AddHazard(ctx context.Context, id string, g hazard.FormG) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.load(id)
	if err != nil {
		return nil, err
	}
	entry := &Entry{ID: uuid.NewString(), FormG: g}
	a.Perigos = append(a.Perigos, entry)
	if err := s.save(a); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateHazard overwrites the Form G fields of one hazard entry. The
// attached Form H/I records are their own singletons and are only
// replaced by their own save operations.
func (s *Store) UpdateHazard(ctx context.Context, id, entryID string, g hazard.FormG) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.load(id)
	if err != nil {
		return err
	}
	entry, ok := a.entry(entryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrHazardNotFound, entryID)
	}
	entry.FormG = g
	return s.save(a)
}

// SaveFormH stores the questionnaire record for one hazard, fully
// replacing any prior record.
func (s *Store) SaveFormH(ctx context.Context, id, entryID string, h hazard.FormH) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.load(id)
	if err != nil {
		return err
	}
	entry, ok := a.entry(entryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrHazardNotFound, entryID)
	}
	entry.FormularioH = &h
	return s.save(a)
}

// SaveFormI stores the monitoring plan for one hazard, fully replacing
// any prior record.
func (s *Store) SaveFormI(ctx context.Context, id, entryID string, plan hazard.FormI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.load(id)
	if err != nil {
		return err
	}
	entry, ok := a.entry(entryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrHazardNotFound, entryID)
	}
	entry.FormularioI = &plan
	return s.save(a)
}

// InitFormH attaches an empty Form H shell to every significant hazard of
// the product's assessments that does not have one yet. Returns the
// number of hazards seeded.
func (s *Store) InitFormH(ctx context.Context, produto string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	assessments, err := s.list(produto)
	if err != nil {
		return 0, err
	}

	seeded := 0
	for _, a := range assessments {
		changed := false
		for _, e := range a.Perigos {
			if e.FormularioH != nil || !hazard.Significant(e.PerigoSignificativo) {
				continue
			}
			e.FormularioH = &hazard.FormH{}
			seeded++
			changed = true
		}
		if changed {
			if err := s.save(a); err != nil {
				return seeded, err
			}
		}
	}
	return seeded, nil
}
