// Package catalog is the relational side of persistence: products, steps,
// hazard types, hazards and their justification/control-measure/Form H
// rows, stored in SQLite through gorm.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

// Sentinel errors for catalog operations.
var (
	ErrProdutoNotFound = errors.New("product not found")
	ErrPerigoNotFound  = errors.New("hazard not found")
	ErrFormHNotFound   = errors.New("form H not found")
)

// Catalog wraps the relational store.
type Catalog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the SQLite catalog at path and runs
// migrations. The glebarez driver is pure Go, so no CGO is required.
func Open(path string, logger *zap.Logger) (*Catalog, error) {
	if path == "" {
		return nil, errors.New("catalog path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	return New(db, logger)
}

// New wraps an existing gorm handle and runs migrations.
func New(db *gorm.DB, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(
		&Produto{},
		&Etapa{},
		&TipoPerigo{},
		&Perigo{},
		&Justificativa{},
		&MedidaControle{},
		&FormularioH{},
	); err != nil {
		return nil, fmt.Errorf("migrating catalog schema: %w", err)
	}
	return &Catalog{db: db, logger: logger}, nil
}

// CreateProduto registers a product. Names are unique; re-registering an
// existing name returns the stored row.
func (c *Catalog) CreateProduto(ctx context.Context, nome string) (*Produto, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, errors.New("product name is required")
	}

	var p Produto
	err := c.db.WithContext(ctx).Where("nome_produto = ?", nome).Take(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("querying product: %w", err)
	}

	p = Produto{Nome: nome, Slug: hazard.Slug(nome)}
	if err := c.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	c.logger.Info("product registered", zap.String("nome", nome), zap.String("slug", p.Slug))
	return &p, nil
}

// ListProdutos returns every registered product.
func (c *Catalog) ListProdutos(ctx context.Context) ([]Produto, error) {
	var out []Produto
	if err := c.db.WithContext(ctx).Order("nome_produto").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return out, nil
}

// Link reports one node of an EnsureChain walk: its primary key and
// whether the row already existed before the call.
type Link struct {
	ID        uint `json:"id"`
	Existente bool `json:"existente"`
}

// ChainResult is the outcome of EnsureChain.
type ChainResult struct {
	Produto       Link `json:"produto"`
	Etapa         Link `json:"etapa"`
	TipoPerigo    Link `json:"tipo_perigo"`
	Perigo        Link `json:"perigo"`
	Justificativa Link `json:"justificativa"`
	Medida        Link `json:"medida"`
}

// EnsureChain walks the product → step → hazard type → hazard →
// justification → control measure chain, creating any missing rows. The
// product must already exist; everything below it is get-or-create.
func (c *Catalog) EnsureChain(ctx context.Context, produtoNome, etapaNome, tipoNome, perigoDesc, justificativa, medida string) (*ChainResult, error) {
	db := c.db.WithContext(ctx)
	result := &ChainResult{}

	var produto Produto
	if err := db.Where("nome_produto = ?", strings.TrimSpace(produtoNome)).Take(&produto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProdutoNotFound, produtoNome)
		}
		return nil, fmt.Errorf("querying product: %w", err)
	}
	result.Produto = Link{ID: produto.ID, Existente: true}

	err := db.Transaction(func(tx *gorm.DB) error {
		var etapa Etapa
		existed, err := getOrCreate(tx, &etapa,
			map[string]any{"nome_etapa": strings.TrimSpace(etapaNome), "id_produto": produto.ID})
		if err != nil {
			return fmt.Errorf("ensuring step: %w", err)
		}
		result.Etapa = Link{ID: etapa.ID, Existente: existed}

		codigo := hazard.CodeForName(tipoNome)
		var tipo TipoPerigo
		existed, err = getOrCreateWith(tx, &tipo,
			map[string]any{"codigo_perigo": codigo},
			&TipoPerigo{Nome: strings.TrimSpace(tipoNome), Codigo: codigo})
		if err != nil {
			return fmt.Errorf("ensuring hazard type: %w", err)
		}
		result.TipoPerigo = Link{ID: tipo.ID, Existente: existed}

		var perigo Perigo
		existed, err = getOrCreateWith(tx, &perigo,
			map[string]any{"descricao_perigo": strings.TrimSpace(perigoDesc), "id_etapa": etapa.ID},
			&Perigo{Descricao: strings.TrimSpace(perigoDesc), EtapaID: etapa.ID, TipoPerigoID: tipo.ID})
		if err != nil {
			return fmt.Errorf("ensuring hazard: %w", err)
		}
		result.Perigo = Link{ID: perigo.ID, Existente: existed}

		var just Justificativa
		existed, err = getOrCreate(tx, &just,
			map[string]any{"id_perigo": perigo.ID, "texto_justificativa": strings.TrimSpace(justificativa)})
		if err != nil {
			return fmt.Errorf("ensuring justification: %w", err)
		}
		result.Justificativa = Link{ID: just.ID, Existente: existed}

		var med MedidaControle
		existed, err = getOrCreate(tx, &med,
			map[string]any{"id_perigo": perigo.ID, "texto_medida": strings.TrimSpace(medida)})
		if err != nil {
			return fmt.Errorf("ensuring control measure: %w", err)
		}
		result.Medida = Link{ID: med.ID, Existente: existed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// getOrCreate fetches the row matching attrs, creating it from attrs when
// absent. Returns whether the row already existed.
func getOrCreate[T any](tx *gorm.DB, dest *T, attrs map[string]any) (bool, error) {
	err := tx.Where(attrs).Take(dest).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Model(dest).Create(attrs).Error; err != nil {
		return false, err
	}
	return false, tx.Where(attrs).Take(dest).Error
}

// getOrCreateWith is getOrCreate for rows whose create payload carries
// more fields than the lookup key.
func getOrCreateWith[T any](tx *gorm.DB, dest *T, attrs map[string]any, create *T) (bool, error) {
	err := tx.Where(attrs).Take(dest).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Create(create).Error; err != nil {
		return false, err
	}
	*dest = *create
	return false, nil
}

// UpsertFormH stores the questionnaire row for a hazard, updating in
// place when one exists. The hazard must exist.
func (c *Catalog) UpsertFormH(ctx context.Context, perigoID uint, h hazard.FormH) (*FormularioH, error) {
	db := c.db.WithContext(ctx)

	var perigo Perigo
	if err := db.Take(&perigo, perigoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrPerigoNotFound, perigoID)
		}
		return nil, fmt.Errorf("querying hazard: %w", err)
	}

	row := FormularioH{
		PerigoID:  perigoID,
		Questao1:  h.Questao1,
		Questao1a: h.Questao1a,
		Questao2:  h.Questao2,
		Questao3:  h.Questao3,
		Questao4:  h.Questao4,
		Resultado: h.Resultado,
	}

	var existing FormularioH
	err := db.Where("id_perigo = ?", perigoID).Take(&existing).Error
	switch {
	case err == nil:
		row.ID = existing.ID
		if err := db.Save(&row).Error; err != nil {
			return nil, fmt.Errorf("updating form H: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("creating form H: %w", err)
		}
	default:
		return nil, fmt.Errorf("querying form H: %w", err)
	}
	return &row, nil
}

// GetFormH returns the questionnaire row for a hazard.
func (c *Catalog) GetFormH(ctx context.Context, perigoID uint) (*FormularioH, error) {
	var row FormularioH
	if err := c.db.WithContext(ctx).Where("id_perigo = ?", perigoID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: hazard %d", ErrFormHNotFound, perigoID)
		}
		return nil, fmt.Errorf("querying form H: %w", err)
	}
	return &row, nil
}
