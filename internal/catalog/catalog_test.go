package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestCreateProdutoIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	p1, err := c.CreateProduto(ctx, "Queijo Minas")
	require.NoError(t, err)
	assert.Equal(t, "queijo_minas", p1.Slug)

	p2, err := c.CreateProduto(ctx, "Queijo Minas")
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)

	_, err = c.CreateProduto(ctx, "  ")
	require.Error(t, err)

	all, err := c.ListProdutos(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureChainCreatesAndReuses(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	_, err := c.CreateProduto(ctx, "Mel")
	require.NoError(t, err)

	first, err := c.EnsureChain(ctx,
		"Mel", "Pasteurização", "Biológico",
		"Sobrevivência de patógenos",
		"Falha no binômio tempo x temperatura",
		"Controle do binômio tempo x temperatura",
	)
	require.NoError(t, err)

	assert.True(t, first.Produto.Existente)
	assert.False(t, first.Etapa.Existente)
	assert.False(t, first.TipoPerigo.Existente)
	assert.False(t, first.Perigo.Existente)
	assert.False(t, first.Justificativa.Existente)
	assert.False(t, first.Medida.Existente)

	// Same chain again: everything resolves to the existing rows.
	second, err := c.EnsureChain(ctx,
		"Mel", "Pasteurização", "Biológico",
		"Sobrevivência de patógenos",
		"Falha no binômio tempo x temperatura",
		"Controle do binômio tempo x temperatura",
	)
	require.NoError(t, err)

	assert.True(t, second.Etapa.Existente)
	assert.True(t, second.TipoPerigo.Existente)
	assert.True(t, second.Perigo.Existente)
	assert.True(t, second.Justificativa.Existente)
	assert.True(t, second.Medida.Existente)
	assert.Equal(t, first.Perigo.ID, second.Perigo.ID)
}

func TestEnsureChainUnknownProduct(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.EnsureChain(context.Background(),
		"Iogurte", "Envase", "Físico", "Fragmentos", "j", "m")
	require.ErrorIs(t, err, ErrProdutoNotFound)
}

func TestEnsureChainTypeCodeFallback(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	_, err := c.CreateProduto(ctx, "Mel")
	require.NoError(t, err)

	res, err := c.EnsureChain(ctx, "Mel", "Envase", "Nutricional", "Perda de nutrientes", "j", "m")
	require.NoError(t, err)

	var tipo TipoPerigo
	require.NoError(t, c.db.Take(&tipo, res.TipoPerigo.ID).Error)
	assert.Equal(t, "NUT", tipo.Codigo)
}

func TestUpsertFormH(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	_, err := c.CreateProduto(ctx, "Mel")
	require.NoError(t, err)
	chain, err := c.EnsureChain(ctx,
		"Mel", "Pasteurização", "Biológico", "Patógenos", "j", "m")
	require.NoError(t, err)

	first := hazard.FormH{Questao1: "Sim", Questao2: "Sim", Resultado: "É um PCC"}
	row1, err := c.UpsertFormH(ctx, chain.Perigo.ID, first)
	require.NoError(t, err)

	// Re-evaluation updates the same row, no history retained.
	second := hazard.FormH{Questao1: "Não", Questao1a: "Não", Resultado: "Não é um PCC"}
	row2, err := c.UpsertFormH(ctx, chain.Perigo.ID, second)
	require.NoError(t, err)
	assert.Equal(t, row1.ID, row2.ID)

	got, err := c.GetFormH(ctx, chain.Perigo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Não é um PCC", got.Resultado)
	assert.Equal(t, "Não", got.Questao1)
	assert.Empty(t, got.Questao2)

	_, err = c.UpsertFormH(ctx, 9999, first)
	require.ErrorIs(t, err, ErrPerigoNotFound)

	_, err = c.GetFormH(ctx, 9999)
	require.ErrorIs(t, err, ErrFormHNotFound)
}
