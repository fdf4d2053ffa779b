package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/haccpd/internal/hazard"
	"github.com/fyrsmithlabs/haccpd/internal/retriever"
	"github.com/fyrsmithlabs/haccpd/internal/retriever/retrievertest"
)

func newLibrary(t *testing.T) *retriever.Library {
	t.Helper()
	lib, err := retriever.NewLibrary(retriever.Config{}, &retrievertest.Embedder{}, zap.NewNop())
	require.NoError(t, err)
	return lib
}

func TestResolveHazardsOnePerSource(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)

	pasteurizacao := hazard.Record{
		Etapa:               "Pasteurização",
		Tipo:                "B",
		Perigo:              "Sobrevivência de patógenos",
		Medida:              "Binômio tempo x temperatura",
		PerigoSignificativo: "Sim",
	}
	envase := hazard.Record{
		Etapa:  "Envase",
		Tipo:   "F",
		Perigo: "Fragmentos de vidro",
	}

	// Step present in two of the three sources.
	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourceAPPCC, []hazard.Record{pasteurizacao, envase}))
	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourcePAC, []hazard.Record{pasteurizacao}))
	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourceBPF, []hazard.Record{envase}))

	set, err := New(lib, zap.NewNop()).ResolveHazards(ctx, "mel", "pasteurização")
	require.NoError(t, err)

	require.Len(t, set.Perigos, 2, "exactly one candidate per source containing the step")
	assert.Equal(t, hazard.SourceAPPCC, set.Perigos[0].Origem)
	assert.Equal(t, hazard.SourcePAC, set.Perigos[1].Origem)
	assert.Equal(t, "mel", set.Produto)
	assert.Equal(t, "pasteurização", set.Etapa)

	require.NotNil(t, set.Perigos[0].Perigo)
	assert.Equal(t, "Sobrevivência de patógenos", *set.Perigos[0].Perigo)
}

func TestResolveHazardsExactMatchNotSimilarity(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)

	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourceAPPCC, []hazard.Record{
		{Etapa: "Pasteurização lenta", Tipo: "B", Perigo: "Patógenos"},
	}))

	// A near-miss step must not resolve: matching is equality, not search.
	_, err := New(lib, zap.NewNop()).ResolveHazards(ctx, "mel", "Pasteurização")
	require.ErrorIs(t, err, ErrNoHazards)
}

func TestResolveHazardsAccentAndCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)

	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourceAPPCC, []hazard.Record{
		{Etapa: "Recepção do Leite", Tipo: "Q", Perigo: "Resíduos de antibióticos"},
	}))

	set, err := New(lib, zap.NewNop()).ResolveHazards(ctx, "mel", "RECEPCAO DO LEITE")
	require.NoError(t, err)
	assert.Len(t, set.Perigos, 1)
}

func TestResolveHazardsMissingFieldsAreNull(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)

	// Ingestion scrubs NaN cells to empty strings; the resolver must turn
	// them into nulls, never a "NaN" literal.
	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourceAPPCC, []hazard.Record{
		{Etapa: "Envase", Tipo: "F", Perigo: "Fragmentos de vidro"},
	}))

	set, err := New(lib, zap.NewNop()).ResolveHazards(ctx, "mel", "envase")
	require.NoError(t, err)
	require.Len(t, set.Perigos, 1)

	c := set.Perigos[0]
	assert.Nil(t, c.Justificativa)
	assert.Nil(t, c.Probabilidade)
	assert.Nil(t, c.Severidade)
	assert.Nil(t, c.Risco)
	assert.Nil(t, c.Medida)
	assert.Nil(t, c.PerigoSignificativo)
	require.NotNil(t, c.Perigo)
}

func TestResolveHazardsNotFound(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)

	r := New(lib, zap.NewNop())

	// No indexes at all for the product.
	_, err := r.ResolveHazards(ctx, "iogurte", "envase")
	require.ErrorIs(t, err, ErrNoHazards)

	// Indexed product, unknown step.
	require.NoError(t, lib.AddRecords(ctx, "mel", hazard.SourceAPPCC, []hazard.Record{
		{Etapa: "Envase", Tipo: "F", Perigo: "Fragmentos"},
	}))
	_, err = r.ResolveHazards(ctx, "mel", "rotulagem")
	require.ErrorIs(t, err, ErrNoHazards)

	// Empty step never resolves.
	_, err = r.ResolveHazards(ctx, "mel", "")
	require.ErrorIs(t, err, ErrNoHazards)
}
