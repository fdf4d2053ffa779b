package suggest

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

func newSuggester(t *testing.T, records map[hazard.Source][]hazard.Record) *Suggester {
	t.Helper()
	embedder := &retrievertest.Embedder{}
	lib, err := retriever.NewLibrary(retriever.Config{}, embedder, zap.NewNop())
	require.NoError(t, err)
	for src, recs := range records {
		require.NoError(t, lib.AddRecords(context.Background(), "mel", src, recs))
	}
	return New(lib, embedder, zap.NewNop())
}

func pasteurizacaoRecord() hazard.Record {
	return hazard.Record{
		Etapa:               "Pasteurização",
		Tipo:                "B",
		Perigo:              "Sobrevivência de patógenos",
		Justificativa:       "Falha no binômio tempo x temperatura",
		Medida:              "Controle do binômio tempo x temperatura",
		LimiteCritico:       "72°C por 15 segundos",
		MonitoramentoOQue:   "Temperatura e tempo de pasteurização",
		MonitoramentoComo:   "Leitura do termorregistrador",
		MonitoramentoQuando: "A cada lote",
		MonitoramentoQuem:   "Operador da pasteurização",
		AcaoCorretiva:       "Reprocessar o lote desviado",
		Registro:            "Planilha de controle da pasteurização",
		Verificacao:         "Aferição semanal do termorregistrador",
	}
}

func TestSuggestMonitoringPlanFullRecord(t *testing.T) {
	s := newSuggester(t, map[hazard.Source][]hazard.Record{
		hazard.SourcePAC: {pasteurizacaoRecord()},
	})

	plan, err := s.SuggestMonitoringPlan(context.Background(), Query{
		Produto:       "mel",
		Etapa:         "Pasteurização",
		Tipo:          "B",
		Perigo:        "Sobrevivência de patógenos",
		Medida:        "Controle do binômio tempo x temperatura",
		Justificativa: "Falha no binômio tempo x temperatura",
	})
	require.NoError(t, err)

	assert.Equal(t, "72°C por 15 segundos", plan.LimiteCritico)
	assert.Equal(t, "Temperatura e tempo de pasteurização", plan.Monitoramento.OQue)
	assert.Equal(t, "Leitura do termorregistrador", plan.Monitoramento.Como)
	assert.Equal(t, "A cada lote", plan.Monitoramento.Quando)
	assert.Equal(t, "Operador da pasteurização", plan.Monitoramento.Quem)
	assert.Equal(t, "Reprocessar o lote desviado", plan.AcaoCorretiva)
	assert.Equal(t, "Planilha de controle da pasteurização", plan.Registro)
	assert.Equal(t, "Aferição semanal do termorregistrador", plan.Verificacao)
}

func TestSuggestMonitoringPlanMatchIsNormalized(t *testing.T) {
	s := newSuggester(t, map[hazard.Source][]hazard.Record{
		hazard.SourcePAC: {pasteurizacaoRecord()},
	})

	// Unaccented lower-case step and hazard, lower-case type code.
	plan, err := s.SuggestMonitoringPlan(context.Background(), Query{
		Produto: "mel",
		Etapa:   "pasteurizacao",
		Tipo:    " b ",
		Perigo:  "sobrevivencia de patogenos",
	})
	require.NoError(t, err)
	assert.Equal(t, "72°C por 15 segundos", plan.LimiteCritico)
}

func TestSuggestMonitoringPlanEmptyFieldsFallThrough(t *testing.T) {
	sparse := pasteurizacaoRecord()
	sparse.LimiteCritico = "   " // whitespace only, counts as empty
	sparse.Registro = ""
	full := pasteurizacaoRecord()

	s := newSuggester(t, map[hazard.Source][]hazard.Record{
		hazard.SourcePAC: {sparse, full},
	})

	plan, err := s.SuggestMonitoringPlan(context.Background(), Query{
		Produto: "mel",
		Etapa:   "Pasteurização",
		Tipo:    "B",
		Perigo:  "Sobrevivência de patógenos",
	})
	require.NoError(t, err)

	// Both candidates match; the empty fields of one must fall through to
	// the other's values instead of surfacing as blanks.
	assert.Equal(t, "72°C por 15 segundos", plan.LimiteCritico)
	assert.Equal(t, "Planilha de controle da pasteurização", plan.Registro)
}

func TestSuggestMonitoringPlanAllEmptyYieldsEmptyStrings(t *testing.T) {
	bare := hazard.Record{
		Etapa:  "Envase",
		Tipo:   "F",
		Perigo: "Fragmentos de vidro",
		// No Form I columns at all in the sheet.
	}
	s := newSuggester(t, map[hazard.Source][]hazard.Record{
		hazard.SourceAPPCC: {bare},
	})

	plan, err := s.SuggestMonitoringPlan(context.Background(), Query{
		Produto: "mel",
		Etapa:   "Envase",
		Tipo:    "F",
		Perigo:  "Fragmentos de vidro",
	})
	require.NoError(t, err)

	// A well-formed plan with explicit empty strings, never an error.
	assert.Empty(t, plan.LimiteCritico)
	assert.Empty(t, plan.Monitoramento.OQue)
	assert.Empty(t, plan.AcaoCorretiva)
	assert.Empty(t, plan.Verificacao)
}

// TestSuggestMonitoringPlanNoLeakage pins the non-leakage property: two
// hazards sharing a step, where only the other hazard has Form I data. The
// suggestion for the first must never surface the other's fields, because
// the local index may only contain exact-filter matches.
func TestSuggestMonitoringPlanNoLeakage(t *testing.T) {
	target := hazard.Record{
		Etapa:  "Envase",
		Tipo:   "F",
		Perigo: "Fragmentos de vidro",
		// No plan data for this hazard.
	}
	other := hazard.Record{
		Etapa:               "Envase",
		Tipo:                "B",
		Perigo:              "Recontaminação por patógenos",
		LimiteCritico:       "Ausência de patógenos em 25g",
		MonitoramentoOQue:   "Higienização do equipamento de envase",
		MonitoramentoComo:   "Swab de superfície",
		MonitoramentoQuando: "Diariamente",
		MonitoramentoQuem:   "Analista de qualidade",
		AcaoCorretiva:       "Parar o envase e higienizar",
		Registro:            "Laudo microbiológico",
		Verificacao:         "Auditoria mensal",
	}

	s := newSuggester(t, map[hazard.Source][]hazard.Record{
		hazard.SourceAPPCC: {target, other},
	})

	plan, err := s.SuggestMonitoringPlan(context.Background(), Query{
		Produto: "mel",
		Etapa:   "Envase",
		Tipo:    "F",
		Perigo:  "Fragmentos de vidro",
	})
	require.NoError(t, err)

	// Every field unique to the other hazard must be absent.
	for _, leaked := range []string{
		plan.LimiteCritico,
		plan.Monitoramento.OQue,
		plan.Monitoramento.Como,
		plan.Monitoramento.Quando,
		plan.Monitoramento.Quem,
		plan.AcaoCorretiva,
		plan.Registro,
		plan.Verificacao,
	} {
		assert.Empty(t, leaked)
	}
}

func TestSuggestMonitoringPlanNotFound(t *testing.T) {
	s := newSuggester(t, map[hazard.Source][]hazard.Record{
		hazard.SourceAPPCC: {pasteurizacaoRecord()},
	})

	// Known product, no exact match on hazard description.
	_, err := s.SuggestMonitoringPlan(context.Background(), Query{
		Produto: "mel",
		Etapa:   "Pasteurização",
		Tipo:    "B",
		Perigo:  "Outro perigo qualquer",
	})
	require.ErrorIs(t, err, ErrNoSuggestion)

	// Unindexed product.
	_, err = s.SuggestMonitoringPlan(context.Background(), Query{
		Produto: "iogurte",
		Etapa:   "Pasteurização",
		Tipo:    "B",
		Perigo:  "Sobrevivência de patógenos",
	})
	require.ErrorIs(t, err, ErrNoSuggestion)
}
