package hazard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Type
		ok   bool
	}{
		{"B", TypeBiological, true},
		{"b", TypeBiological, true},
		{" QUAL ", TypeQuality, true},
		{"F", TypePhysical, true},
		{"X", Type{}, false},
		{"", Type{}, false},
	}
	for _, tt := range tests {
		got, ok := TypeFromCode(tt.code)
		assert.Equal(t, tt.ok, ok, "code %q", tt.code)
		assert.Equal(t, tt.want, got, "code %q", tt.code)
	}
}

func TestCodeForName(t *testing.T) {
	assert.Equal(t, "B", CodeForName("Biológico"))
	assert.Equal(t, "B", CodeForName("biologico")) // accent-insensitive
	assert.Equal(t, "QUAL", CodeForName("Qualidade"))
	// Unknown types fall back to the first three letters, upper-cased.
	assert.Equal(t, "NUT", CodeForName("Nutricional"))
}

func TestSignificant(t *testing.T) {
	assert.True(t, Significant("Sim"))
	assert.True(t, Significant(" sim "))
	assert.True(t, Significant("SIM"))
	assert.False(t, Significant("Não"))
	assert.False(t, Significant(""))
	assert.False(t, Significant("n/a"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "pasteurizacao", Fold("  Pasteurização "))
	assert.Equal(t, "recepcao do leite", Fold("Recepção do Leite"))
	assert.True(t, FoldEqual("PASTEURIZAÇÃO", "pasteurizacao"))
	assert.False(t, FoldEqual("envase", "rotulagem"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "queijo_minas", Slug("Queijo Minas"))
	assert.Equal(t, "doce_de_leite", Slug("  Doce de Leite!  "))
	assert.Equal(t, "mel", Slug("Mel"))
	assert.Equal(t, "acai_100", Slug("Açaí (100%)"))
}

func TestRecordSentence(t *testing.T) {
	r := Record{
		Etapa:  "Pasteurização",
		Tipo:   "B",
		Perigo: "Sobrevivência de patógenos",
		Medida: "Controle de tempo e temperatura",
	}
	assert.Equal(t,
		"Pasteurização - B - Sobrevivência de patógenos - Controle de tempo e temperatura",
		r.Sentence())

	assert.Empty(t, Record{}.Sentence())
}

func TestRecordField(t *testing.T) {
	r := Record{
		LimiteCritico:     "72°C por 15s",
		MonitoramentoOQue: "Temperatura do leite",
		AcaoCorretiva:     "Reprocessar o lote",
	}
	assert.Equal(t, "72°C por 15s", r.Field("limite_critico"))
	assert.Equal(t, "Temperatura do leite", r.Field("monitoramento_oque"))
	assert.Equal(t, "Reprocessar o lote", r.Field("acao_corretiva"))
	assert.Empty(t, r.Field("monitoramento_como"))
	assert.Empty(t, r.Field("etapa")) // not a suggestion field
}

func TestNewCandidate(t *testing.T) {
	r := Record{
		Etapa:         "Envase",
		Tipo:          "F",
		Perigo:        "Fragmentos de vidro",
		Probabilidade: "Baixa",
		// Justificativa, Severidade etc. missing in the sheet.
	}
	c := NewCandidate(r, SourcePAC)

	require.NotNil(t, c.Tipo)
	assert.Equal(t, "F", *c.Tipo)
	require.NotNil(t, c.Perigo)
	assert.Equal(t, "Fragmentos de vidro", *c.Perigo)
	require.NotNil(t, c.Probabilidade)
	assert.Equal(t, "Baixa", *c.Probabilidade)

	assert.Nil(t, c.Justificativa)
	assert.Nil(t, c.Severidade)
	assert.Nil(t, c.Risco)
	assert.Nil(t, c.Medida)
	assert.Nil(t, c.PerigoSignificativo)

	assert.Equal(t, SourcePAC, c.Origem)
}
