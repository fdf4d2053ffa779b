// Package hazard defines the domain model shared by the retrieval,
// resolution and assessment layers: hazard types, indexed source records,
// normalized candidates and the Form G/H/I record shapes.
package hazard

import "strings"

// Source identifies one of the historical hazard-data sheets ingested into
// the per-product index.
type Source string

const (
	SourceAPPCC Source = "appcc"
	SourcePAC   Source = "pac"
	SourceBPF   Source = "bpf"
)

// Sources lists all known source documents in scan order. The resolver
// iterates them in this order, which fixes candidate ordering.
var Sources = []Source{SourceAPPCC, SourcePAC, SourceBPF}

// Type is a hazard classification with a fixed short code.
type Type struct {
	Name string
	Code string
}

var (
	TypeBiological   = Type{Name: "Biológico", Code: "B"}
	TypeChemical     = Type{Name: "Químico", Code: "Q"}
	TypePhysical     = Type{Name: "Físico", Code: "F"}
	TypeAllergenic   = Type{Name: "Alergênico", Code: "A"}
	TypeRadiological = Type{Name: "Radiológico", Code: "R"}
	TypeQuality      = Type{Name: "Qualidade", Code: "QUAL"}
)

// Types lists the closed set of hazard types.
var Types = []Type{
	TypeBiological,
	TypeChemical,
	TypePhysical,
	TypeAllergenic,
	TypeRadiological,
	TypeQuality,
}

// TypeFromCode looks up a hazard type by its short code (case-insensitive).
func TypeFromCode(code string) (Type, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, t := range Types {
		if t.Code == code {
			return t, true
		}
	}
	return Type{}, false
}

// CodeForName maps a hazard-type name to its short code. Unknown names fall
// back to the upper-cased first three letters, matching the historical
// catalog behavior for ad-hoc types.
func CodeForName(name string) string {
	trimmed := strings.TrimSpace(name)
	folded := Fold(trimmed)
	for _, t := range Types {
		if Fold(t.Name) == folded {
			return t.Code
		}
	}
	runes := []rune(trimmed)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}

// Significant reports whether a free-text "perigo significativo" flag reads
// as affirmative. The historical sheets carry "Sim"/"Não" with inconsistent
// casing and whitespace, so the parse is defensive.
func Significant(flag string) bool {
	return strings.EqualFold(strings.TrimSpace(flag), "sim")
}

// Record is one raw indexed row from a source document. Field names match
// the canonical column names produced by ingestion; cells that were missing
// or NaN in the sheet are empty strings.
type Record struct {
	Etapa               string `json:"etapa"`
	Tipo                string `json:"tipo"`
	Perigo              string `json:"perigo"`
	Justificativa       string `json:"justificativa"`
	Probabilidade       string `json:"probabilidade"`
	Severidade          string `json:"severidade"`
	Risco               string `json:"risco"`
	Medida              string `json:"medida"`
	PerigoSignificativo string `json:"perigo_significativo"`
	LimiteCritico       string `json:"limite_critico"`
	MonitoramentoOQue   string `json:"monitoramento_oque"`
	MonitoramentoComo   string `json:"monitoramento_como"`
	MonitoramentoQuando string `json:"monitoramento_quando"`
	MonitoramentoQuem   string `json:"monitoramento_quem"`
	AcaoCorretiva       string `json:"acao_corretiva"`
	Registro            string `json:"registro"`
	Verificacao         string `json:"verificacao"`
}

// Sentence concatenates the record's non-empty field values with " - ".
// This is the text that gets embedded, both at ingestion time and when the
// suggester builds its local re-ranking index, so the two must agree.
func (r Record) Sentence() string {
	fields := []string{
		r.Etapa, r.Tipo, r.Perigo, r.Justificativa,
		r.Probabilidade, r.Severidade, r.Risco, r.Medida,
		r.PerigoSignificativo,
		r.LimiteCritico,
		r.MonitoramentoOQue, r.MonitoramentoComo, r.MonitoramentoQuando, r.MonitoramentoQuem,
		r.AcaoCorretiva, r.Registro, r.Verificacao,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " - ")
}

// Field returns the value of the named canonical field. Used by the
// suggester to map each sub-question to its source column.
func (r Record) Field(name string) string {
	switch name {
	case "limite_critico":
		return r.LimiteCritico
	case "monitoramento_oque":
		return r.MonitoramentoOQue
	case "monitoramento_como":
		return r.MonitoramentoComo
	case "monitoramento_quando":
		return r.MonitoramentoQuando
	case "monitoramento_quem":
		return r.MonitoramentoQuem
	case "acao_corretiva":
		return r.AcaoCorretiva
	case "registro":
		return r.Registro
	case "verificacao":
		return r.Verificacao
	default:
		return ""
	}
}

// Candidate is a normalized hazard row as returned by the resolver: every
// field is present and nullable, tagged with the source document it came
// from. Downstream consumers never see a NaN sentinel or branch on field
// presence.
type Candidate struct {
	Tipo                *string `json:"tipo"`
	Perigo              *string `json:"perigo"`
	Justificativa       *string `json:"justificativa"`
	Probabilidade       *string `json:"probabilidade"`
	Severidade          *string `json:"severidade"`
	Risco               *string `json:"risco"`
	Medida              *string `json:"medida"`
	PerigoSignificativo *string `json:"perigo_significativo"`
	Origem              Source  `json:"origem"`
}

// NewCandidate builds a Candidate from a raw record, mapping empty fields
// to null. This is the single normalization step between the index and
// everything downstream.
func NewCandidate(r Record, origin Source) Candidate {
	return Candidate{
		Tipo:                nullable(r.Tipo),
		Perigo:              nullable(r.Perigo),
		Justificativa:       nullable(r.Justificativa),
		Probabilidade:       nullable(r.Probabilidade),
		Severidade:          nullable(r.Severidade),
		Risco:               nullable(r.Risco),
		Medida:              nullable(r.Medida),
		PerigoSignificativo: nullable(r.PerigoSignificativo),
		Origem:              origin,
	}
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
