// Package decisiontree implements the Codex Alimentarius CCP decision tree
// (Formulário H). Evaluation is a pure function over the answers provided
// so far: it either reaches one of three terminal outcomes or names the
// next question the caller must ask.
package decisiontree

// Answer values recognized by the tree. Anything else is treated as
// unanswered, never as an error.
const (
	Yes = "Sim"
	No  = "Não"
)

// Outcome is a terminal classification of the decision tree.
type Outcome string

const (
	OutcomeCCP     Outcome = "É um PCC"
	OutcomeNotCCP  Outcome = "Não é um PCC"
	OutcomeModify  Outcome = "Modificar o processo"
	outcomePending Outcome = ""
)

// Question identifies one of the five questionnaire questions. The values
// match the persisted Form H field names.
type Question string

const (
	Q1  Question = "questao_1"
	Q1a Question = "questao_1a"
	Q2  Question = "questao_2"
	Q3  Question = "questao_3"
	Q4  Question = "questao_4"
)

// Text returns the questionnaire wording for each question.
func (q Question) Text() string {
	switch q {
	case Q1:
		return "Existem medidas preventivas para o controle dos perigos?"
	case Q1a:
		return "O controle desta fase é necessário à segurança do produto?"
	case Q2:
		return "Esta fase foi especialmente desenvolvida para eliminar ou reduzir o perigo?"
	case Q3:
		return "O perigo poderia ocorrer em níveis inaceitáveis ou aumentar para níveis inaceitáveis?"
	case Q4:
		return "Existe uma etapa posterior que poderia eliminar ou reduzir o perigo a níveis aceitáveis?"
	}
	return ""
}

// Answers holds the questionnaire state: each field is "Sim", "Não" or
// empty (unanswered).
type Answers struct {
	Q1  string
	Q1a string
	Q2  string
	Q3  string
	Q4  string
}

// Result is the evaluation output. Exactly one of Outcome and Next is set:
// a terminal outcome, or the next question to ask.
type Result struct {
	Outcome Outcome
	Next    Question
}

// Terminal reports whether the evaluation reached a final classification.
func (r Result) Terminal() bool {
	return r.Outcome != outcomePending
}

func terminal(o Outcome) Result { return Result{Outcome: o} }
func await(q Question) Result   { return Result{Next: q} }

// Evaluate walks the decision tree over the given answers. It is total and
// deterministic: any answer outside {"Sim","Não"} counts as unanswered and
// yields an await result for the first unanswered question on the active
// branch, strictly left to right.
func Evaluate(a Answers) Result {
	switch a.Q1 {
	case No:
		switch a.Q1a {
		case Yes:
			return terminal(OutcomeModify)
		case No:
			return terminal(OutcomeNotCCP)
		default:
			return await(Q1a)
		}
	case Yes:
		switch a.Q2 {
		case Yes:
			return terminal(OutcomeCCP)
		case No:
			switch a.Q3 {
			case No:
				return terminal(OutcomeNotCCP)
			case Yes:
				switch a.Q4 {
				case Yes:
					return terminal(OutcomeNotCCP)
				case No:
					return terminal(OutcomeCCP)
				default:
					return await(Q4)
				}
			default:
				return await(Q3)
			}
		default:
			return await(Q2)
		}
	default:
		return await(Q1)
	}
}

// ValidAnswer reports whether a value is inside the three-way answer
// domain. The evaluator itself never rejects values; this is for callers
// that validate requests at the boundary.
func ValidAnswer(v string) bool {
	return v == "" || v == Yes || v == No
}
