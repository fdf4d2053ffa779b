package decisiontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTable(t *testing.T) {
	tests := []struct {
		name    string
		answers Answers
		want    Result
	}{
		{
			name:    "no preventive measures but control needed",
			answers: Answers{Q1: No, Q1a: Yes},
			want:    Result{Outcome: OutcomeModify},
		},
		{
			name:    "no preventive measures and control not needed",
			answers: Answers{Q1: No, Q1a: No},
			want:    Result{Outcome: OutcomeNotCCP},
		},
		{
			name:    "step designed to eliminate hazard",
			answers: Answers{Q1: Yes, Q2: Yes},
			want:    Result{Outcome: OutcomeCCP},
		},
		{
			name:    "hazard cannot reach unacceptable levels",
			answers: Answers{Q1: Yes, Q2: No, Q3: No},
			want:    Result{Outcome: OutcomeNotCCP},
		},
		{
			name:    "later step eliminates hazard",
			answers: Answers{Q1: Yes, Q2: No, Q3: Yes, Q4: Yes},
			want:    Result{Outcome: OutcomeNotCCP},
		},
		{
			name:    "no later step eliminates hazard",
			answers: Answers{Q1: Yes, Q2: No, Q3: Yes, Q4: No},
			want:    Result{Outcome: OutcomeCCP},
		},
		{
			name:    "awaiting q4",
			answers: Answers{Q1: Yes, Q2: No, Q3: Yes},
			want:    Result{Next: Q4},
		},
		{
			name:    "awaiting q3",
			answers: Answers{Q1: Yes, Q2: No},
			want:    Result{Next: Q3},
		},
		{
			name:    "awaiting q2",
			answers: Answers{Q1: Yes},
			want:    Result{Next: Q2},
		},
		{
			name:    "awaiting q1a",
			answers: Answers{Q1: No},
			want:    Result{Next: Q1a},
		},
		{
			name:    "nothing answered",
			answers: Answers{},
			want:    Result{Next: Q1},
		},
		{
			name: "later answers ignored until q1 answered",
			// Q2-Q4 filled in but Q1 blank: the active branch starts at Q1.
			answers: Answers{Q2: Yes, Q3: Yes, Q4: Yes},
			want:    Result{Next: Q1},
		},
		{
			name:    "malformed answer treated as unanswered",
			answers: Answers{Q1: "talvez"},
			want:    Result{Next: Q1},
		},
		{
			name:    "lowercase sim is not an answer",
			answers: Answers{Q1: "sim"},
			want:    Result{Next: Q1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.answers)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestEvaluateTotalAndDeterministic sweeps the full answer domain: the
// evaluator must return a well-formed result for every tuple and the same
// result on a second call.
func TestEvaluateTotalAndDeterministic(t *testing.T) {
	domain := []string{"", Yes, No}

	for _, q1 := range domain {
		for _, q1a := range domain {
			for _, q2 := range domain {
				for _, q3 := range domain {
					for _, q4 := range domain {
						a := Answers{Q1: q1, Q1a: q1a, Q2: q2, Q3: q3, Q4: q4}

						first := Evaluate(a)
						second := Evaluate(a)
						require.Equal(t, first, second, "answers %+v", a)

						if first.Terminal() {
							assert.Contains(t,
								[]Outcome{OutcomeCCP, OutcomeNotCCP, OutcomeModify},
								first.Outcome, "answers %+v", a)
							assert.Empty(t, first.Next)
						} else {
							assert.Contains(t,
								[]Question{Q1, Q1a, Q2, Q3, Q4},
								first.Next, "answers %+v", a)
						}
					}
				}
			}
		}
	}
}

func TestQuestionText(t *testing.T) {
	for _, q := range []Question{Q1, Q1a, Q2, Q3, Q4} {
		assert.NotEmpty(t, q.Text())
	}
	assert.Empty(t, Question("questao_9").Text())
}

func TestValidAnswer(t *testing.T) {
	assert.True(t, ValidAnswer(""))
	assert.True(t, ValidAnswer(Yes))
	assert.True(t, ValidAnswer(No))
	assert.False(t, ValidAnswer("sim"))
	assert.False(t, ValidAnswer("NÃO"))
	assert.False(t, ValidAnswer("yes"))
}
