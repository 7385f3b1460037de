package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mitochondriaResponse = `[{"question":"What is the function of mitochondria?","options":["A) Energy production","B) Protein synthesis","C) Cell division","D) Waste removal"],"correct_answer":"A) Energy production","type":"multiple_choice"}]`

func TestRepairWellFormedIsNoop(t *testing.T) {
	cleaned, err := Repair(mitochondriaResponse)
	require.NoError(t, err)

	var before, after any
	require.NoError(t, json.Unmarshal([]byte(mitochondriaResponse), &before))
	require.NoError(t, json.Unmarshal([]byte(cleaned), &after))
	assert.Equal(t, before, after)

	again, err := Repair(cleaned)
	require.NoError(t, err)
	assert.Equal(t, cleaned, again)
}

func TestRepairStripsProseAndFences(t *testing.T) {
	raw := "Sure! Here are your questions:\n```json\n" + mitochondriaResponse + "\n```\nGood luck!"

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "A) Energy production", questions[0].CorrectAnswer)
}

func TestRepairNoBrackets(t *testing.T) {
	_, err := ParseQuestions("Sorry, I cannot help with that.")
	assert.ErrorIs(t, err, ErrNoJSONFound)
}

func TestRepairUnterminatedArray(t *testing.T) {
	_, err := ParseQuestions(`[{"question":"cut off`)
	assert.ErrorIs(t, err, ErrJSONParseFailed)
}

func TestRepairLiteralNewlinesInsideStrings(t *testing.T) {
	raw := "[{\"question\":\"What is the function\nof mitochondria?\",\n" +
		"  \"options\":[\"A) Energy\n production\",\"B) Protein synthesis\"],\n" +
		"  \"correct_answer\":\"A) Energy\n production\",\"type\":\"multiple_choice\"}]"

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is the function of mitochondria?", questions[0].Question)
	assert.Equal(t, "A) Energy production", questions[0].Options[0])
	assert.Equal(t, questions[0].Options[0], questions[0].CorrectAnswer)
}

func TestRepairSpuriousBackslashes(t *testing.T) {
	raw := `[{"question":"Pick one","options":["A\) Red","B\) Blue"],"correct_answer":"A\) Red"}]`

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"A) Red", "B) Blue"}, questions[0].Options)
	assert.Equal(t, "A) Red", questions[0].CorrectAnswer)
}

func TestRepairSteps(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "collapse whitespace", raw: "[1,\n\n   2]", want: "[1, 2]"},
		{name: "doubled quote escape", raw: `["say \"hi\""]`, want: `["say "hi""]`},
		{name: "invalid escape target", raw: `["\(x\)"]`, want: `["(x)"]`},
		{name: "escaped backslash before paren", raw: `["\\(x"]`, want: `["(x"]`},
		{name: "valid escapes kept", raw: `["a\nb\tc\/d"]`, want: `["a\nb\tc\/d"]`},
		{name: "unicode escape", raw: `["caf\u00e9"]`, want: `["café"]`},
		{name: "surrogate pair", raw: `["\ud83d\ude00"]`, want: `["😀"]`},
		{name: "object payload", raw: `note {"questions": 1} end`, want: `{"questions": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Repair(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuestionsObjectShape(t *testing.T) {
	raw := `{"title":"Cells","questions":` + mitochondriaResponse + `}`

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is the function of mitochondria?", questions[0].Question)
}

func TestParseQuestionsObjectWithoutQuestions(t *testing.T) {
	_, err := ParseQuestions(`{"title":"Cells"}`)
	assert.ErrorIs(t, err, ErrJSONParseFailed)
}

func TestParseQuestionsWrongElementShape(t *testing.T) {
	raw := `[{"question":"ok","options":["a"],"correct_answer":"a"},{"question":"bad","options":"a, b","correct_answer":"a"}]`

	_, err := ParseQuestions(raw)
	require.ErrorIs(t, err, ErrValidationFailed)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
}

func TestParseQuestionsInvalidJSON(t *testing.T) {
	_, err := ParseQuestions(`[{"question": }]`)
	assert.ErrorIs(t, err, ErrJSONParseFailed)
}
