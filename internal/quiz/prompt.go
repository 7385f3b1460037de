package quiz

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxContentChars = 30000
	DefaultQuestionCount   = 5
	QuestionTypeMCQ        = "multiple_choice"
)

// Truncate keeps the first limit characters of content. Counting is done in
// runes so multi-byte text is never cut mid-character.
func Truncate(content string, limit int) string {
	if limit <= 0 {
		return content
	}
	count := 0
	for i := range content {
		if count == limit {
			return content[:i]
		}
		count++
	}
	return content
}

// Excerpt returns the short preview stored on a reel.
func Excerpt(content string, limit int) string {
	return Truncate(content, limit) + "..."
}

// BuildPrompt returns the instruction sent as the system message of a
// generation request. The study material itself is sent as the user turn.
func BuildPrompt(count int) string {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	var b strings.Builder
	b.WriteString("You are a study assistant that writes multiple-choice quiz questions from study material.\n")
	fmt.Fprintf(&b, "Generate exactly %d questions based only on the material provided by the user.\n", count)
	b.WriteString("Respond with a JSON array and nothing else. Do not wrap it in markdown or add commentary.\n")
	b.WriteString("Each element must be an object with exactly these fields:\n")
	b.WriteString(`- "question": the question text` + "\n")
	b.WriteString(`- "options": an array of 4 answer strings labelled "A) ", "B) ", "C) ", "D) "` + "\n")
	b.WriteString(`- "correct_answer": a copy of the correct option, character for character` + "\n")
	fmt.Fprintf(&b, `- "type": always "%s"`+"\n", QuestionTypeMCQ)
	b.WriteString(`The value of "correct_answer" must match one element of "options" exactly, including its label.` + "\n")
	b.WriteString("Example:\n")
	b.WriteString(`[{"question":"What is the function of mitochondria?","options":["A) Energy production","B) Protein synthesis","C) Cell division","D) Waste removal"],"correct_answer":"A) Energy production","type":"multiple_choice"}]`)
	return b.String()
}

// BuildUserMessage frames the truncated study material for the model.
func BuildUserMessage(content string) string {
	return "Study material:\n\n" + content
}
