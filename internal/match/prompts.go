package match

import (
	"fmt"
	"strings"
)

// matchSystemPrompt is the generated default system prompt for the match call.
// A caller-supplied system message replaces it entirely.
const matchSystemPrompt = `You will receive a list of items and a single searched item. Pick the item from the provided list that is the most similar to the searched item. Respond ONLY with a JSON object that is an exact copy of the chosen list item. Never invent an item that does not exist in the provided list.`

// confidenceSystemPrompt is the base system prompt for the confidence call.
// Unlike the match call, a caller-supplied system message never replaces this
// prompt; it is appended as extra context so the score stays an independent
// judgment of the already-chosen pair.
const confidenceSystemPrompt = `You rate how well a matched item corresponds to a searched item. Use the full range of an integer scale from 1 to 100: around 100 means an excellent, near-identical correspondence; around 40 to 60 means an uncertain or only partial correspondence; around 1 means minimal or no correspondence. Respond ONLY with JSON containing the confidence score and a short reasoning.`

// similarityScoreSchemaName names the structured-output schema for the
// confidence call.
const similarityScoreSchemaName = "similarity_score_response"

// similarityScoreSchema constrains the confidence response to exactly two
// fields: an integer score in [1,100] and a reasoning of 50-300 characters.
func similarityScoreSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"confidence_score": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 100,
			},
			"reasoning": map[string]any{
				"type":      "string",
				"minLength": 50,
				"maxLength": 300,
			},
		},
		"required":             []string{"confidence_score", "reasoning"},
		"additionalProperties": false,
	}
}

// buildMatchSystemPrompt assembles the system prompt for the match call. The
// override wins outright; otherwise the default is augmented with the list
// description and additional instructions as delimited sentences.
func (m *Matcher) buildMatchSystemPrompt() string {
	if strings.TrimSpace(m.systemMessage) != "" {
		return m.systemMessage
	}
	var b strings.Builder
	b.WriteString(matchSystemPrompt)
	appendPromptSentence(&b, "Description of the list", m.descriptionOfList)
	appendPromptSentence(&b, "Additional instructions", m.additionalInstructions)
	return b.String()
}

// buildConfidenceSystemPrompt assembles the system prompt for the confidence
// call. The system-message override is folded in as important instructions
// rather than replacing the scoring prompt.
func (m *Matcher) buildConfidenceSystemPrompt() string {
	var b strings.Builder
	b.WriteString(confidenceSystemPrompt)
	appendPromptSentence(&b, "Description of the list", m.descriptionOfList)
	appendPromptSentence(&b, "Important instructions", m.systemMessage)
	appendPromptSentence(&b, "Additional instructions", m.additionalInstructions)
	return b.String()
}

func appendPromptSentence(b *strings.Builder, label, text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	fmt.Fprintf(b, " %s: %s", label, trimmed)
	if !strings.HasSuffix(trimmed, ".") {
		b.WriteString(".")
	}
}
