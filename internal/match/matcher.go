package match

import (
	"context"
	"fmt"
	"strings"

	"llmmatch/internal/services/llm"
)

// DefaultNoResultThreshold is the confidence score below which a match is
// suppressed when the no-result policy is enabled.
const DefaultNoResultThreshold = 80

// Record is one candidate row: a mapping from field name to a
// JSON-representable value.
type Record map[string]any

// completionClient abstracts the chat completion call for testability.
type completionClient interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Matcher owns the state of one logical search: the candidate list, the
// searched key/value pair, optional prompt context, the no-result policy, and
// the outcome of the most recent Find call. It performs both network calls
// strictly in sequence and is not safe for concurrent use.
type Matcher struct {
	client completionClient

	list                   []Record
	searchKey              string
	searchValue            any
	descriptionOfList      string
	additionalInstructions string
	systemMessage          string
	model                  string
	allowNoResult          bool
	noResultThreshold      int

	confidenceScore     int
	confidenceReasoning string
	confidenceSet       bool
}

// New constructs a Matcher talking to the configured chat completion API.
// It fails with ErrConfiguration when the API key is empty; this precondition
// is checked once here, never deferred to the first call.
func New(cfg llm.Config, opts ...llm.Option) (*Matcher, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key required", ErrConfiguration)
	}
	return &Matcher{
		client:            llm.NewClient(cfg, opts...),
		allowNoResult:     true,
		noResultThreshold: DefaultNoResultThreshold,
	}, nil
}

// SetList stores the candidate list.
func (m *Matcher) SetList(list []Record) *Matcher {
	m.list = list
	return m
}

// SetSearchedItem stores the field name and scalar value being searched for.
func (m *Matcher) SetSearchedItem(key string, value any) *Matcher {
	m.searchKey = key
	m.searchValue = value
	return m
}

// SetDescriptionOfList stores free-text context about the candidate list.
func (m *Matcher) SetDescriptionOfList(description string) *Matcher {
	m.descriptionOfList = description
	return m
}

// SetAdditionalInstructions stores free-text guidance appended to both prompts.
func (m *Matcher) SetAdditionalInstructions(instructions string) *Matcher {
	m.additionalInstructions = instructions
	return m
}

// SetSystemMessage stores a system prompt that fully replaces the generated
// one for the match call. The confidence call keeps its own prompt and folds
// this text in as extra context instead.
func (m *Matcher) SetSystemMessage(message string) *Matcher {
	m.systemMessage = message
	return m
}

// SetAllowNoResult toggles the confidence call and its threshold gate.
func (m *Matcher) SetAllowNoResult(allow bool) *Matcher {
	m.allowNoResult = allow
	return m
}

// SetModel overrides the configured model for this matcher.
func (m *Matcher) SetModel(model string) *Matcher {
	m.model = model
	return m
}

// SetNoResultThreshold stores the confidence gate. Values outside [0,100]
// fail with ErrConfiguration and leave the stored threshold unchanged.
func (m *Matcher) SetNoResultThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: no-result threshold must be between 0 and 100, got %d", ErrConfiguration, threshold)
	}
	m.noResultThreshold = threshold
	return nil
}

// ConfidenceScore returns the score stored by the last Find call that ran
// with the no-result policy enabled.
func (m *Matcher) ConfidenceScore() (int, bool) {
	if !m.confidenceSet {
		return 0, false
	}
	return m.confidenceScore, true
}

// ConfidenceReasoning returns the reasoning stored by the last Find call that
// ran with the no-result policy enabled.
func (m *Matcher) ConfidenceReasoning() (string, bool) {
	if !m.confidenceSet {
		return "", false
	}
	return m.confidenceReasoning, true
}

// Find asks the model to pick the best match for the searched item out of the
// candidate list, validates the pick against the original list, and, when the
// no-result policy is enabled, scores the pick with a second independent call
// and suppresses it below the threshold. A suppressed match returns (nil, nil).
func (m *Matcher) Find(ctx context.Context) (Record, error) {
	if len(m.list) == 0 {
		return nil, fmt.Errorf("%w: list must not be empty", ErrInput)
	}
	if strings.TrimSpace(m.searchKey) == "" {
		return nil, fmt.Errorf("%w: search key must be set", ErrInput)
	}

	picked, err := m.requestMatch(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := m.resolveMatch(picked)
	if err != nil {
		return nil, err
	}

	if !m.allowNoResult {
		return matched, nil
	}

	score, reasoning, err := m.requestConfidence(ctx, matched)
	if err != nil {
		return nil, err
	}
	m.confidenceScore = score
	m.confidenceReasoning = reasoning
	m.confidenceSet = true

	if score < m.noResultThreshold {
		return nil, nil
	}
	return matched, nil
}

// requestMatch issues the first call and parses the picked item.
func (m *Matcher) requestMatch(ctx context.Context) (map[string]any, error) {
	listJSON, err := llm.EncodeJSON(m.list)
	if err != nil {
		return nil, fmt.Errorf("%w: encode list: %v", ErrAPIResponse, err)
	}
	pairJSON, err := m.searchPairJSON()
	if err != nil {
		return nil, err
	}

	content, err := m.client.Complete(ctx, llm.Request{
		Model:          m.model,
		SystemPrompt:   m.buildMatchSystemPrompt(),
		UserPrompt:     fmt.Sprintf("List: %s\nList item: %s", listJSON, pairJSON),
		ResponseFormat: llm.JSONObjectFormat(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: match call: %v", ErrAPIResponse, err)
	}

	var picked map[string]any
	if err := llm.DecodeJSON(content, &picked); err != nil {
		return nil, fmt.Errorf("%w: match call: malformed payload: %v", ErrAPIResponse, err)
	}
	if picked == nil {
		return nil, fmt.Errorf("%w: match call: picked item is not an object", ErrAPIResponse)
	}
	return picked, nil
}

// resolveMatch validates the picked item against the original list and
// returns the first original record carrying the same search-key value. The
// model's echoed object is discarded so record identity and typing survive.
func (m *Matcher) resolveMatch(picked map[string]any) (Record, error) {
	value, ok := picked[m.searchKey]
	if !ok {
		return nil, fmt.Errorf("%w: picked item lacks search key %q", ErrAPIResponse, m.searchKey)
	}
	for _, record := range m.list {
		if scalarEqual(record[m.searchKey], value) {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: picked item with %s=%v does not exist in the list", ErrAPIResponse, m.searchKey, value)
}

// requestConfidence issues the second call and parses the structured score.
func (m *Matcher) requestConfidence(ctx context.Context, matched Record) (int, string, error) {
	pairJSON, err := m.searchPairJSON()
	if err != nil {
		return 0, "", err
	}
	matchedJSON, err := llm.EncodeJSON(matched)
	if err != nil {
		return 0, "", fmt.Errorf("%w: encode matched item: %v", ErrAPIResponse, err)
	}

	content, err := m.client.Complete(ctx, llm.Request{
		Model:          m.model,
		SystemPrompt:   m.buildConfidenceSystemPrompt(),
		UserPrompt:     fmt.Sprintf("Searched item: %s\nMatched item: %s", pairJSON, matchedJSON),
		ResponseFormat: llm.JSONSchemaFormat(similarityScoreSchemaName, similarityScoreSchema()),
	})
	if err != nil {
		return 0, "", fmt.Errorf("%w: confidence call: %v", ErrAPIResponse, err)
	}

	var parsed struct {
		ConfidenceScore int    `json:"confidence_score"`
		Reasoning       string `json:"reasoning"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return 0, "", fmt.Errorf("%w: confidence call: malformed payload: %v", ErrAPIResponse, err)
	}
	return parsed.ConfidenceScore, parsed.Reasoning, nil
}

func (m *Matcher) searchPairJSON() ([]byte, error) {
	pairJSON, err := llm.EncodeJSON(map[string]any{m.searchKey: m.searchValue})
	if err != nil {
		return nil, fmt.Errorf("%w: encode searched item: %v", ErrAPIResponse, err)
	}
	return pairJSON, nil
}
