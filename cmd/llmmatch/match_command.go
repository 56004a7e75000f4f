package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"llmmatch/internal/config"
	"llmmatch/internal/logging"
	"llmmatch/internal/match"
	"llmmatch/internal/services/llm"
)

type matchOutput struct {
	Matched             bool         `json:"matched"`
	Record              match.Record `json:"record,omitempty"`
	ConfidenceScore     *int         `json:"confidence_score,omitempty"`
	ConfidenceReasoning string       `json:"confidence_reasoning,omitempty"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		listPath      string
		key           string
		value         string
		description   string
		instructions  string
		systemMessage string
		model         string
		allowNoResult bool
		threshold     int
		jsonOut       bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the list item most similar to the searched value",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			records, err := readRecords(listPath)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			logger = logger.With(logging.String("run_id", uuid.NewString()))

			matcher, err := newMatcher(cfg)
			if err != nil {
				return err
			}
			matcher.
				SetList(records).
				SetSearchedItem(key, parseScalar(value)).
				SetDescriptionOfList(description).
				SetAdditionalInstructions(instructions).
				SetSystemMessage(systemMessage)
			if cmd.Flags().Changed("allow-no-result") {
				matcher.SetAllowNoResult(allowNoResult)
			} else {
				matcher.SetAllowNoResult(cfg.Matcher.AllowNoResult)
			}
			gate := cfg.Matcher.NoResultThreshold
			if cmd.Flags().Changed("threshold") {
				gate = threshold
			}
			if err := matcher.SetNoResultThreshold(gate); err != nil {
				return err
			}
			if model != "" {
				matcher.SetModel(model)
			}

			start := time.Now()
			record, err := matcher.Find(cmd.Context())
			if err != nil {
				return err
			}

			out := matchOutput{Matched: record != nil, Record: record}
			if score, ok := matcher.ConfidenceScore(); ok {
				out.ConfidenceScore = &score
			}
			if reasoning, ok := matcher.ConfidenceReasoning(); ok {
				out.ConfidenceReasoning = reasoning
			}

			logger.Debug("match completed",
				logging.Bool("matched", out.Matched),
				logging.Int("candidates", len(records)),
				logging.Duration("elapsed", time.Since(start)),
			)

			if jsonOut || !isTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, out)
			}
			return renderMatchOutput(cmd, out, gate)
		},
	}

	cmd.Flags().StringVarP(&listPath, "list", "l", "", "Path to a JSON file containing the candidate list (array of objects)")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Field name used as the match anchor")
	cmd.Flags().StringVarP(&value, "value", "v", "", "Searched value; JSON numbers and booleans are matched as such")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Free-text description of the candidate list")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "Additional free-text guidance for the model")
	cmd.Flags().StringVar(&systemMessage, "system-message", "", "Replace the generated system prompt for the match call")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model override for this run")
	cmd.Flags().BoolVar(&allowNoResult, "allow-no-result", true, "Score the match and suppress it below the threshold")
	cmd.Flags().IntVar(&threshold, "threshold", match.DefaultNoResultThreshold, "Confidence (1-100) below which no result is returned")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Always print JSON output")
	_ = cmd.MarkFlagRequired("list")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newMatcher(cfg *config.Config) (*match.Matcher, error) {
	return match.New(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
}

func readRecords(path string) ([]match.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	var records []match.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse list file %s: expected a JSON array of objects: %w", path, err)
	}
	return records, nil
}

// parseScalar interprets the flag text as a JSON number or boolean when it
// parses as one, keeping the literal string otherwise so values never need
// shell quoting.
func parseScalar(value string) any {
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
		return b
	}
	return value
}

func renderMatchOutput(cmd *cobra.Command, out matchOutput, gate int) error {
	w := cmd.OutOrStdout()
	if !out.Matched {
		if out.ConfidenceScore != nil {
			fmt.Fprintf(w, "No match: confidence %d below threshold %d\n", *out.ConfidenceScore, gate)
			if out.ConfidenceReasoning != "" {
				fmt.Fprintf(w, "Reasoning: %s\n", out.ConfidenceReasoning)
			}
		} else {
			fmt.Fprintln(w, "No match")
		}
		return nil
	}

	fields := make([]string, 0, len(out.Record))
	for field := range out.Record {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		rows = append(rows, []string{field, formatValue(out.Record[field])})
	}
	fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows))

	if out.ConfidenceScore != nil {
		fmt.Fprintf(w, "Confidence: %d/100 (threshold %d)\n", *out.ConfidenceScore, gate)
		if out.ConfidenceReasoning != "" {
			fmt.Fprintf(w, "Reasoning: %s\n", out.ConfidenceReasoning)
		}
	}
	return nil
}

func formatValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(encoded)
	}
}
