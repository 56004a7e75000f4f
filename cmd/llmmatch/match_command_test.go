package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// newMatchStub serves the match response followed by the confidence response.
func newMatchStub(t *testing.T, matchContent, confidenceContent string) *httptest.Server {
	t.Helper()
	var calls int
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		content := matchContent
		if calls > 1 {
			content = confidenceContent
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMatchCommandJSONOutput(t *testing.T) {
	server := newMatchStub(t,
		`{"city":"Praha"}`,
		`{"confidence_score":90,"reasoning":"Praha is the Czech endonym for Prague and denotes exactly the same capital city."}`,
	)
	defer server.Close()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", fmt.Sprintf("[llm]\napi_key = \"test\"\nbase_url = %q\n", server.URL))
	listPath := writeFile(t, dir, "list.json", `[{"city":"Praha"},{"city":"Brno"}]`)

	out, err := runCommand(t,
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "absent.env"),
		"match", "--list", listPath, "--key", "city", "--value", "Prague", "--json",
	)
	if err != nil {
		t.Fatalf("match command failed: %v", err)
	}

	var parsed struct {
		Matched         bool           `json:"matched"`
		Record          map[string]any `json:"record"`
		ConfidenceScore *int           `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("parse output %q: %v", out, err)
	}
	if !parsed.Matched || parsed.Record["city"] != "Praha" {
		t.Fatalf("unexpected output %q", out)
	}
	if parsed.ConfidenceScore == nil || *parsed.ConfidenceScore != 90 {
		t.Fatalf("expected confidence 90 in output %q", out)
	}
}

func TestMatchCommandSuppressedMatch(t *testing.T) {
	server := newMatchStub(t,
		`{"city":"Brno"}`,
		`{"confidence_score":15,"reasoning":"The searched value shares almost nothing with the matched city beyond the country it lies in."}`,
	)
	defer server.Close()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", fmt.Sprintf("[llm]\napi_key = \"test\"\nbase_url = %q\n", server.URL))
	listPath := writeFile(t, dir, "list.json", `[{"city":"Praha"},{"city":"Brno"}]`)

	out, err := runCommand(t,
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "absent.env"),
		"match", "--list", listPath, "--key", "city", "--value", "Ostrava", "--json",
	)
	if err != nil {
		t.Fatalf("match command failed: %v", err)
	}

	var parsed struct {
		Matched         bool           `json:"matched"`
		Record          map[string]any `json:"record"`
		ConfidenceScore *int           `json:"confidence_score"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("parse output %q: %v", out, err)
	}
	if parsed.Matched || parsed.Record != nil {
		t.Fatalf("expected suppressed match, got %q", out)
	}
	if parsed.ConfidenceScore == nil || *parsed.ConfidenceScore != 15 {
		t.Fatalf("expected confidence 15 in output %q", out)
	}
}

func TestMatchCommandRejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", "[llm]\napi_key = \"test\"\n")
	listPath := writeFile(t, dir, "list.json", `[{"city":"Praha"}]`)

	_, err := runCommand(t,
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "absent.env"),
		"match", "--list", listPath, "--key", "city", "--value", "Prague", "--threshold", "150",
	)
	if err == nil || !strings.Contains(err.Error(), "between 0 and 100") {
		t.Fatalf("expected threshold error, got %v", err)
	}
}

func TestParseScalar(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{in: "Prague", want: "Prague"},
		{in: "42", want: float64(42)},
		{in: "1.5", want: float64(1.5)},
		{in: "true", want: true},
		{in: "false", want: false},
		{in: "TRUE", want: "TRUE"},
	}
	for _, tc := range cases {
		if got := parseScalar(tc.in); got != tc.want {
			t.Fatalf("parseScalar(%q) = %v (%T), want %v (%T)", tc.in, got, got, tc.want, tc.want)
		}
	}
}

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()
	listPath := writeFile(t, dir, "list.json", `[{"city":"Praha"},{"city":"Brno"}]`)

	records, err := readRecords(listPath)
	if err != nil {
		t.Fatalf("readRecords returned error: %v", err)
	}
	if len(records) != 2 || records[0]["city"] != "Praha" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestReadRecordsRejectsNonArray(t *testing.T) {
	dir := t.TempDir()
	listPath := writeFile(t, dir, "list.json", `{"city":"Praha"}`)

	if _, err := readRecords(listPath); err == nil {
		t.Fatal("expected error for non-array list file")
	}
}
