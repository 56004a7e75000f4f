package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatalf("sample config missing llm section: %q", string(data))
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}

	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite failed: %v", err)
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", "[llm]\napi_key = \"sk-verysecretvalue\"\n")

	out, err := runCommand(t,
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "absent.env"),
		"config", "show",
	)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out, "sk-verysecretvalue") {
		t.Fatalf("expected API key to be redacted, got %q", out)
	}
	if !strings.Contains(out, "sk-v...alue") {
		t.Fatalf("expected redacted key marker, got %q", out)
	}
}

func TestRedactSecret(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "short", want: "****"},
		{in: "sk-verysecretvalue", want: "sk-v...alue"},
	}
	for _, tc := range cases {
		if got := redactSecret(tc.in); got != tc.want {
			t.Fatalf("redactSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
