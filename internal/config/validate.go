package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/llmmatch/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set LLMMATCH_API_KEY or OPENAI_API_KEY env var or edit %s (create with 'llmmatch config init')", defaultPath)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url must be a valid URL, got %q", c.LLM.BaseURL)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("llm.base_url must use http or https, got %q", c.LLM.BaseURL)
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.NoResultThreshold < 0 || c.Matcher.NoResultThreshold > 100 {
		return errors.New("matcher.no_result_threshold must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
