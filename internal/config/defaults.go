package config

const (
	defaultBaseURL           = "https://api.openai.com/v1/chat/completions"
	defaultModel             = "gpt-4.1-mini"
	defaultTimeoutSeconds    = 60
	defaultNoResultThreshold = 80
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LLM: LLM{
			BaseURL:        defaultBaseURL,
			Model:          defaultModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Matcher: Matcher{
			AllowNoResult:     true,
			NoResultThreshold: defaultNoResultThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
