package config

import (
	"strings"
	"time"
)

// AIConfig contains study assistant (chat completion) configuration.
type AIConfig struct {
	// CompletionURL is the chat completion endpoint. The assistant is
	// disabled when empty.
	CompletionURL string `env:"AI_COMPLETION_URL"`

	// APIKey is sent as a bearer token when set.
	APIKey string `env:"AI_API_KEY"`

	// Model is the model identifier forwarded with each request.
	Model string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`

	// Timeout bounds a single completion round trip.
	Timeout time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`

	// ReplyPath is a JMESPath expression locating the assistant reply in
	// the provider response. Empty uses the OpenAI completion shape.
	ReplyPath string `env:"AI_REPLY_PATH"`

	// SystemPrompt is prepended to every conversation when set.
	SystemPrompt string `env:"AI_SYSTEM_PROMPT"`

	// ContextWindow is how many stored turns accompany each prompt.
	ContextWindow int `env:"AI_CONTEXT_WINDOW" envDefault:"10"`

	// RequestsPerMinute caps each student's chat rate.
	RequestsPerMinute int `env:"AI_REQUESTS_PER_MINUTE" envDefault:"10"`

	// Retention is how long chat history is kept before the pruner
	// deletes it.
	Retention time.Duration `env:"AI_CHAT_RETENTION" envDefault:"2160h"`

	// PruneInterval is the pruner tick interval.
	PruneInterval time.Duration `env:"AI_PRUNE_INTERVAL" envDefault:"1h"`
}

// Sanitize applies guardrails to study assistant configuration values.
func (a *AIConfig) Sanitize() {
	a.CompletionURL = strings.TrimSpace(a.CompletionURL)
	if a.Timeout <= 0 {
		a.Timeout = 60 * time.Second
	}
	if a.ContextWindow < 1 {
		a.ContextWindow = 10
	}
	if a.RequestsPerMinute < 1 {
		a.RequestsPerMinute = 10
	}
	if a.Retention <= 0 {
		a.Retention = 90 * 24 * time.Hour
	}
	if a.PruneInterval <= 0 {
		a.PruneInterval = time.Hour
	}
}

// IsEnabled reports whether the study assistant endpoints should be wired.
func (a *AIConfig) IsEnabled() bool {
	return a.CompletionURL != ""
}
