package llm

import "context"

// Message is one chat turn. Role is "system", "user" or "assistant"; the
// providers also accept "model" for assistant turns.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Temperature float64
	MaxTokens   int
	// Model overrides the provider's configured model for one call.
	Model string
	// JSON asks the backend to constrain the reply to a JSON object.
	JSON bool
}

type Option func(*Options)

func WithTemperature(t float64) Option { return func(o *Options) { o.Temperature = t } }

func WithModel(model string) Option { return func(o *Options) { o.Model = model } }

func WithMaxTokens(n int) Option { return func(o *Options) { o.MaxTokens = n } }

func WithJSON() Option { return func(o *Options) { o.JSON = true } }

// LLMProvider is a chat model backend. Generate is Chat with a single user turn.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
