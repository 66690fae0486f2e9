package ollama

import (
	"context"
	"net/http"
	"time"

	"copyflow-be/pkg/llm"
)

const providerName = "ollama"

// OllamaProvider talks to a local Ollama daemon through /api/chat.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client:    &http.Client{Timeout: timeout},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// role maps the provider-agnostic roles onto Ollama's; "model" is what the
// gateway prompts use for earlier replies.
func role(r string) string {
	if r == "model" {
		return "assistant"
	}
	return r
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Options{Temperature: 0.7, Model: o.ModelName}
	for _, opt := range opts {
		opt(&options)
	}

	req := ollamaChatRequest{
		Model:    options.Model,
		Messages: make([]ollamaMessage, 0, len(history)),
		Options:  ollamaOptions{Temperature: options.Temperature, NumPredict: options.MaxTokens},
	}
	for _, msg := range history {
		req.Messages = append(req.Messages, ollamaMessage{Role: role(msg.Role), Content: msg.Content})
	}
	if options.JSON {
		req.Format = "json"
	}

	var resp ollamaChatResponse
	if err := llm.PostJSON(ctx, o.Client, providerName, o.BaseURL+"/api/chat", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
