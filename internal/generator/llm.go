package generator

import "context"

// LLMClient abstracts one chat-completion backend so the generator can
// fail over between providers and tests can substitute fakes.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Settings carries what a concrete backend needs to construct itself.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}
