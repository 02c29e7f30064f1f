// Package generator turns a topic, tone and optional style hint into a
// validated tweet-sized draft, failing over between an ordered list of
// LLM backends.
package generator

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// MaxLength is the hard publishing cap in runes.
	MaxLength = 280
	// maxAttempts bounds validation-driven regenerations per call.
	maxAttempts = 3
)

var (
	// ErrGeneration: every backend failed for this call.
	ErrGeneration = errors.New("all generation backends failed")
	// ErrTooLong: cleaned output exceeded MaxLength. Not retried; an
	// over-length draft means prompt or model drift, not noise.
	ErrTooLong = errors.New("generated text exceeds length cap")
	// ErrNoValidDraft: every attempt was rejected by the validator.
	ErrNoValidDraft = errors.New("no valid draft after retries")
)

// Generator runs the generate -> clean -> validate -> retry loop over an
// ordered backend list (primary first, then fallback).
type Generator struct {
	backends []LLMClient
	log      *zap.Logger
}

func New(backends []LLMClient, log *zap.Logger) *Generator {
	return &Generator{backends: backends, log: log}
}

// Generate produces one publishable draft text.
func (g *Generator) Generate(ctx context.Context, topic, tone, styleHint string) (string, error) {
	system, user := buildPrompt(topic, tone, styleHint)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := g.complete(ctx, system, user)
		if err != nil {
			return "", err
		}

		text := cleanup(raw)
		if utf8.RuneCountInString(text) > MaxLength {
			return "", fmt.Errorf("%w: %d runes", ErrTooLong, utf8.RuneCountInString(text))
		}
		if Valid(text) {
			return text, nil
		}
		g.log.Warn("draft rejected by validator",
			zap.String("topic", topic),
			zap.Int("attempt", attempt),
		)
	}
	return "", ErrNoValidDraft
}

// complete tries each backend in order and returns the first success.
func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for i, backend := range g.backends {
		raw, err := backend.Complete(ctx, system, user)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		g.log.Warn("generation backend failed",
			zap.Int("backend", i),
			zap.Error(err),
		)
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, lastErr)
	}
	return "", ErrGeneration
}
