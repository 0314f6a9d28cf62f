// Package generator wraps the text-generation collaborator used to describe rewards.
package generator

import (
	"context"
	"fmt"
	"strings"
)

// Generator turns a prompt into free text. Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Template is an offline generator that echoes the prompt into a fixed sentence.
type Template struct{}

func (Template) Name() string { return "template" }

func (Template) Generate(_ context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	return fmt.Sprintf("A commemorative LiquiMind collectible. %s", prompt), nil
}
