package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
	"charm.land/fantasy/schema"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

// SupportedProviders lists the provider names NewFantasyProvider understands.
var SupportedProviders = []string{"openai", "anthropic", "openrouter"}

var _ Provider = (*FantasyProvider)(nil)

type FantasyProvider struct {
	model fantasy.LanguageModel
	name  string
}

// NewFantasyProvider builds a provider from a named entry of the config.
func NewFantasyProvider(ctx context.Context, name string, cfg ProviderConfig) (*FantasyProvider, error) {
	var provider fantasy.Provider
	var err error

	switch name {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider, err = openai.New(opts...)

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case "openrouter":
		provider, err = openrouter.New(openrouter.WithAPIKey(cfg.APIKey))

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, name)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}

	return &FantasyProvider{model: model, name: name}, nil
}

func (p *FantasyProvider) Name() string {
	return p.name
}

func (p *FantasyProvider) Complete(ctx context.Context, prompt string) (string, error) {
	agent := fantasy.NewAgent(p.model)

	result, err := agent.Generate(ctx, fantasy.AgentCall{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return result.Response.Content.Text(), nil
}

// GenerateObject asks for JSON matching target's schema and decodes the
// answer into target, which must be a pointer.
func (p *FantasyProvider) GenerateObject(ctx context.Context, prompt string, target any) error {
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer")
	}

	resp, err := p.model.GenerateObject(ctx, fantasy.ObjectCall{
		Prompt: fantasy.Prompt{fantasy.NewUserMessage(prompt)},
		Schema: schema.Generate(t.Elem()),
	})
	if err != nil {
		return fmt.Errorf("generate object: %w", err)
	}

	// The model answers with loosely typed JSON; round-trip it into target.
	raw, err := json.Marshal(resp.Object)
	if err != nil {
		return fmt.Errorf("encode object: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	return nil
}
