package internal

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var ErrNoProvider = errors.New("no provider configured")

// maxPromptContent caps how much of one memory's text goes into a prompt.
const maxPromptContent = 2000

// SummarizeMemories asks provider for a summary of the given subtrees.
func SummarizeMemories(ctx context.Context, provider Provider, roots []*MemoryNode) (*Summary, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	if len(roots) == 0 {
		return &Summary{Title: "Empty", Overview: "No memories found"}, nil
	}

	var summary Summary
	if err := provider.GenerateObject(ctx, SummaryPrompt(roots), &summary); err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	return &summary, nil
}

// SummaryPrompt renders the subtrees as an indented outline.
func SummaryPrompt(roots []*MemoryNode) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following personal memories. ")
	sb.WriteString("Nested entries belong to the entry above them.\n\n")

	walkForest(roots, func(n *MemoryNode, depth int) {
		indent := strings.Repeat("  ", depth-1)
		fmt.Fprintf(&sb, "%s- %s (%s)\n", indent, n.Title, n.DisplayDate())

		content := n.Content
		if len(content) > maxPromptContent {
			content = content[:maxPromptContent] + "..."
		}
		for _, line := range strings.Split(content, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintf(&sb, "%s  %s\n", indent, line)
			}
		}
		if len(n.Media) > 0 {
			fmt.Fprintf(&sb, "%s  [%d attachment(s)]\n", indent, len(n.Media))
		}
	})
	return sb.String()
}

// ProviderService manages the LLM providers stored in a workspace config.
type ProviderService struct {
	scope Scope
}

func NewProviderService(scope Scope) *ProviderService {
	return &ProviderService{scope: scope}
}

func (s *ProviderService) List() ([]string, string, error) {
	cfg, err := LoadConfig(s.scope)
	if err != nil {
		return nil, "", err
	}
	return slices.Sorted(maps.Keys(cfg.Providers)), cfg.DefaultProvider, nil
}

func (s *ProviderService) Add(name string, providerCfg ProviderConfig) error {
	if !slices.Contains(SupportedProviders, name) {
		return fmt.Errorf("%w: %s", ErrUnsupportedProvider, name)
	}

	cfg, err := LoadConfig(s.scope)
	if err != nil {
		return err
	}

	cfg.Providers[name] = providerCfg
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = name
	}
	return SaveConfig(s.scope, cfg)
}

func (s *ProviderService) Remove(name string) error {
	cfg, err := LoadConfig(s.scope)
	if err != nil {
		return err
	}

	if _, exists := cfg.Providers[name]; !exists {
		return fmt.Errorf("provider %q not found", name)
	}
	delete(cfg.Providers, name)
	if cfg.DefaultProvider == name {
		cfg.DefaultProvider = ""
	}
	return SaveConfig(s.scope, cfg)
}

func (s *ProviderService) SetDefault(name string) error {
	cfg, err := LoadConfig(s.scope)
	if err != nil {
		return err
	}

	if _, exists := cfg.Providers[name]; !exists {
		return fmt.Errorf("provider %q not found", name)
	}

	cfg.DefaultProvider = name
	return SaveConfig(s.scope, cfg)
}

// Open builds the named provider, or the default one when name is empty.
func (s *ProviderService) Open(ctx context.Context, name string) (Provider, error) {
	cfg, err := LoadConfig(s.scope)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = cfg.DefaultProvider
	}
	if name == "" {
		return nil, ErrNoProvider
	}

	providerCfg, exists := cfg.Providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	return NewFantasyProvider(ctx, name, providerCfg)
}

func (s *ProviderService) Test(ctx context.Context, name string) error {
	provider, err := s.Open(ctx, name)
	if err != nil {
		return err
	}
	_, err = provider.Complete(ctx, "Say hello")
	return err
}
