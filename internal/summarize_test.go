package internal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	prompt  string
	summary Summary
	err     error
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return "hello", f.err
}

func (f *fakeProvider) GenerateObject(_ context.Context, prompt string, target any) error {
	f.prompt = prompt
	if f.err != nil {
		return f.err
	}
	*target.(*Summary) = f.summary
	return nil
}

func TestSummarizeMemories(t *testing.T) {
	p := &fakeProvider{summary: Summary{Title: "Childhood", Tags: []string{"family"}}}
	roots := []*MemoryNode{
		dated("a", "2001-05-01", dated("b", "2001-06-01")),
	}
	roots[0].Title = "School"
	roots[0].Children[0].Title = "First day"
	roots[0].Children[0].Content = "Rain.\n\nNew shoes."

	got, err := SummarizeMemories(context.Background(), p, roots)
	require.NoError(t, err)
	assert.Equal(t, "Childhood", got.Title)

	assert.Contains(t, p.prompt, "- School (2001-05-01)\n")
	assert.Contains(t, p.prompt, "  - First day (2001-06-01)\n")
	assert.Contains(t, p.prompt, "    New shoes.\n")
}

func TestSummarizeMemoriesEmpty(t *testing.T) {
	p := &fakeProvider{}

	got, err := SummarizeMemories(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, "Empty", got.Title)
	assert.Empty(t, p.prompt)
}

func TestSummarizeMemoriesErrors(t *testing.T) {
	_, err := SummarizeMemories(context.Background(), nil, []*MemoryNode{node("a")})
	assert.ErrorIs(t, err, ErrNoProvider)

	boom := errors.New("boom")
	_, err = SummarizeMemories(context.Background(), &fakeProvider{err: boom}, []*MemoryNode{node("a")})
	assert.ErrorIs(t, err, boom)
}

func TestSummaryPromptTruncatesContent(t *testing.T) {
	n := node("a")
	n.Content = strings.Repeat("x", maxPromptContent+50)

	prompt := SummaryPrompt([]*MemoryNode{n})
	assert.Contains(t, prompt, strings.Repeat("x", maxPromptContent)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", maxPromptContent+1))
}

func TestProviderService(t *testing.T) {
	scope := NewScope(ScopeProject, t.TempDir())
	svc := NewProviderService(scope)

	names, def, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, def)

	assert.ErrorIs(t, svc.Add("llamafile", ProviderConfig{}), ErrUnsupportedProvider)

	require.NoError(t, svc.Add("openai", ProviderConfig{APIKey: "k", Model: "m"}))
	require.NoError(t, svc.Add("anthropic", ProviderConfig{APIKey: "k", Model: "m"}))

	names, def, err = svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"anthropic", "openai"}, names)
	assert.Equal(t, "openai", def)

	require.NoError(t, svc.SetDefault("anthropic"))
	assert.Error(t, svc.SetDefault("openrouter"))

	require.NoError(t, svc.Remove("anthropic"))
	_, def, err = svc.List()
	require.NoError(t, err)
	assert.Empty(t, def)

	_, err = svc.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoProvider)
}
