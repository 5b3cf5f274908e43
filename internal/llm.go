package internal

import "context"

// Provider is a language model memtree can ask for summaries.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GenerateObject(ctx context.Context, prompt string, target any) error
}

// Summary is the structured answer requested from a provider.
type Summary struct {
	Title     string   `json:"title"`
	Overview  string   `json:"overview"`
	KeyPoints []string `json:"key_points"`
	Tags      []string `json:"tags"`
	Period    string   `json:"period"`
}
