package producer

import "context"

// Provider defines the interface for LLM providers behind the expansion
// pass. All providers MUST support structured output (JSON Schema): the
// producer only ever accepts output it can validate as a song document.
type Provider interface {
	// Generate runs one structured-output completion.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for one producer call
type GenerationRequest struct {
	Model        string
	SystemPrompt string
	Input        string // the serialized seed document plus instructions
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// GenerationResponse contains the raw result from the LLM
type GenerationResponse struct {
	RawOutput    string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
