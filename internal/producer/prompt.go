package producer

import (
	"fmt"
	"strings"

	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/pkg/embedded"
)

// PromptBuilder assembles the producer system prompt from the embedded
// data files plus the per-request musical constraints.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSystemPrompt composes the full system prompt.
func (b *PromptBuilder) BuildSystemPrompt(constraints *music.Constraints) string {
	sections := []string{
		strings.TrimSpace(string(embedded.SystemPromptTxt)),
		strings.TrimSpace(string(embedded.ArrangementGuidelinesTxt)),
		strings.TrimSpace(string(embedded.OutputFormatInstructionsTxt)),
	}
	if constraints != nil {
		sections = append(sections, b.constraintContext(constraints))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

// BuildInput wraps the serialized seed document for the user turn.
func (b *PromptBuilder) BuildInput(seedJSON []byte) string {
	return fmt.Sprintf("Expand this seed loop into a full 32-bar arrangement:\n\n%s", seedJSON)
}

func (b *PromptBuilder) constraintContext(c *music.Constraints) string {
	var sb strings.Builder
	sb.WriteString("Constraints for this track:\n")
	fmt.Fprintf(&sb, "- Tempo: %d bpm (do not change)\n", c.Tempo)
	fmt.Fprintf(&sb, "- Key: %s %s (all melodic content stays in this scale)\n", c.Key, c.Mode)
	fmt.Fprintf(&sb, "- Density: %.2f\n", c.Density)
	fmt.Fprintf(&sb, "- Energy: %.2f\n", c.Energy)
	fmt.Fprintf(&sb, "- Complexity: %.2f", c.Complexity)
	return sb.String()
}
