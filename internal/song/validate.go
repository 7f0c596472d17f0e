package song

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes why a document was rejected. The whole
// document is rejected on the first failure; callers keep their previous
// known-good document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid song document: %s: %s", e.Field, e.Reason)
}

// Validate runs the structural and range checks a document must pass
// before it reaches the sequencer or storage. The real-time path relies
// on this: it never validates, it only degrades silently.
func Validate(d *Document) error {
	if d == nil {
		return &ValidationError{Field: "document", Reason: "nil"}
	}
	if d.Metadata.Format != FormatTag {
		return &ValidationError{
			Field:  "metadata.format",
			Reason: fmt.Sprintf("unsupported format %q (want %q)", d.Metadata.Format, FormatTag),
		}
	}
	if err := validate.Struct(d); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &ValidationError{
				Field:  errs[0].Namespace(),
				Reason: fmt.Sprintf("failed %q constraint", errs[0].Tag()),
			}
		}
		return &ValidationError{Field: "document", Reason: err.Error()}
	}
	if d.Metadata.Steps != d.Metadata.Bars*StepsPerBar {
		return &ValidationError{
			Field:  "metadata.steps",
			Reason: fmt.Sprintf("steps=%d must equal bars*16=%d", d.Metadata.Steps, d.Metadata.Bars*StepsPerBar),
		}
	}
	if len(d.Tracks) == 0 {
		return &ValidationError{Field: "tracks", Reason: "at least one track required"}
	}
	for name, track := range d.Tracks {
		if err := validateTrack(name, track, d.Metadata.Steps); err != nil {
			return err
		}
	}
	for name, section := range d.Arrangement {
		if err := validateSection(name, section, d); err != nil {
			return err
		}
	}
	return nil
}

func validateTrack(name string, t Track, steps int) error {
	field := func(f string) string { return fmt.Sprintf("tracks.%s.%s", name, f) }

	seen := make(map[int]bool, len(t.Pattern))
	for _, idx := range t.Pattern {
		if idx < 0 || idx >= steps {
			return &ValidationError{
				Field:  field("pattern"),
				Reason: fmt.Sprintf("step index %d out of range [0,%d)", idx, steps),
			}
		}
		if seen[idx] {
			return &ValidationError{
				Field:  field("pattern"),
				Reason: fmt.Sprintf("duplicate step index %d", idx),
			}
		}
		seen[idx] = true
	}
	if len(t.Notes) > 0 && len(t.Notes) != len(t.Pattern) {
		return &ValidationError{
			Field:  field("notes"),
			Reason: fmt.Sprintf("notes length %d must match pattern length %d", len(t.Notes), len(t.Pattern)),
		}
	}
	for i, v := range t.Velocity {
		if v < 0 || v > 1 {
			return &ValidationError{
				Field:  field("velocity"),
				Reason: fmt.Sprintf("velocity[%d]=%v outside [0,1]", i, v),
			}
		}
	}
	for _, idx := range t.GhostNotes {
		if idx < 0 || idx >= steps {
			return &ValidationError{
				Field:  field("ghostNotes"),
				Reason: fmt.Sprintf("ghost step index %d out of range [0,%d)", idx, steps),
			}
		}
	}
	return nil
}

func validateSection(name string, s Section, d *Document) error {
	field := fmt.Sprintf("arrangement.%s", name)
	if s.Bars[0] < 1 || s.Bars[1] > d.Metadata.Bars || s.Bars[0] > s.Bars[1] {
		return &ValidationError{
			Field:  field + ".bars",
			Reason: fmt.Sprintf("bar range [%d,%d] outside [1,%d]", s.Bars[0], s.Bars[1], d.Metadata.Bars),
		}
	}
	if !s.ActiveTracks.All {
		for _, trackName := range s.ActiveTracks.Names {
			if _, ok := d.Tracks[trackName]; !ok {
				return &ValidationError{
					Field:  field + ".activeTracks",
					Reason: fmt.Sprintf("unknown track %q", trackName),
				}
			}
		}
	}
	return nil
}
