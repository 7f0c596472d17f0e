package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		note string
		want float64
	}{
		{"A4", 440},
		{"C4", 261.63},
		{"C2", 65.41},
		{"A#3", 233.08},
		{"Eb3", 155.56},
	}
	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			assert.InDelta(t, tt.want, NoteFrequency(tt.note), 0.01)
		})
	}
}

func TestNoteFrequencyUnparseable(t *testing.T) {
	for _, note := range []string{"", "X4", "C", "4", "H9"} {
		assert.Zero(t, NoteFrequency(note), "note %q", note)
	}
}

func TestRenderersStayInRange(t *testing.T) {
	for name, render := range renderers {
		t.Run(name, func(t *testing.T) {
			samples := render(1.0, 220, sampleRate/4)
			for _, s := range samples {
				assert.LessOrEqual(t, s, float32(1.0))
				assert.GreaterOrEqual(t, s, float32(-1.0))
			}
		})
	}
}

func TestFloatBufferToLEInterleavesStereo(t *testing.T) {
	out := floatBufferToLE([]float32{0.5, -0.25})
	assert.Len(t, out, 16)
	// left and right channels carry the same sample
	assert.Equal(t, out[0:4], out[4:8])
	assert.Equal(t, out[8:12], out[12:16])
}
