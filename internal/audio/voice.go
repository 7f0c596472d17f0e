package audio

import (
	"github.com/basedrum/basedrum-api/internal/sequencer"
)

// synthVoice renders one hit per trigger. Rendering a sub-second buffer
// is microseconds of work, so doing it on the scheduling goroutine is
// fine; playback itself is asynchronous inside oto.
type synthVoice struct {
	engine *Engine
	render renderFunc
}

func (v *synthVoice) Trigger(t sequencer.Trigger) {
	if t.Velocity <= 0 {
		return
	}
	durSamples := int(t.Duration.Seconds() * sampleRate)
	if durSamples <= 0 {
		durSamples = sampleRate / 10
	}
	freq := NoteFrequency(t.Note)
	v.engine.play(v.render(t.Velocity, freq, durSamples))
}
