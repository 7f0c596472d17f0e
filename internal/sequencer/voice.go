package sequencer

import (
	"sync"
	"time"
)

// Trigger is one playable event handed to a voice. All triggers emitted
// in the same tick carry the same At timestamp, so multi-instrument hits
// stay sample-synchronized no matter the iteration order.
type Trigger struct {
	Track    string
	Note     string // empty for percussive voices
	Velocity float64
	Duration time.Duration
	At       time.Time
}

// Voice is an opaque sound producer. Synthesis is entirely its business;
// the sequencer only schedules. Implementations must not block: they run
// on the scheduling goroutine.
type Voice interface {
	Trigger(t Trigger)
}

// VoiceBank maps track names to voices. It is an explicitly constructed
// and owned object passed into the sequencer - there is no process-wide
// sound registry. A track with no voice bound is simply silent.
type VoiceBank struct {
	mu     sync.RWMutex
	voices map[string]Voice
}

func NewVoiceBank() *VoiceBank {
	return &VoiceBank{voices: make(map[string]Voice)}
}

// Bind assigns a voice to a track name, replacing any previous binding.
func (b *VoiceBank) Bind(track string, v Voice) {
	b.mu.Lock()
	b.voices[track] = v
	b.mu.Unlock()
}

// Get returns the voice for a track, or nil.
func (b *VoiceBank) Get(track string) Voice {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.voices[track]
}
