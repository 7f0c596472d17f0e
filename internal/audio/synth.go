package audio

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// A renderFunc synthesizes one hit into mono samples. velocity is the
// final gain in [0,1]; freq is the note frequency, 0 for unpitched.
type renderFunc func(velocity, freq float64, durSamples int) []float32

var renderers = map[string]renderFunc{
	"909-kick":    renderKick,
	"909-snare":   renderSnare,
	"closed-hat":  renderHat,
	"acid-bass":   renderBass,
	"square-lead": renderLead,
}

// renderKick is a pitch-swept sine: 150 Hz falling to 50 Hz with a fast
// exponential amplitude decay.
func renderKick(velocity, _ float64, _ int) []float32 {
	n := sampleRate / 5 // 200ms
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(n)
		f := 150.0*math.Pow(50.0/150.0, t*3) + 0
		phase += 2 * math.Pi * f / sampleRate
		env := math.Exp(-8 * t)
		out[i] = float32(velocity * env * math.Sin(phase))
	}
	return out
}

// renderSnare mixes a 180 Hz body tone with a noise burst.
func renderSnare(velocity, _ float64, _ int) []float32 {
	n := sampleRate / 8 // 125ms
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(n)
		tone := math.Sin(2*math.Pi*180*float64(i)/sampleRate) * math.Exp(-12*t)
		noise := (rand.Float64()*2 - 1) * math.Exp(-7*t)
		out[i] = float32(velocity * (0.4*tone + 0.6*noise))
	}
	return out
}

// renderHat is a very short filtered-noise tick.
func renderHat(velocity, _ float64, _ int) []float32 {
	n := sampleRate / 20 // 50ms
	out := make([]float32, n)
	prev := 0.0
	for i := range out {
		t := float64(i) / float64(n)
		white := rand.Float64()*2 - 1
		// one-pole highpass keeps only the sizzle
		hp := white - prev
		prev = white
		out[i] = float32(velocity * 0.5 * hp * math.Exp(-18*t))
	}
	return out
}

// renderBass is a sawtooth at the note frequency, gated for the step.
func renderBass(velocity, freq float64, durSamples int) []float32 {
	if freq <= 0 {
		freq = 55 // A1 fallback
	}
	out := make([]float32, durSamples)
	period := float64(sampleRate) / freq
	for i := range out {
		t := float64(i) / float64(durSamples)
		saw := 2*math.Mod(float64(i)/period, 1) - 1
		env := math.Min(1, t*40) * math.Exp(-3*t)
		out[i] = float32(velocity * 0.6 * saw * env)
	}
	return out
}

// renderLead is a square wave with a softer envelope.
func renderLead(velocity, freq float64, durSamples int) []float32 {
	if freq <= 0 {
		return nil
	}
	out := make([]float32, durSamples)
	period := float64(sampleRate) / freq
	for i := range out {
		t := float64(i) / float64(durSamples)
		var sq float64 = 1
		if math.Mod(float64(i)/period, 1) >= 0.5 {
			sq = -1
		}
		env := math.Min(1, t*30) * math.Exp(-2.5*t)
		out[i] = float32(velocity * 0.35 * sq * env)
	}
	return out
}

var semitoneOf = map[string]int{
	"C": 0, "C#": 1, "DB": 1, "D": 2, "D#": 3, "EB": 3, "E": 4, "F": 5,
	"F#": 6, "GB": 6, "G": 7, "G#": 8, "AB": 8, "A": 9, "A#": 10, "BB": 10, "B": 11,
}

// NoteFrequency converts a note name like "C4" or "A#3" to Hz.
// Unparseable names return 0.
func NoteFrequency(note string) float64 {
	note = strings.ToUpper(strings.TrimSpace(note))
	if len(note) < 2 {
		return 0
	}
	split := len(note)
	for i, r := range note {
		if r >= '0' && r <= '9' || r == '-' {
			split = i
			break
		}
	}
	name := note[:split]
	octave, err := strconv.Atoi(note[split:])
	if err != nil {
		return 0
	}
	semi, ok := semitoneOf[name]
	if !ok {
		return 0
	}
	// A4 = 440 Hz, MIDI 69
	midi := (octave+1)*12 + semi
	return 440 * math.Pow(2, float64(midi-69)/12)
}
