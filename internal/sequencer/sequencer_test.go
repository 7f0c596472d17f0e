package sequencer

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basedrum/basedrum-api/internal/song"
)

// recordingVoice captures every trigger it receives.
type recordingVoice struct {
	mu       sync.Mutex
	triggers []Trigger
}

func (v *recordingVoice) Trigger(t Trigger) {
	v.mu.Lock()
	v.triggers = append(v.triggers, t)
	v.mu.Unlock()
}

func (v *recordingVoice) all() []Trigger {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Trigger, len(v.triggers))
	copy(out, v.triggers)
	return out
}

func oneBarDocument() *song.Document {
	return &song.Document{
		Metadata: song.Metadata{
			Title:   "Loop",
			Artist:  "basedrum",
			Version: "1.0",
			Created: "2026-08-28T00:00:00Z",
			BPM:     130,
			Bars:    1,
			Steps:   16,
			Format:  song.FormatTag,
		},
		Tracks: map[string]song.Track{
			"kick": {
				Pattern:  []int{0, 4, 8, 12},
				Velocity: []float64{1.0, 0.7, 0.7, 0.7},
				Volume:   0,
			},
			"melody": {
				Pattern: []int{0},
				Notes:   []string{"A3"},
				Volume:  0,
			},
		},
	}
}

func thirtyTwoBarDocument() *song.Document {
	doc := oneBarDocument()
	doc.Metadata.Bars = 32
	doc.Metadata.Steps = 512
	doc.Arrangement = map[string]song.Section{
		"intro": {
			Bars:         song.BarRange{1, 4},
			ActiveTracks: song.TrackList{Names: []string{"kick"}},
		},
		"drop": {
			Bars:         song.BarRange{5, 32},
			ActiveTracks: song.TrackList{All: true},
		},
	}
	return doc
}

func TestTickTriggersVoicesWithSharedTimestamp(t *testing.T) {
	kick := &recordingVoice{}
	melody := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)
	voices.Bind("melody", melody)

	seq := New(voices, nil, nil, Callbacks{})
	seq.SetDocument(oneBarDocument())

	at := time.Now()
	seq.tick(0, at)

	kicks := kick.all()
	notes := melody.all()
	require.Len(t, kicks, 1)
	require.Len(t, notes, 1)
	assert.Equal(t, at, kicks[0].At)
	assert.Equal(t, at, notes[0].At)
	assert.Equal(t, "A3", notes[0].Note)
	assert.InDelta(t, 1.0, kicks[0].Velocity, 1e-9) // full velocity at 0 dB
}

func TestTickBakesVolumeIntoVelocity(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	doc := oneBarDocument()
	track := doc.Tracks["kick"]
	track.Volume = -6
	doc.Tracks["kick"] = track
	delete(doc.Tracks, "melody")

	seq := New(voices, nil, nil, Callbacks{})
	seq.SetDocument(doc)
	seq.tick(4, time.Now())

	kicks := kick.all()
	require.Len(t, kicks, 1)
	assert.InDelta(t, 0.7*math.Pow(10, -6.0/20), kicks[0].Velocity, 1e-9)
}

func TestTickSkipsSilentAndMutedTracks(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	doc := oneBarDocument()
	delete(doc.Tracks, "melody")

	control := NewTrackControl()
	seq := New(voices, control, nil, Callbacks{})
	seq.SetDocument(doc)

	control.SetMuted("kick", true)
	seq.tick(0, time.Now())
	assert.Empty(t, kick.all())

	control.SetMuted("kick", false)
	control.SetVolume("kick", -60) // below the silence floor
	seq.tick(0, time.Now())
	assert.Empty(t, kick.all())

	control.ClearVolume("kick")
	seq.tick(0, time.Now())
	assert.Len(t, kick.all(), 1)
}

func TestTickHonorsDocumentMuteFlag(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	doc := oneBarDocument()
	track := doc.Tracks["kick"]
	track.Muted = true
	doc.Tracks["kick"] = track

	seq := New(voices, nil, nil, Callbacks{})
	seq.SetDocument(doc)
	seq.tick(0, time.Now())
	assert.Empty(t, kick.all())
}

func TestTickArrangementGating(t *testing.T) {
	kick := &recordingVoice{}
	melody := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)
	voices.Bind("melody", melody)

	doc := thirtyTwoBarDocument()
	doc.Tracks["kick"] = song.Track{Pattern: []int{0, 64}, Volume: 0}
	doc.Tracks["melody"] = song.Track{Pattern: []int{0, 64}, Notes: []string{"A3", "A3"}, Volume: 0}

	seq := New(voices, nil, nil, Callbacks{})
	seq.SetDocument(doc)

	// Bar 1 (intro): kick only, the melody is gated out.
	seq.tick(0, time.Now())
	assert.Len(t, kick.all(), 1)
	assert.Empty(t, melody.all())

	// Bar 5 (drop): everything plays.
	seq.tick(4*song.StepsPerBar, time.Now())
	assert.Len(t, kick.all(), 2)
	assert.Len(t, melody.all(), 1)
}

func TestTickUncoveredBarsPlayEverything(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	doc := thirtyTwoBarDocument()
	doc.Arrangement = map[string]song.Section{
		"intro": {
			Bars:         song.BarRange{1, 2},
			ActiveTracks: song.TrackList{Names: []string{"melody"}},
		},
	}

	seq := New(voices, nil, nil, Callbacks{})
	seq.SetDocument(doc)

	// Bar 1 is covered and excludes the kick.
	seq.tick(0, time.Now())
	assert.Empty(t, kick.all())

	// Bar 3 is covered by no section: everything plays.
	seq.tick(2*song.StepsPerBar, time.Now())
	assert.Len(t, kick.all(), 1)
}

func TestTickAppliesVolumeMapOffsets(t *testing.T) {
	kick := &recordingVoice{}
	snare := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)
	voices.Bind("snare", snare)

	doc := thirtyTwoBarDocument()
	doc.Arrangement = nil
	delete(doc.Tracks, "melody")
	doc.Tracks["kick"] = song.Track{Pattern: []int{192}, Velocity: []float64{1.0}, Volume: 0}
	doc.Tracks["snare"] = song.Track{Pattern: []int{4}, Volume: 0}

	seq := New(voices, nil, song.DefaultVolumeMap(), Callbacks{})
	seq.SetDocument(doc)

	// Intro drops the snare to -60 dB, below the silence floor.
	seq.tick(4, time.Now())
	assert.Empty(t, snare.all())

	// Drop section lifts the kick +2 dB.
	seq.tick(12*song.StepsPerBar, time.Now())
	kicks := kick.all()
	require.Len(t, kicks, 1)
	assert.InDelta(t, 1.0*math.Pow(10, 2.0/20), kicks[0].Velocity, 1e-9)
}

func TestDocumentSwapKeepsPhase(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	var steps []int
	seq := New(voices, nil, nil, Callbacks{
		OnStepChange: func(step int) { steps = append(steps, step) },
	})
	seq.SetDocument(oneBarDocument())

	// Absolute step 20 wraps to display step 4 on the 16-step document.
	seq.tick(20, time.Now())
	require.Equal(t, []int{4}, steps)
	assert.Len(t, kick.all(), 1)

	// Swap in the long document mid-playback: the same absolute counter
	// now lands in bar 2 instead of wrapping.
	seq.SetDocument(thirtyTwoBarDocument())
	seq.tick(21, time.Now())
	assert.Equal(t, []int{4, 5}, steps)
}

func TestTickNilDocumentIsNoOp(t *testing.T) {
	seq := New(nil, nil, nil, Callbacks{
		OnStepChange: func(int) { t.Fatal("step callback fired without a document") },
	})
	seq.tick(0, time.Now())
}

func TestTickMissingVoiceIsSilent(t *testing.T) {
	seq := New(NewVoiceBank(), nil, nil, Callbacks{})
	seq.SetDocument(oneBarDocument())
	seq.tick(0, time.Now()) // must not panic
}

func TestBeatIntensityImmediateEmission(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	var mu sync.Mutex
	var values []float64
	seq := New(voices, nil, nil, Callbacks{
		OnBeatIntensity: func(v float64) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
	})
	doc := oneBarDocument()
	delete(doc.Tracks, "melody")
	seq.SetDocument(doc)

	seq.tick(0, time.Now())
	mu.Lock()
	require.NotEmpty(t, values)
	assert.Equal(t, 1.0, values[0])
	mu.Unlock()

	seq.cancelPendingTimers()
}

func TestBeatIntensityIgnoresMixerGates(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	var mu sync.Mutex
	var values []float64
	control := NewTrackControl()
	seq := New(voices, control, nil, Callbacks{
		OnBeatIntensity: func(v float64) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
	})

	doc := oneBarDocument()
	delete(doc.Tracks, "melody")
	track := doc.Tracks["kick"]
	track.Muted = true
	doc.Tracks["kick"] = track
	seq.SetDocument(doc)

	// Document mute silences the voice but the visualization still pulses.
	seq.tick(0, time.Now())
	assert.Empty(t, kick.all())
	mu.Lock()
	require.NotEmpty(t, values)
	assert.Equal(t, 1.0, values[0])
	values = nil
	mu.Unlock()
	seq.cancelPendingTimers()

	// Same for a mixer mute and a volume below the silence floor.
	track.Muted = false
	doc.Tracks["kick"] = track
	control.SetMuted("kick", true)
	seq.tick(4, time.Now())
	control.SetMuted("kick", false)
	control.SetVolume("kick", -60)
	seq.tick(8, time.Now())

	assert.Empty(t, kick.all())
	mu.Lock()
	assert.Len(t, values, 2)
	mu.Unlock()
	seq.cancelPendingTimers()
}

func TestStopFreezesCallbacks(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	var stepCount, intensityCount atomic.Int64
	seq := New(voices, nil, nil, Callbacks{
		OnStepChange:    func(int) { stepCount.Add(1) },
		OnBeatIntensity: func(float64) { intensityCount.Add(1) },
	})

	doc := oneBarDocument()
	doc.Metadata.BPM = 200
	delete(doc.Tracks, "melody")
	seq.SetDocument(doc)

	require.NoError(t, seq.Play())
	time.Sleep(200 * time.Millisecond)
	seq.Stop()

	// Give any envelope goroutine already past its timer a moment to
	// land before snapshotting.
	time.Sleep(20 * time.Millisecond)
	steps := stepCount.Load()
	intensities := intensityCount.Load()
	triggers := len(kick.all())
	require.Positive(t, steps)
	require.Positive(t, intensities)

	// At 200 bpm a sixteenth is 75ms; two full steps pass with the
	// transport stopped. Nothing may arrive, including envelope points
	// scheduled before Stop.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, steps, stepCount.Load())
	assert.Equal(t, intensities, intensityCount.Load())
	assert.Len(t, kick.all(), triggers)
}

func TestPlayRequiresDocument(t *testing.T) {
	seq := New(nil, nil, nil, Callbacks{})
	require.Error(t, seq.Play())
	assert.False(t, seq.Running())
}

func TestPlayStopLifecycle(t *testing.T) {
	kick := &recordingVoice{}
	voices := NewVoiceBank()
	voices.Bind("kick", kick)

	doc := oneBarDocument()
	doc.Metadata.BPM = 200
	delete(doc.Tracks, "melody")

	seq := New(voices, nil, nil, Callbacks{})
	seq.SetDocument(doc)

	require.NoError(t, seq.Play())
	assert.True(t, seq.Running())

	time.Sleep(300 * time.Millisecond)
	seq.Stop()
	assert.False(t, seq.Running())

	// At 200 bpm a sixteenth is 75ms; 300ms covers step 0 at minimum.
	assert.NotEmpty(t, kick.all())

	// Stop is idempotent.
	seq.Stop()
}

func TestPlayWhileRunningStops(t *testing.T) {
	seq := New(nil, nil, nil, Callbacks{})
	seq.SetDocument(oneBarDocument())

	require.NoError(t, seq.Play())
	require.True(t, seq.Running())
	require.NoError(t, seq.Play())
	assert.False(t, seq.Running())
}

func TestSetSwingClamps(t *testing.T) {
	seq := New(nil, nil, nil, Callbacks{})

	seq.SetSwing(-1)
	assert.Equal(t, 0.0, math.Float64frombits(seq.swing.Load()))

	seq.SetSwing(0.9)
	assert.Equal(t, 0.5, math.Float64frombits(seq.swing.Load()))

	seq.SetSwing(0.3)
	assert.Equal(t, 0.3, math.Float64frombits(seq.swing.Load()))
}

func TestPatternPosition(t *testing.T) {
	pattern := []int{0, 4, 8, 12}
	assert.Equal(t, 0, patternPosition(pattern, 0))
	assert.Equal(t, 2, patternPosition(pattern, 8))
	assert.Equal(t, -1, patternPosition(pattern, 5))
	assert.Equal(t, -1, patternPosition(nil, 0))
}

func TestStepDuration(t *testing.T) {
	doc := oneBarDocument()
	doc.Metadata.BPM = 120
	assert.Equal(t, 125*time.Millisecond, stepDuration(doc))
	assert.Equal(t, 125*time.Millisecond, stepDuration(nil))
}

func TestDbToGain(t *testing.T) {
	assert.InDelta(t, 1.0, dbToGain(0), 1e-9)
	assert.InDelta(t, 0.5011872, dbToGain(-6), 1e-6)
	assert.InDelta(t, 2.0, dbToGain(6.0206), 1e-4)
}
