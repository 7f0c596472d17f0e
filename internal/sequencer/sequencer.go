package sequencer

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basedrum/basedrum-api/internal/logger"
	"github.com/basedrum/basedrum-api/internal/song"
)

const (
	// Tracks at or below this effective level are skipped entirely.
	silenceFloorDB = -48.0

	// Display position always shows the slot within the current bar.
	displaySteps = song.StepsPerBar

	// A triggered note holds for most of its step.
	noteGateRatio = 0.9

	maxSwing = 0.5
)

// intensityEnvelope is the fixed decay pushed to observers after a beat
// hit, value/offset pairs.
var intensityEnvelope = []struct {
	value float64
	after time.Duration
}{
	{1.0, 0},
	{0.7, 50 * time.Millisecond},
	{0.4, 100 * time.Millisecond},
	{0.1, 150 * time.Millisecond},
	{0.0, 200 * time.Millisecond},
}

// beatIntensityTracks are the instruments whose hits drive the intensity
// visualization.
var beatIntensityTracks = map[string]bool{"kick": true, "snare": true}

// Callbacks are the observer hooks. OnStepChange fires once per tick with
// the display step; OnBeatIntensity follows the decay envelope after each
// beat hit. Both may be nil. They run on the scheduling goroutine and
// must return quickly.
type Callbacks struct {
	OnStepChange    func(step int)
	OnBeatIntensity func(value float64)
}

// Sequencer walks the sixteenth-note grid of the active song document in
// real time. Two states only: stopped and running - stopping always
// rewinds to step zero, there is no pause.
//
// The active document is read through an atomic pointer exactly once per
// tick, never snapshotted at start. Swapping in a new document (say, the
// AI-expanded arrangement) takes effect on the very next tick while the
// absolute step counter keeps running, so playback neither restarts nor
// loses phase.
type Sequencer struct {
	doc       atomic.Pointer[song.Document]
	voices    *VoiceBank
	control   *TrackControl
	volumeMap *song.VolumeMap
	callbacks Callbacks

	swing atomic.Uint64 // math.Float64bits

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	timerMu sync.Mutex
	timers  map[*time.Timer]struct{}
}

// New constructs a sequencer around its collaborators. Everything is
// explicit: no globals, no hidden registries, so independent instances
// can coexist in tests.
func New(voices *VoiceBank, control *TrackControl, volumeMap *song.VolumeMap, cb Callbacks) *Sequencer {
	if voices == nil {
		voices = NewVoiceBank()
	}
	if control == nil {
		control = NewTrackControl()
	}
	return &Sequencer{
		voices:    voices,
		control:   control,
		volumeMap: volumeMap,
		callbacks: cb,
		timers:    make(map[*time.Timer]struct{}),
	}
}

// SetDocument publishes a new document revision with a single atomic
// swap. Safe to call at any time, including mid-playback.
func (s *Sequencer) SetDocument(doc *song.Document) {
	s.doc.Store(doc)
}

// Document returns the currently active document.
func (s *Sequencer) Document() *song.Document {
	return s.doc.Load()
}

// SetSwing sets the shuffle amount in [0, 0.5]: odd steps are delayed by
// that fraction of a step. Zero (the default) keeps the grid straight.
func (s *Sequencer) SetSwing(amount float64) {
	if amount < 0 {
		amount = 0
	} else if amount > maxSwing {
		amount = maxSwing
	}
	s.swing.Store(math.Float64bits(amount))
}

// Running reports whether the transport is running.
func (s *Sequencer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Play starts the transport from step zero. Calling Play while already
// running stops instead, mirroring a one-button transport.
func (s *Sequencer) Play() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.Stop()
		return nil
	}
	if s.doc.Load() == nil {
		s.mu.Unlock()
		return errors.New("sequencer: no document loaded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	done := s.done
	s.mu.Unlock()

	doc := s.doc.Load()
	logger.Info("Transport started", logger.Fields{
		"bpm":   doc.Metadata.BPM,
		"steps": doc.Metadata.Steps,
	})

	go s.run(ctx, done)
	return nil
}

// Stop halts the transport, cancels every not-yet-fired scheduled event
// and rewinds to step zero. Safe to call from any goroutine at any time,
// including while the previous tick is still executing.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
	s.cancelPendingTimers()
	logger.Info("Transport stopped", nil)
}

// run is the transport loop. Step timestamps derive from the start time
// and the step index, never from accumulated sleeps, so the grid cannot
// drift audibly over long playback.
func (s *Sequencer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	var step int64
	next := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-timer.C:
			at := next
			if at.Before(now) {
				at = now
			}
			s.tick(step, at)

			doc := s.doc.Load()
			stepDur := stepDuration(doc)
			next = next.Add(stepDur)
			step++

			fire := next
			if swing := math.Float64frombits(s.swing.Load()); swing > 0 && step%2 == 1 {
				fire = fire.Add(time.Duration(swing * float64(stepDur)))
			}
			timer.Reset(time.Until(fire))
		}
	}
}

// tick performs all work for one subdivision. It loads the document once
// and uses that snapshot for the whole tick. Anything malformed degrades
// to a silent no-op - a panic here would take down the whole transport.
func (s *Sequencer) tick(step int64, at time.Time) {
	doc := s.doc.Load()
	if doc == nil || doc.Metadata.Steps <= 0 {
		return
	}

	total := doc.Metadata.Steps
	idx := int(step % int64(total))
	bar := idx / song.StepsPerBar
	stepDur := stepDuration(doc)

	for _, name := range doc.TrackNames() {
		track := doc.Tracks[name]
		if !s.trackActiveInArrangement(doc, name, bar) {
			continue
		}

		pos := patternPosition(track.Pattern, idx)
		if pos < 0 {
			continue
		}

		// The beat visualization follows the pattern, not the mixer:
		// a muted kick still pulses.
		if beatIntensityTracks[name] {
			s.emitIntensity()
		}

		if track.Muted || s.control.Muted(name) {
			continue
		}

		db := track.Volume
		if override, ok := s.control.Volume(name); ok {
			db = override
		}
		db += s.volumeMap.OffsetFor(bar, name)
		if db <= silenceFloorDB {
			continue
		}

		velocity := 0.8
		if pos < len(track.Velocity) {
			velocity = track.Velocity[pos]
		}

		note := ""
		if pos < len(track.Notes) {
			note = track.Notes[pos]
		}

		if voice := s.voices.Get(name); voice != nil {
			voice.Trigger(Trigger{
				Track:    name,
				Note:     note,
				Velocity: velocity * dbToGain(db),
				Duration: time.Duration(noteGateRatio * float64(stepDur)),
				At:       at,
			})
		}
	}

	if s.callbacks.OnStepChange != nil {
		s.callbacks.OnStepChange(idx % displaySteps)
	}
}

// trackActiveInArrangement checks the document's section table. A track
// in no section of the current bar stays silent; documents without an
// arrangement play everything.
func (s *Sequencer) trackActiveInArrangement(doc *song.Document, name string, bar int) bool {
	if len(doc.Arrangement) == 0 {
		return true
	}
	inAnySection := false
	for _, section := range doc.Arrangement {
		if !section.Bars.Contains(bar) {
			continue
		}
		inAnySection = true
		if section.ActiveTracks.Active(name) {
			return true
		}
	}
	// Bars not covered by any section play everything.
	return !inAnySection
}

// emitIntensity schedules the fixed decay envelope. Timers are tracked so
// Stop can cancel ghosts that haven't fired yet.
func (s *Sequencer) emitIntensity() {
	if s.callbacks.OnBeatIntensity == nil {
		return
	}
	for _, point := range intensityEnvelope {
		if point.after == 0 {
			s.callbacks.OnBeatIntensity(point.value)
			continue
		}
		value := point.value
		var t *time.Timer
		t = time.AfterFunc(point.after, func() {
			s.callbacks.OnBeatIntensity(value)
			s.timerMu.Lock()
			delete(s.timers, t)
			s.timerMu.Unlock()
		})
		s.timerMu.Lock()
		s.timers[t] = struct{}{}
		s.timerMu.Unlock()
	}
}

func (s *Sequencer) cancelPendingTimers() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	for t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}

// stepDuration derives the sixteenth-note duration from the document's
// tempo. A nil document gets a safe fallback so the loop can keep
// spinning until a document arrives.
func stepDuration(doc *song.Document) time.Duration {
	bpm := 120
	if doc != nil && doc.Metadata.BPM > 0 {
		bpm = doc.Metadata.BPM
	}
	beat := time.Duration(float64(time.Minute) / float64(bpm))
	return beat / 4
}

func patternPosition(pattern []int, step int) int {
	for i, p := range pattern {
		if p == step {
			return i
		}
	}
	return -1
}

func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}
