package sequencer

import "sync"

// TrackControl holds the live mute/volume overrides the UI writes while
// playback runs. Discipline: single writer (the UI), many readers (the
// tick); the tick reads each track's state once per step. This is the
// explicit shared-state handle replacing closure-captured mutable refs.
type TrackControl struct {
	mu      sync.RWMutex
	muted   map[string]bool
	volumes map[string]float64 // dB override, layered on the document volume
}

func NewTrackControl() *TrackControl {
	return &TrackControl{
		muted:   make(map[string]bool),
		volumes: make(map[string]float64),
	}
}

// SetMuted overrides a track's mute state.
func (c *TrackControl) SetMuted(track string, muted bool) {
	c.mu.Lock()
	c.muted[track] = muted
	c.mu.Unlock()
}

// SetVolume overrides a track's volume in dB.
func (c *TrackControl) SetVolume(track string, db float64) {
	c.mu.Lock()
	c.volumes[track] = db
	c.mu.Unlock()
}

// ClearVolume removes a volume override, falling back to the document.
func (c *TrackControl) ClearVolume(track string) {
	c.mu.Lock()
	delete(c.volumes, track)
	c.mu.Unlock()
}

// Muted reports the override, defaulting to false.
func (c *TrackControl) Muted(track string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.muted[track]
}

// Volume returns the dB override and whether one is set.
func (c *TrackControl) Volume(track string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	db, ok := c.volumes[track]
	return db, ok
}
