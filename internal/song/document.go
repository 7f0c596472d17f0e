package song

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// FormatTag is the only document format this engine understands.
const FormatTag = "basedrum-v1"

// StepsPerBar is the fixed subdivision of the grid: sixteenth notes.
const StepsPerBar = 16

// Document is the canonical interchange and persistence format for a
// complete track. A Document is an immutable snapshot per revision:
// mutation means building a new Document and swapping the reference the
// sequencer reads from, never editing one in place.
type Document struct {
	Metadata    Metadata           `json:"metadata"`
	Effects     Effects            `json:"effects"`
	Tracks      map[string]Track   `json:"tracks"`
	Arrangement map[string]Section `json:"arrangement,omitempty"`
}

// Metadata carries the document identity and grid dimensions.
type Metadata struct {
	Title   string `json:"title" validate:"required"`
	Artist  string `json:"artist" validate:"required"`
	Version string `json:"version" validate:"required"`
	Created string `json:"created" validate:"required"`
	BPM     int    `json:"bpm" validate:"min=60,max=200"`
	Bars    int    `json:"bars" validate:"min=1,max=128"`
	Steps   int    `json:"steps" validate:"min=16,max=2048"`
	Format  string `json:"format" validate:"required"`
}

// Effects holds the global effect settings. All normalized parameters
// live in [0,1]; the concrete mapping to Hz/seconds is the effect kind's
// business (see effects.go).
type Effects struct {
	Filter FilterSettings `json:"filter"`
	Reverb ReverbSettings `json:"reverb"`
}

type FilterSettings struct {
	Cutoff    float64 `json:"cutoff" validate:"min=0,max=1"`
	Type      string  `json:"type"`
	StartFreq float64 `json:"startFreq" validate:"min=20,max=20000"`
	EndFreq   float64 `json:"endFreq" validate:"min=20,max=20000"`
}

type ReverbSettings struct {
	Wet      float64 `json:"wet" validate:"min=0,max=1"`
	RoomSize float64 `json:"roomSize" validate:"min=0,max=1"`
	Decay    float64 `json:"decay" validate:"min=0,max=10"`
}

// Track is one instrument's pattern plus mix state. Pattern holds the
// step indices at which the instrument fires; Notes, when present, runs
// parallel to Pattern (Notes[i] sounds at Pattern[i]). Volume is in dB.
type Track struct {
	Pattern    []int     `json:"pattern"`
	Notes      []string  `json:"notes,omitempty"`
	Velocity   []float64 `json:"velocity,omitempty" validate:"dive,min=0,max=1"`
	GhostNotes []int     `json:"ghostNotes,omitempty"`
	Muted      bool      `json:"muted"`
	Volume     float64   `json:"volume"`
}

// Section names a contiguous bar range of the arrangement and which
// tracks are active in it.
type Section struct {
	Bars         BarRange  `json:"bars"`
	ActiveTracks TrackList `json:"activeTracks"`
}

// BarRange is an inclusive [start, end] pair of 1-based bar numbers.
type BarRange [2]int

// Contains reports whether the 0-based bar index falls in the range.
func (r BarRange) Contains(bar int) bool {
	return bar+1 >= r[0] && bar+1 <= r[1]
}

// TrackList is either an explicit list of track names or the literal
// "all" on the wire.
type TrackList struct {
	All   bool
	Names []string
}

func (l TrackList) MarshalJSON() ([]byte, error) {
	if l.All {
		return json.Marshal("all")
	}
	return json.Marshal(l.Names)
}

func (l *TrackList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte(`"all"`)) {
		l.All = true
		l.Names = nil
		return nil
	}
	l.All = false
	return json.Unmarshal(data, &l.Names)
}

// Active reports whether the named track plays in this section.
func (l TrackList) Active(name string) bool {
	if l.All {
		return true
	}
	for _, n := range l.Names {
		if n == name {
			return true
		}
	}
	return false
}

// NewMetadata fills in engine-owned metadata fields for a fresh document.
func NewMetadata(title string, bpm, bars int) Metadata {
	return Metadata{
		Title:   title,
		Artist:  "basedrum",
		Version: "1.0",
		Created: time.Now().UTC().Format(time.RFC3339),
		BPM:     bpm,
		Bars:    bars,
		Steps:   bars * StepsPerBar,
		Format:  FormatTag,
	}
}

// Parse decodes and validates a document. Invalid documents are rejected
// whole; there is no partial acceptance.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed song document: %w", err)
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode serializes a document to JSON.
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// TrackNames returns the track names in stable (sorted) order.
func (d *Document) TrackNames() []string {
	names := make([]string, 0, len(d.Tracks))
	for name := range d.Tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
