package music

import "fmt"

// PitchClasses are the 12 chromatic pitch classes, in hash order.
var PitchClasses = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Mode identifies the scale flavour used for melodic tracks.
type Mode string

const (
	ModeMajor      Mode = "major"
	ModeMinor      Mode = "minor"
	ModeDorian     Mode = "dorian"
	ModeMixolydian Mode = "mixolydian"
)

// scaleIntervals maps each mode to its semitone offsets from the root.
var scaleIntervals = map[Mode][]int{
	ModeMajor:      {0, 2, 4, 5, 7, 9, 11},
	ModeMinor:      {0, 2, 3, 5, 7, 8, 10},
	ModeDorian:     {0, 2, 3, 5, 7, 9, 10},
	ModeMixolydian: {0, 2, 4, 5, 7, 9, 10},
}

// Scale returns the note names of one octave of the given key/mode,
// starting at the given octave number. Degree indices wrap into the next
// octave, so Scale("C", minor, 3) degree 7 is "C4".
func Scale(key string, mode Mode, octave int) []string {
	root := pitchClassIndex(key)
	intervals, ok := scaleIntervals[mode]
	if !ok {
		intervals = scaleIntervals[ModeMinor]
	}
	notes := make([]string, 0, len(intervals)+1)
	for _, iv := range intervals {
		notes = append(notes, noteName(root+iv, octave))
	}
	// Octave on top so arp-style lines can resolve upward.
	notes = append(notes, noteName(root+12, octave))
	return notes
}

func pitchClassIndex(key string) int {
	for i, pc := range PitchClasses {
		if pc == key {
			return i
		}
	}
	return 0
}

func noteName(semitone, octave int) string {
	octave += semitone / 12
	return fmt.Sprintf("%s%d", PitchClasses[semitone%12], octave)
}
