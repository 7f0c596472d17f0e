package pattern

import (
	"github.com/basedrum/basedrum-api/internal/identity"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/song"
)

// BuildDocument assembles the one-bar seed document the sequencer plays
// and the expansion pass elaborates. The document is a fresh snapshot;
// callers publish it to the sequencer with a single reference swap.
func BuildDocument(title string, tracks []GeneratedTrack, c music.Constraints) *song.Document {
	doc := &song.Document{
		Metadata: song.NewMetadata(title, c.Tempo, 1),
		Effects:  song.DefaultEffects(),
		Tracks:   make(map[string]song.Track, len(tracks)),
	}
	for _, t := range tracks {
		doc.Tracks[t.Name] = song.Track{
			Pattern:  append([]int(nil), t.Steps...),
			Notes:    append([]string(nil), t.Notes...),
			Velocity: append([]float64(nil), t.Velocity...),
			Volume:   t.Volume,
		}
	}
	return doc
}

// BuildThresholdDocument is the onboarding-path counterpart: canonical
// bucketed patterns straight from the raw scalars, plus the address
// melody, with no stochastic pass at all.
func BuildThresholdDocument(title string, v *identity.Vector) *song.Document {
	c := music.ExtractConstraints(v)

	var (
		address   string
		txCount   int
		followers int
		tokens    int
	)
	if v != nil {
		address = v.Address
		txCount = v.TransactionCount
		followers = v.FollowerCount
		tokens = v.TokenCount
	}

	melodySteps, melodyNotes := AddressMelody(address, c.Key, c.Mode)

	doc := &song.Document{
		Metadata: song.NewMetadata(title, c.Tempo, 1),
		Effects:  song.DefaultEffects(),
		Tracks: map[string]song.Track{
			"kick":  {Pattern: KickPattern(txCount), Volume: VolumeFor[RoleFoundation]},
			"snare": {Pattern: SnarePattern(followers), Volume: VolumeFor[RoleRhythm]},
			"bass":  {Pattern: BassPattern(tokens), Volume: VolumeFor[RoleHarmony]},
		},
	}
	if len(melodySteps) > 0 {
		doc.Tracks["melody"] = song.Track{
			Pattern: melodySteps,
			Notes:   melodyNotes,
			Volume:  VolumeFor[RoleLead],
		}
	}
	return doc
}
