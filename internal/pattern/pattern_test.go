package pattern

import (
	"testing"

	"github.com/basedrum/basedrum-api/internal/identity"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVector() *identity.Vector {
	return &identity.Vector{
		Address:          "0x742d35cc6634c0532925a3b844bc454e4438f44e",
		Balance:          4.2,
		TransactionCount: 150,
		TokenCount:       12,
		NFTCount:         3,
		FollowerCount:    200,
		FollowingCount:   150,
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator()
	a := g.Generate(testVector())
	b := g.Generate(testVector())
	assert.Equal(t, a, b)
}

func TestGenerateDifferentIdentitiesDiverge(t *testing.T) {
	g := NewGenerator()
	a := g.Generate(testVector())

	other := testVector()
	other.Address = "0x000000000000000000000000000000000000dead"
	b := g.Generate(other)

	assert.NotEqual(t, a, b)
}

func TestGenerateRoleGating(t *testing.T) {
	g := NewGenerator()

	names := func(tracks []GeneratedTrack) []string {
		out := make([]string, len(tracks))
		for i, tr := range tracks {
			out[i] = tr.Name
		}
		return out
	}

	// Empty identity: floors give density 0.3, energy 0.2, complexity 0.1.
	// Only the foundation survives the gates.
	sparse := g.GenerateWithConstraints(&identity.Vector{Address: "0x1"}, music.ExtractConstraints(&identity.Vector{Address: "0x1"}))
	assert.Equal(t, []string{"kick"}, names(sparse))

	// The reference identity clears rhythm, harmony and texture but not lead.
	v := testVector()
	mid := g.Generate(v)
	assert.Equal(t, []string{"kick", "snare", "bass", "hat"}, names(mid))

	// A maxed-out identity gets all five.
	whale := &identity.Vector{
		Address:          "0xwhale",
		Balance:          1000,
		TransactionCount: 100000,
		TokenCount:       500,
		NFTCount:         200,
		FollowerCount:    50000,
		FollowingCount:   100,
	}
	full := g.Generate(whale)
	assert.Equal(t, []string{"kick", "snare", "bass", "hat", "melody"}, names(full))
}

func TestGenerateDownbeatsImmutable(t *testing.T) {
	g := NewGenerator()

	// Sweep complexity across all variation bands; template downbeat hits
	// must survive every one.
	for _, complexity := range []float64{0.1, 0.4, 0.5, 0.7, 0.9, 1.0} {
		c := music.DefaultConstraints()
		c.Energy = 0.9 // four-on-floor kick template
		c.Complexity = complexity

		tracks := g.GenerateWithConstraints(testVector(), c)
		require.NotEmpty(t, tracks)
		kick := tracks[0]
		require.Equal(t, "kick", kick.Name)

		stepSet := map[int]bool{}
		for _, s := range kick.Steps {
			stepSet[s] = true
		}
		for _, downbeat := range []int{0, 4, 8, 12} {
			assert.True(t, stepSet[downbeat], "complexity %.1f lost downbeat %d", complexity, downbeat)
		}
	}
}

func TestGenerateVelocityAccents(t *testing.T) {
	tracks := NewGenerator().Generate(testVector())
	for _, tr := range tracks {
		require.Len(t, tr.Velocity, len(tr.Steps), "track %s", tr.Name)
		for i, s := range tr.Steps {
			if s%4 == 0 {
				assert.Equal(t, 1.0, tr.Velocity[i], "track %s step %d", tr.Name, s)
			} else {
				assert.Equal(t, 0.7, tr.Velocity[i], "track %s step %d", tr.Name, s)
			}
		}
	}
}

func TestGenerateMelodicNotesStayInScale(t *testing.T) {
	c := music.Constraints{Tempo: 140, Key: "A", Mode: music.ModeMinor, Density: 0.9, Energy: 0.9, Complexity: 0.9}
	tracks := NewGenerator().GenerateWithConstraints(testVector(), c)

	scaleNotes := map[string]bool{}
	for _, octave := range []int{2, 3, 4, 5} {
		for _, n := range music.Scale("A", music.ModeMinor, octave) {
			scaleNotes[n] = true
		}
	}

	for _, tr := range tracks {
		for _, note := range tr.Notes {
			assert.True(t, scaleNotes[note], "track %s note %s outside A minor", tr.Name, note)
		}
	}
}

func TestGenerateStableIDs(t *testing.T) {
	g := NewGenerator()
	a := g.Generate(testVector())
	b := g.Generate(testVector())
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.NotEmpty(t, a[i].Reason)
	}
}

func TestThresholdPatternsExactValues(t *testing.T) {
	assert.Equal(t, []int{0, 4, 8, 12}, KickPattern(0))
	assert.Equal(t, []int{0, 4, 8, 12, 14}, KickPattern(25))
	assert.Equal(t, []int{4, 12}, SnarePattern(0))
	assert.Equal(t, []int{0, 8}, BassPattern(0))

	// negatives degrade to the quietest band
	assert.Equal(t, []int{0, 4, 8, 12}, KickPattern(-7))
}

func TestThresholdBandsAreSupersets(t *testing.T) {
	tables := map[string][]thresholdBand{
		"kick":  kickBands,
		"snare": snareBands,
		"bass":  bassBands,
	}
	for name, bands := range tables {
		for i := 1; i < len(bands); i++ {
			prev := map[int]bool{}
			for _, s := range bands[i-1].steps {
				prev[s] = true
			}
			cur := map[int]bool{}
			for _, s := range bands[i].steps {
				cur[s] = true
			}
			for s := range prev {
				assert.True(t, cur[s], "%s band %d dropped step %d", name, i, s)
			}
			assert.Greater(t, len(cur), len(prev), "%s band %d did not grow", name, i)
		}
	}
}

func TestAddressMelodyDeterministic(t *testing.T) {
	steps1, notes1 := AddressMelody("0x742d35cc6634c053", "C", music.ModeMinor)
	steps2, notes2 := AddressMelody("0x742d35cc6634c053", "C", music.ModeMinor)
	assert.Equal(t, steps1, steps2)
	assert.Equal(t, notes1, notes2)
	assert.Len(t, notes1, len(steps1))
	assert.NotEmpty(t, steps1)
}

func TestAddressMelodyHandlesShortAndEmpty(t *testing.T) {
	steps, notes := AddressMelody("", "C", music.ModeMinor)
	assert.Empty(t, steps)
	assert.Empty(t, notes)

	steps, _ = AddressMelody("0xff", "C", music.ModeMinor)
	for _, s := range steps {
		assert.Less(t, s, 2)
	}
}

func TestBuildDocument(t *testing.T) {
	c := music.DefaultConstraints()
	tracks := NewGenerator().GenerateWithConstraints(testVector(), c)
	doc := BuildDocument("Test", tracks, c)

	require.NoError(t, song.Validate(doc))
	assert.Equal(t, 1, doc.Metadata.Bars)
	assert.Equal(t, song.StepsPerBar, doc.Metadata.Steps)
	assert.Equal(t, c.Tempo, doc.Metadata.BPM)
	assert.Len(t, doc.Tracks, len(tracks))
}

func TestBuildThresholdDocument(t *testing.T) {
	doc := BuildThresholdDocument("Onboarding", testVector())
	require.NoError(t, song.Validate(doc))
	assert.Contains(t, doc.Tracks, "kick")
	assert.Contains(t, doc.Tracks, "snare")
	assert.Contains(t, doc.Tracks, "bass")
	assert.Contains(t, doc.Tracks, "melody")

	// address melody runs parallel
	melody := doc.Tracks["melody"]
	assert.Len(t, melody.Notes, len(melody.Pattern))
}

func TestBuildThresholdDocumentNilVector(t *testing.T) {
	doc := BuildThresholdDocument("Empty", nil)
	require.NoError(t, song.Validate(doc))
	assert.Equal(t, []int{0, 4, 8, 12}, doc.Tracks["kick"].Pattern)
	assert.NotContains(t, doc.Tracks, "melody")
}

func TestGenerateEndToEndScenario(t *testing.T) {
	v := &identity.Vector{
		Address:          "0x742d35cc6634c0532925a3b844bc454e4438f44e",
		Balance:          2.5,
		TransactionCount: 150,
		TokenCount:       12,
		NFTCount:         3,
		FollowerCount:    300,
		FollowingCount:   50,
	}

	c := music.ExtractConstraints(v)
	assert.InDelta(t, 145, c.Tempo, 1)
	assert.Equal(t, music.ModeMajor, c.Mode)
	assert.Greater(t, c.Energy, 0.4)
	assert.Greater(t, c.Complexity, 0.4)

	tracks := NewGenerator().GenerateWithConstraints(v, c)
	require.GreaterOrEqual(t, len(tracks), 4)

	byName := map[string]GeneratedTrack{}
	for _, tr := range tracks {
		require.NotEmpty(t, tr.Reason)
		byName[tr.Name] = tr
	}
	assert.Contains(t, byName["kick"].Reason, "150")
	assert.Contains(t, byName["snare"].Reason, "300")
	assert.Contains(t, byName["snare"].Reason, "50")
	assert.Contains(t, byName["bass"].Reason, "2.5")
	assert.Contains(t, byName["hat"].Reason, "12")
	assert.Contains(t, byName["hat"].Reason, "3")
}
