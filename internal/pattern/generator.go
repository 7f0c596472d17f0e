package pattern

import (
	"fmt"

	"github.com/basedrum/basedrum-api/internal/identity"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/google/uuid"
)

// GeneratedTrack is one instrument's final pattern plus everything the
// mixer and UI need: mix level, effect sends, and a human-readable reason
// tying the pattern back to the identity field that produced it.
type GeneratedTrack struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Role     Role               `json:"musicalRole"`
	Voice    string             `json:"voice"`
	Volume   float64            `json:"volume"` // dB
	Effects  map[string]float64 `json:"effects"`
	Reason   string             `json:"reason"`
	Template string             `json:"template"`
	Steps    []int              `json:"pattern"`
	Notes    []string           `json:"notes,omitempty"`
	Velocity []float64          `json:"velocity,omitempty"`
}

// Variation weight bands. Conservative wallets get subtle variation,
// adventurous ones push against the template harder. Remove never exceeds
// add at the top band so busy identities stay busy.
type variationWeights struct {
	add    float64
	remove float64
}

func weightsFor(complexity float64) variationWeights {
	switch {
	case complexity <= 0.4:
		return variationWeights{add: 0.10, remove: 0.10}
	case complexity <= 0.7:
		return variationWeights{add: 0.20, remove: 0.20}
	default:
		return variationWeights{add: 0.30, remove: 0.25}
	}
}

// Generator derives a full track set from an identity snapshot. Two
// independent calls with the same snapshot produce byte-identical output:
// all randomness flows through the seeded generator, never the global one.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces the ordered track list for an identity. Tracks appear
// in fixed priority order and sparser identities get fewer simultaneous
// instruments, not just sparser patterns:
// foundation always, rhythm over density 0.3, harmony over energy 0.4,
// texture over complexity 0.5, lead over density 0.7.
func (g *Generator) Generate(v *identity.Vector) []GeneratedTrack {
	constraints := music.ExtractConstraints(v)
	return g.GenerateWithConstraints(v, constraints)
}

// GenerateWithConstraints is Generate with the constraint extraction
// already done, for callers that also want the constraints themselves.
func (g *Generator) GenerateWithConstraints(v *identity.Vector, c music.Constraints) []GeneratedTrack {
	var (
		address   string
		followers int
		txCount   int
	)
	if v != nil {
		address = v.Address
		followers = v.FollowerCount
		txCount = v.TransactionCount
	}
	rng := music.NewRand(music.SeedFor(address, followers, txCount))

	tracks := make([]GeneratedTrack, 0, len(GenerationOrder))
	for _, role := range GenerationOrder {
		switch role {
		case RoleRhythm:
			if c.Density <= 0.3 {
				continue
			}
		case RoleHarmony:
			if c.Energy <= 0.4 {
				continue
			}
		case RoleTexture:
			if c.Complexity <= 0.5 {
				continue
			}
		case RoleLead:
			if c.Density <= 0.7 {
				continue
			}
		}
		tracks = append(tracks, g.generateTrack(role, v, c, rng))
	}
	return tracks
}

func (g *Generator) generateTrack(role Role, v *identity.Vector, c music.Constraints, rng *music.Rand) GeneratedTrack {
	var tmpl Template
	switch role {
	case RoleFoundation:
		tmpl = FoundationTemplate(c.Energy)
	case RoleRhythm:
		tmpl = RhythmTemplate(c.Density)
	case RoleHarmony:
		tmpl = HarmonyTemplate(c.Energy)
	case RoleTexture:
		tmpl = TextureTemplate(c.Complexity)
	case RoleLead:
		tmpl = LeadTemplate(c.Complexity)
	}

	track := GeneratedTrack{
		ID:       deterministicID(role, v),
		Name:     InstrumentFor[role],
		Role:     role,
		Voice:    VoicePresetFor[role],
		Volume:   VolumeFor[role],
		Effects:  effectsFor(role, c),
		Reason:   reasonFor(role, v, tmpl),
		Template: tmpl.Name,
	}

	if tmpl.Melodic {
		degrees := applyDegreeVariation(tmpl.Degrees, c.Complexity, rng)
		scale := music.Scale(c.Key, c.Mode, octaveFor(role))
		for step, deg := range degrees {
			if deg == 0 {
				continue
			}
			track.Steps = append(track.Steps, step)
			track.Notes = append(track.Notes, scale[(deg-1)%len(scale)])
			track.Velocity = append(track.Velocity, velocityAt(step))
		}
		return track
	}

	hitGrid := applyVariation(tmpl.Hits, c.Complexity, rng)
	for step, hit := range hitGrid {
		if !hit {
			continue
		}
		track.Steps = append(track.Steps, step)
		track.Velocity = append(track.Velocity, velocityAt(step))
	}
	return track
}

// applyVariation adds and removes hits around the template with the
// banded probabilities. Structural downbeats (step mod 4 == 0) are never
// touched in either direction: that invariant is what keeps a varied
// pattern recognizably the same groove.
func applyVariation(base [16]bool, complexity float64, rng *music.Rand) [16]bool {
	w := weightsFor(complexity)
	out := base
	for step := 0; step < len(out); step++ {
		if step%4 == 0 {
			continue
		}
		draw := rng.Float64()
		if out[step] {
			if draw < w.remove {
				out[step] = false
			}
		} else if draw < w.add {
			out[step] = true
		}
	}
	return out
}

// applyDegreeVariation is the melodic counterpart: added steps get a
// random scale degree, removals clear back to silence. Downbeat degrees
// are immutable for the same reason downbeat hits are.
func applyDegreeVariation(base [16]int, complexity float64, rng *music.Rand) [16]int {
	w := weightsFor(complexity)
	out := base
	for step := 0; step < len(out); step++ {
		if step%4 == 0 {
			continue
		}
		draw := rng.Float64()
		if out[step] != 0 {
			if draw < w.remove {
				out[step] = 0
			}
		} else if draw < w.add {
			out[step] = rng.Intn(7) + 1
		}
	}
	return out
}

func velocityAt(step int) float64 {
	if step%4 == 0 {
		return 1.0
	}
	return 0.7
}

func octaveFor(role Role) int {
	if role == RoleHarmony {
		return 2
	}
	return 4
}

func effectsFor(role Role, c music.Constraints) map[string]float64 {
	effects := map[string]float64{
		string(song.EffectReverbWet): 0.2,
	}
	switch role {
	case RoleFoundation:
		effects[string(song.EffectReverbWet)] = 0.05
	case RoleHarmony:
		effects[string(song.EffectFilterCutoff)] = 0.3 + 0.5*c.Energy
	case RoleLead:
		effects[string(song.EffectDelayMix)] = 0.2 + 0.3*c.Complexity
	}
	return effects
}

// deterministicID derives a stable track id from the role and address so
// repeated generations for one identity keep their ids.
func deterministicID(role Role, v *identity.Vector) string {
	address := ""
	if v != nil {
		address = v.Address
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(role)+":"+address)).String()
}

func reasonFor(role Role, v *identity.Vector, tmpl Template) string {
	if v == nil {
		return fmt.Sprintf("No identity data yet, so the %s gets the default %q pattern", InstrumentFor[role], tmpl.Name)
	}
	switch role {
	case RoleFoundation:
		return fmt.Sprintf("Your %d transactions drive a %q kick groove", v.TransactionCount, tmpl.Name)
	case RoleRhythm:
		return fmt.Sprintf("Your %d followers against %d following shape a %q snare", v.FollowerCount, v.FollowingCount, tmpl.Name)
	case RoleHarmony:
		return fmt.Sprintf("Your %g ETH balance anchors a %q bassline", v.Balance, tmpl.Name)
	case RoleTexture:
		return fmt.Sprintf("Your %d tokens and %d NFTs sprinkle a %q hat layer", v.TokenCount, v.NFTCount, tmpl.Name)
	case RoleLead:
		return fmt.Sprintf("Wallet %s sings the %q lead line", shortAddress(v.Address), tmpl.Name)
	}
	return tmpl.Name
}

func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}
