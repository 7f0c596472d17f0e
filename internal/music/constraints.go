package music

import (
	"math"

	"github.com/basedrum/basedrum-api/internal/identity"
)

// Constraints are the bounded musical scalars derived from an identity
// snapshot. Every ratio is clamped into [0,1] no matter how extreme the
// raw inputs are, and floored at small minimums so even an empty wallet
// yields an audible track.
type Constraints struct {
	Tempo      int     `json:"tempo"` // BPM, clamped 60-200
	Key        string  `json:"key"`   // one of the 12 pitch classes
	Mode       Mode    `json:"mode"`
	Density    float64 `json:"density"`
	Energy     float64 `json:"energy"`
	Complexity float64 `json:"complexity"`
}

// Hand-tuned mapping constants. These are configuration, not algorithm:
// retuning them changes the feel of generated tracks without touching the
// generator or sequencer.
const (
	tempoMin       = 60
	tempoMax       = 200
	tempoBase      = 130
	tempoSpan      = 30
	tempoSocialCap = 700

	densityTxCap = 400
	densityFloor = 0.3

	energyBalanceCap = 10
	energyTokenCap   = 20
	energyFloor      = 0.2

	complexityTokenCap = 20
	complexityNFTCap   = 50
	complexityFloor    = 0.1

	// NFT collectors above this count get pushed into the modal variant
	// of their key (major -> mixolydian, minor -> dorian).
	modalNFTThreshold = 20
)

// DefaultConstraints is what a nil or empty snapshot maps to: 140 BPM,
// C minor, medium-busy.
func DefaultConstraints() Constraints {
	return Constraints{
		Tempo:      140,
		Key:        "C",
		Mode:       ModeMinor,
		Density:    0.6,
		Energy:     0.7,
		Complexity: 0.5,
	}
}

// ExtractConstraints maps an identity snapshot to musical constraints.
// Pure function: same vector in, same constraints out. A nil vector yields
// DefaultConstraints.
func ExtractConstraints(v *identity.Vector) Constraints {
	if v == nil {
		return DefaultConstraints()
	}

	social := clampInt(v.FollowerCount, 0, tempoSocialCap) + clampInt(v.FollowingCount, 0, tempoSocialCap)
	if social > tempoSocialCap {
		social = tempoSocialCap
	}
	tempo := tempoBase + int(math.Round(float64(tempoSpan)*float64(social)/float64(tempoSocialCap)))
	tempo = clampInt(tempo, tempoMin, tempoMax)

	density := ratio(v.TransactionCount, densityTxCap)
	if density < densityFloor {
		density = densityFloor
	}

	energy := (clampFloat(v.Balance, 0, energyBalanceCap)/energyBalanceCap +
		ratio(v.TokenCount, energyTokenCap)) / 2
	if energy > 1 {
		energy = 1
	}
	if energy < energyFloor {
		energy = energyFloor
	}

	complexity := ratio(v.TokenCount, complexityTokenCap) + ratio(v.NFTCount, complexityNFTCap)
	if complexity > 1 {
		complexity = 1
	}
	if complexity < complexityFloor {
		complexity = complexityFloor
	}

	key := PitchClasses[HashAddress(v.Address)%12]

	mode := ModeMinor
	if v.FollowerCount > v.FollowingCount {
		mode = ModeMajor
	}
	if v.NFTCount > modalNFTThreshold {
		if mode == ModeMajor {
			mode = ModeMixolydian
		} else {
			mode = ModeDorian
		}
	}

	return Constraints{
		Tempo:      tempo,
		Key:        key,
		Mode:       mode,
		Density:    density,
		Energy:     energy,
		Complexity: complexity,
	}
}

// ratio maps a non-negative count into [0,1], saturating at cap.
// Malformed (negative) counts are treated as zero.
func ratio(count, cap int) float64 {
	if count < 0 {
		count = 0
	}
	if count > cap {
		count = cap
	}
	return float64(count) / float64(cap)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
