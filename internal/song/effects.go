package song

import "math"

// EffectKind tags one normalized effect parameter. Each kind declares its
// own mapping from the normalized [0,1] value to a concrete unit, selected
// by tag rather than by inspecting the parameter at runtime.
type EffectKind string

const (
	EffectFilterCutoff EffectKind = "filter.cutoff"
	EffectReverbWet    EffectKind = "reverb.wet"
	EffectReverbRoom   EffectKind = "reverb.roomSize"
	EffectReverbDecay  EffectKind = "reverb.decay"
	EffectDelayMix     EffectKind = "delay.mix"
)

const (
	filterFreqMin  = 20.0
	filterFreqMax  = 20000.0
	reverbDecayMax = 10.0
)

// effectMappings converts a normalized value into the parameter's concrete
// unit: Hz for the filter (exponential, since pitch perception is log),
// seconds for reverb decay, plain ratio for wet/mix levels.
var effectMappings = map[EffectKind]func(float64) float64{
	EffectFilterCutoff: func(v float64) float64 {
		return filterFreqMin * math.Pow(filterFreqMax/filterFreqMin, clamp01(v))
	},
	EffectReverbWet:   clamp01,
	EffectReverbRoom:  clamp01,
	EffectDelayMix:    clamp01,
	EffectReverbDecay: func(v float64) float64 { return clamp01(v) * reverbDecayMax },
}

// MapEffect resolves a normalized effect value to its concrete parameter.
// Unknown kinds pass the clamped value through unchanged.
func MapEffect(kind EffectKind, normalized float64) float64 {
	if fn, ok := effectMappings[kind]; ok {
		return fn(normalized)
	}
	return clamp01(normalized)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DefaultEffects is the effect block generated documents start with.
func DefaultEffects() Effects {
	return Effects{
		Filter: FilterSettings{
			Cutoff:    0.8,
			Type:      "lowpass",
			StartFreq: 800,
			EndFreq:   12000,
		},
		Reverb: ReverbSettings{
			Wet:      0.25,
			RoomSize: 0.5,
			Decay:    2.0,
		},
	}
}
