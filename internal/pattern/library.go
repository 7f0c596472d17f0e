package pattern

// Role orders instruments by musical priority: foundation lays the
// groove, everything else is generated (and mixed) on top of it.
type Role string

const (
	RoleFoundation Role = "foundation"
	RoleRhythm     Role = "rhythm"
	RoleHarmony    Role = "harmony"
	RoleTexture    Role = "texture"
	RoleLead       Role = "lead"
)

// GenerationOrder is the fixed priority in which tracks are generated.
var GenerationOrder = []Role{RoleFoundation, RoleRhythm, RoleHarmony, RoleTexture, RoleLead}

// InstrumentFor maps each role to its track name in the song document.
var InstrumentFor = map[Role]string{
	RoleFoundation: "kick",
	RoleRhythm:     "snare",
	RoleHarmony:    "bass",
	RoleTexture:    "hat",
	RoleLead:       "melody",
}

// VoicePresetFor maps each role to its default voice preset id. Timbre
// design lives behind the Voice interface; these are just stable handles.
var VoicePresetFor = map[Role]string{
	RoleFoundation: "909-kick",
	RoleRhythm:     "909-snare",
	RoleHarmony:    "acid-bass",
	RoleTexture:    "closed-hat",
	RoleLead:       "square-lead",
}

// VolumeFor is the default mix level per role, in dB.
var VolumeFor = map[Role]float64{
	RoleFoundation: 0,
	RoleRhythm:     -3,
	RoleHarmony:    -4,
	RoleTexture:    -9,
	RoleLead:       -6,
}

// Template is one hand-authored 16-step base pattern. Percussive
// templates use Hits; melodic templates use Degrees, where 0 is silence
// and 1..8 are scale degrees (8 = octave).
type Template struct {
	Name    string
	Hits    [16]bool
	Degrees [16]int
	Melodic bool
}

func hits(steps ...int) (h [16]bool) {
	for _, s := range steps {
		h[s] = true
	}
	return h
}

// Percussive base templates. The generator picks among these by
// constraint band, then applies bounded stochastic variation that never
// touches a downbeat.
var (
	kickFourOnFloor = Template{Name: "four-on-floor", Hits: hits(0, 4, 8, 12)}
	kickBroken      = Template{Name: "broken", Hits: hits(0, 4, 8, 10, 12)}
	kickSyncopated  = Template{Name: "syncopated", Hits: hits(0, 4, 7, 8, 12, 14)}
	kickOffbeat     = Template{Name: "offbeat", Hits: hits(0, 8)}

	snareBackbeat = Template{Name: "backbeat", Hits: hits(4, 12)}
	snareDriven   = Template{Name: "driven", Hits: hits(4, 12, 15)}
	snareBusy     = Template{Name: "busy", Hits: hits(4, 7, 12, 15)}

	hatSparse    = Template{Name: "sparse", Hits: hits(2, 6, 10, 14)}
	hatOffbeats  = Template{Name: "offbeats", Hits: hits(2, 4, 6, 10, 12, 14)}
	hatSixteenth = Template{Name: "sixteenths", Hits: hits(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)}
)

// Melodic base templates, as scale degrees.
var (
	bassRoot = Template{Name: "root-pulse", Melodic: true,
		Degrees: [16]int{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}}
	bassOctave = Template{Name: "octave-walk", Melodic: true,
		Degrees: [16]int{1, 0, 0, 8, 1, 0, 0, 0, 1, 0, 5, 0, 1, 0, 8, 0}}
	bassMoving = Template{Name: "moving-line", Melodic: true,
		Degrees: [16]int{1, 0, 3, 0, 5, 0, 0, 4, 1, 0, 6, 0, 5, 0, 3, 0}}

	leadCall = Template{Name: "call", Melodic: true,
		Degrees: [16]int{5, 0, 0, 3, 0, 0, 1, 0, 5, 0, 0, 6, 0, 0, 8, 0}}
	leadArp = Template{Name: "arp", Melodic: true,
		Degrees: [16]int{1, 0, 3, 0, 5, 0, 8, 0, 5, 0, 3, 0, 1, 0, 5, 0}}
)

// FoundationTemplate picks the kick base by energy band. Tiered bands,
// not interpolation: the cutoffs are part of the sound.
func FoundationTemplate(energy float64) Template {
	switch {
	case energy > 0.8:
		return kickFourOnFloor
	case energy > 0.6:
		return kickBroken
	case energy > 0.4:
		return kickSyncopated
	default:
		return kickOffbeat
	}
}

// RhythmTemplate picks the snare base by density band.
func RhythmTemplate(density float64) Template {
	switch {
	case density > 0.7:
		return snareBusy
	case density > 0.45:
		return snareDriven
	default:
		return snareBackbeat
	}
}

// HarmonyTemplate picks the bass base by energy band.
func HarmonyTemplate(energy float64) Template {
	switch {
	case energy > 0.75:
		return bassMoving
	case energy > 0.5:
		return bassOctave
	default:
		return bassRoot
	}
}

// TextureTemplate picks the hat base by complexity band.
func TextureTemplate(complexity float64) Template {
	switch {
	case complexity > 0.8:
		return hatSixteenth
	case complexity > 0.6:
		return hatOffbeats
	default:
		return hatSparse
	}
}

// LeadTemplate picks the melody base by complexity band.
func LeadTemplate(complexity float64) Template {
	if complexity > 0.6 {
		return leadArp
	}
	return leadCall
}
