package song

// SectionName labels a stretch of bars in a long arrangement.
type SectionName string

const (
	SectionIntro     SectionName = "intro"
	SectionBuildup   SectionName = "buildup"
	SectionDrop      SectionName = "drop"
	SectionBreakdown SectionName = "breakdown"
	SectionPeak      SectionName = "peak"
)

// VolumeMap maps a bar index to a named section and a per-instrument dB
// offset, producing builds and breakdowns at trigger time. It is pure
// lookup data: absent sections or instruments resolve to offset 0.
type VolumeMap struct {
	ranges  []sectionRange
	offsets map[SectionName]map[string]float64
}

type sectionRange struct {
	name SectionName
	bars BarRange
}

// DefaultVolumeMap is the hand-tuned 32-bar club-arrangement dynamic:
// sparse intro, rising buildup, full drop, stripped breakdown, loud peak.
// The numbers are configuration - retune freely, the sequencer just adds
// them to the track volume.
func DefaultVolumeMap() *VolumeMap {
	return &VolumeMap{
		ranges: []sectionRange{
			{SectionIntro, BarRange{1, 4}},
			{SectionBuildup, BarRange{5, 12}},
			{SectionDrop, BarRange{13, 20}},
			{SectionBreakdown, BarRange{21, 24}},
			{SectionPeak, BarRange{25, 32}},
		},
		offsets: map[SectionName]map[string]float64{
			SectionIntro: {
				"kick": 0, "snare": -60, "hat": -6, "bass": -60, "melody": -12, "pad": -6,
			},
			SectionBuildup: {
				"kick": 0, "snare": -3, "hat": -3, "bass": -6, "melody": -6, "pad": -3,
			},
			SectionDrop: {
				"kick": 2, "snare": 0, "hat": 0, "bass": 0, "melody": 0, "pad": 0,
			},
			SectionBreakdown: {
				"kick": -60, "snare": -60, "hat": -6, "bass": -3, "melody": 0, "pad": 2,
			},
			SectionPeak: {
				"kick": 3, "snare": 2, "hat": 0, "bass": 2, "melody": 0, "pad": 0,
			},
		},
	}
}

// SectionAt returns the section the 0-based bar index falls in, or "".
func (m *VolumeMap) SectionAt(bar int) SectionName {
	if m == nil {
		return ""
	}
	for _, r := range m.ranges {
		if r.bars.Contains(bar) {
			return r.name
		}
	}
	return ""
}

// OffsetFor returns the dB offset for a track at the given bar. Unknown
// bars, sections, and tracks all resolve to 0.
func (m *VolumeMap) OffsetFor(bar int, track string) float64 {
	if m == nil {
		return 0
	}
	section := m.SectionAt(bar)
	if section == "" {
		return 0
	}
	byTrack, ok := m.offsets[section]
	if !ok {
		return 0
	}
	return byTrack[track]
}
