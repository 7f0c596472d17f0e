package pattern

// The threshold tier is the fast, non-stochastic generator used by the
// onboarding flow: each instrument maps one raw scalar straight into a
// canonical pattern through an ordered set of inclusive bands. The bands
// are strict supersets, so a busier identity always keeps every hit of a
// quieter one and only gains new ones.

type thresholdBand struct {
	max   int // inclusive upper bound; -1 means no bound
	steps []int
}

// Each table's step lists grow monotonically: band N+1 is a strict
// superset of band N. Tests assert this at the value level.
var (
	kickBands = []thresholdBand{
		{max: 0, steps: []int{0, 4, 8, 12}},
		{max: 25, steps: []int{0, 4, 8, 12, 14}},
		{max: 100, steps: []int{0, 2, 4, 6, 8, 10, 12, 14}},
		{max: -1, steps: []int{0, 2, 3, 4, 6, 7, 8, 10, 11, 12, 14, 15}},
	}
	snareBands = []thresholdBand{
		{max: 0, steps: []int{4, 12}},
		{max: 250, steps: []int{4, 12, 15}},
		{max: 1000, steps: []int{4, 7, 12, 15}},
		{max: -1, steps: []int{2, 4, 7, 10, 12, 15}},
	}
	bassBands = []thresholdBand{
		{max: 0, steps: []int{0, 8}},
		{max: 5, steps: []int{0, 8, 11}},
		{max: 20, steps: []int{0, 3, 8, 11}},
		{max: -1, steps: []int{0, 3, 6, 8, 11, 14}},
	}
)

func thresholdPattern(bands []thresholdBand, scalar int) []int {
	if scalar < 0 {
		scalar = 0
	}
	for _, band := range bands {
		if band.max < 0 || scalar <= band.max {
			out := make([]int, len(band.steps))
			copy(out, band.steps)
			return out
		}
	}
	return nil
}

// KickPattern buckets the transaction count: dormant wallets get a plain
// four-on-the-floor, active ones earn anticipation steps and finally full
// syncopation.
func KickPattern(txCount int) []int {
	return thresholdPattern(kickBands, txCount)
}

// SnarePattern buckets the follower count onto the backbeat.
func SnarePattern(followerCount int) []int {
	return thresholdPattern(snareBands, followerCount)
}

// BassPattern buckets the token count onto the root pulse.
func BassPattern(tokenCount int) []int {
	return thresholdPattern(bassBands, tokenCount)
}
