package pattern

import (
	"strings"

	"github.com/basedrum/basedrum-api/internal/music"
)

// nibbleDegrees maps each hex digit of a wallet address to a scale degree
// (1..8, 8 = octave) or a rest (0). Roughly a third of the digits rest so
// every address yields a line with breathing room. Fixed data: the same
// address always sings the same 16-step melody.
var nibbleDegrees = [16]int{
	1, 0, 3, 5, 0, 2, 4, 0,
	6, 1, 0, 7, 3, 0, 5, 8,
}

// AddressMelody converts the first 16 hex digits of a wallet address into
// a 16-step melody in the given key and mode. Returns parallel step and
// note slices in document form. Non-hex characters and short addresses
// degrade to rests.
func AddressMelody(address, key string, mode music.Mode) (steps []int, notes []string) {
	hex := strings.TrimPrefix(strings.ToLower(address), "0x")
	scale := music.Scale(key, mode, 4)

	for step := 0; step < 16; step++ {
		if step >= len(hex) {
			break
		}
		nibble := hexDigit(hex[step])
		if nibble < 0 {
			continue
		}
		degree := nibbleDegrees[nibble]
		if degree == 0 {
			continue
		}
		steps = append(steps, step)
		notes = append(notes, scale[(degree-1)%len(scale)])
	}
	return steps, notes
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
