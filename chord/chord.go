package chord

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const Delimiter = "."

// spelling used for pitches read from MIDI, flats written with "-"
var pitchClassNames = [12]string{"C", "C#", "D", "E-", "E", "F", "F#", "G", "G#", "A", "B-", "B"}

// PitchName spells a MIDI key, 60 is C4.
func PitchName(key uint8) string {
	octave := int(key)/12 - 1
	return fmt.Sprintf("%s%d", pitchClassNames[key%12], octave)
}

func PitchClasses(keys []uint8) []int {
	seen := make(map[int]bool)
	var res []int
	for _, k := range keys {
		pc := int(k % 12)
		if !seen[pc] {
			seen[pc] = true
			res = append(res, pc)
		}
	}
	sort.Ints(res)
	return res
}

// NormalOrder returns the pitch classes of keys in normal order: the
// rotation with the smallest span, ties broken by packing towards the
// first element (last-to-first, then second-last-to-first, ...), then by
// the smallest starting pitch class.
func NormalOrder(keys []uint8) []int {
	pcs := PitchClasses(keys)
	n := len(pcs)
	if n <= 1 {
		return pcs
	}

	best := -1
	var bestIntervals []int
	for r := 0; r < n; r++ {
		intervals := make([]int, n-1)
		for i := n - 1; i >= 1; i-- {
			// interval from the first element to element i, most significant first
			intervals[n-1-i] = mod12(pcs[(r+i)%n] - pcs[r])
		}
		if best == -1 || lessIntervals(intervals, bestIntervals) ||
			(equalIntervals(intervals, bestIntervals) && pcs[r] < pcs[best]) {
			best = r
			bestIntervals = intervals
		}
	}

	res := make([]int, n)
	for i := range res {
		res[i] = pcs[(best+i)%n]
	}
	return res
}

func mod12(v int) int {
	return ((v % 12) + 12) % 12
}

func lessIntervals(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func equalIntervals(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CreateChordKey turns sounding keys into a chord token, e.g. 60 64 67 -> "0.4.7".
func CreateChordKey(keys []uint8) string {
	order := NormalOrder(keys)
	parts := make([]string, len(order))
	for i, pc := range order {
		parts[i] = strconv.Itoa(pc)
	}
	return strings.Join(parts, Delimiter)
}

// Token returns a note token for a single distinct key and a chord token
// otherwise. Repeated keys count once.
func Token(keys []uint8) string {
	distinct := make(map[uint8]bool)
	for _, k := range keys {
		distinct[k] = true
	}
	if len(distinct) == 1 {
		return PitchName(keys[0])
	}
	return CreateChordKey(keys)
}

func IsChordToken(token string) bool {
	if token == "" {
		return false
	}
	for _, part := range strings.Split(token, Delimiter) {
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}
