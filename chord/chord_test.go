package chord

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPitchName(t *testing.T) {
	cases := map[uint8]string{
		60:  "C4",
		61:  "C#4",
		63:  "E-4",
		69:  "A4",
		70:  "B-4",
		59:  "B3",
		0:   "C-1",
		127: "G9",
	}

	for key, expected := range cases {
		name := fmt.Sprintf("pitch name for key %v", key)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, expected, PitchName(key))
		})
	}
}

func TestPitchClassesAreDistinctAndSorted(t *testing.T) {
	assert.Equal(t, []int{0, 4, 7}, PitchClasses([]uint8{67, 60, 72, 64, 48}))
}

func TestNormalOrder(t *testing.T) {
	cases := []struct {
		name     string
		keys     []uint8
		expected []int
	}{
		{"C major", []uint8{60, 64, 67}, []int{0, 4, 7}},
		{"C major first inversion", []uint8{64, 67, 72}, []int{0, 4, 7}},
		{"B major", []uint8{59, 63, 66}, []int{11, 3, 6}},
		{"A minor", []uint8{57, 60, 64}, []int{9, 0, 4}},
		{"augmented picks smallest start", []uint8{64, 68, 72}, []int{0, 4, 8}},
		{"power chord", []uint8{40, 47}, []int{11, 4}},
		{"octave doubling", []uint8{60, 72}, []int{0}},
		{"G dominant seventh", []uint8{55, 59, 62, 65}, []int{11, 2, 5, 7}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, NormalOrder(c.keys))
		})
	}
}

func TestCreateChordKey(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("0.4.7", CreateChordKey([]uint8{67, 64, 60}))
	assert.Equal("11.3.6", CreateChordKey([]uint8{59, 63, 66}))
}

func TestToken(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("E4", Token([]uint8{64}))
	assert.Equal("E4", Token([]uint8{64, 64}))
	assert.Equal("0.4.7", Token([]uint8{60, 64, 67}))
	assert.Equal("0", Token([]uint8{60, 72}))
}

func TestIsChordToken(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsChordToken("0.4.7"))
	assert.True(IsChordToken("11"))
	assert.False(IsChordToken("C4"))
	assert.False(IsChordToken("E-4"))
	assert.False(IsChordToken(""))
}
