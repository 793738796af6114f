package g711

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTone(t *testing.T, low, high float64, durationMs int) []byte {
	t.Helper()
	n := sampleRate * durationMs / 1000
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		tt := float64(i) / sampleRate
		sample := (16000*math.Sin(2*math.Pi*low*tt) + 16000*math.Sin(2*math.Pi*high*tt)) / 2
		out = append(out, Linear16ToMulaw(int16(sample)))
	}
	return out
}

func detectTone(tone []byte) (byte, bool) {
	d := NewDTMFDetector()
	for start := 0; start+160 <= len(tone); start += 160 {
		if digit, ok := d.IngestMulaw(tone[start : start+160]); ok {
			return digit, true
		}
	}
	return 0, false
}

func TestDTMFDetectOne(t *testing.T) {
	digit, ok := detectTone(generateTone(t, 697, 1209, 200))
	require.True(t, ok)
	assert.Equal(t, byte('1'), digit)
}

func TestDTMFDetectHash(t *testing.T) {
	digit, ok := detectTone(generateTone(t, 941, 1477, 200))
	require.True(t, ok)
	assert.Equal(t, byte('#'), digit)
}

func TestDTMFDebouncePerPress(t *testing.T) {
	d := NewDTMFDetector()
	tone := generateTone(t, 697, 1209, 200)
	silence := make([]byte, 160)
	for i := range silence {
		silence[i] = 0xFF // mu-law zero amplitude
	}

	emitted := 0
	for start := 0; start+160 <= len(tone); start += 160 {
		if _, ok := d.IngestMulaw(tone[start : start+160]); ok {
			emitted++
		}
	}
	assert.Equal(t, 1, emitted, "sustained tone must emit exactly once")

	// silence clears the active digit so a second press can be detected
	_, ok := d.IngestMulaw(silence)
	assert.False(t, ok)

	emitted = 0
	for start := 0; start+160 <= len(tone); start += 160 {
		if _, ok := d.IngestMulaw(tone[start : start+160]); ok {
			emitted++
		}
	}
	assert.Equal(t, 1, emitted, "second press after silence must emit again")
}

func TestDTMFShortFrameIgnored(t *testing.T) {
	d := NewDTMFDetector()
	_, ok := d.IngestMulaw(make([]byte, 10))
	assert.False(t, ok)
}
