package cuesheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimecodeFrames(t *testing.T) {
	tests := []struct {
		tc     string
		frames int64
		ok     bool
	}{
		{"00:00:00", 0, true},
		{"00:00:01", 1, true},
		{"00:01:00", 75, true},
		{"03:00:00", 13500, true},
		{"01:02:03", 4653, true},
		{"99:59:74", (99*60+59)*75 + 74, true},
		{"xx:01:05", 80, true},
		{"aa:bb:cc", 0, true},
		{"00:02", 0, false},
		{"0000", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tc, func(t *testing.T) {
			frames, ok := TimecodeFrames(tt.tc)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.frames, frames)
		})
	}
}

func TestTimecodeToSamples(t *testing.T) {
	tests := []struct {
		name string
		tc   string
		rate uint32
		want int64
	}{
		{"three minutes at 44.1k", "03:00:00", 44100, 3 * 60 * 44100},
		{"mixed at 44.1k", "01:02:03", 44100, 2735964},
		{"mixed at 48k", "01:02:03", 48000, 2977920},
		{"truncates", "00:00:01", 32000, 426},
		{"unknown rate keeps frames", "01:02:03", 0, 4653},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TimecodeToSamples(tt.tc, tt.rate)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := TimecodeToSamples("12:34", 44100)
	assert.False(t, ok)
}

func TestTimecodeScalingProperty(t *testing.T) {
	for m := int64(0); m < 80; m += 7 {
		for s := int64(0); s < 60; s += 13 {
			for f := int64(0); f < 75; f += 11 {
				tc := fmt.Sprintf("%02d:%02d:%02d", m, s, f)
				frames, ok := TimecodeFrames(tc)
				assert.True(t, ok)
				assert.Equal(t, (m*60+s)*75+f, frames)

				samples, _ := TimecodeToSamples(tc, 44100)
				assert.Equal(t, 44100*frames/75, samples)
			}
		}
	}
}

func TestAtoi(t *testing.T) {
	assert.Equal(t, int64(12), atoi(" 12x"))
	assert.Equal(t, int64(-3), atoi("-3"))
	assert.Equal(t, int64(7), atoi("+7"))
	assert.Equal(t, int64(0), atoi(""))
	assert.Equal(t, int64(0), atoi("abc"))
}

func TestParseUint32(t *testing.T) {
	assert.Equal(t, uint32(1998), parseUint32("1998"))
	assert.Equal(t, uint32(0), parseUint32("-1"))
	assert.Equal(t, uint32(0), parseUint32("99999999999"))
	assert.Equal(t, uint32(2003), parseUint32("2003-05-01"))
}
