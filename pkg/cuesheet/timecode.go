package cuesheet

import "strings"

// FramesPerSecond is the CD-audio frame rate of MM:SS:FF timecodes.
const FramesPerSecond = 75

// TimecodeFrames converts an MM:SS:FF timecode to a frame count. Segments
// are parsed leniently, so a malformed segment counts as zero. ok is false
// when either separator is missing.
func TimecodeFrames(tc string) (frames int64, ok bool) {
	mm, rest, found := strings.Cut(tc, ":")
	if !found {
		return 0, false
	}
	ss, ff, found := strings.Cut(rest, ":")
	if !found {
		return 0, false
	}
	return (atoi(mm)*60+atoi(ss))*FramesPerSecond + atoi(ff), true
}

// TimecodeToSamples converts an MM:SS:FF timecode to a sample offset at the
// given rate. With an unknown rate (0) the frame count is returned unscaled.
func TimecodeToSamples(tc string, rate uint32) (int64, bool) {
	frames, ok := TimecodeFrames(tc)
	if !ok {
		return 0, false
	}
	if rate == 0 {
		return frames, true
	}
	return int64(rate) * frames / FramesPerSecond, true
}

// atoi parses a leading decimal integer the way C atoi does: leading
// whitespace and a sign are accepted, parsing stops at the first non-digit,
// and no digits yields 0.
func atoi(s string) int64 {
	s = trimLeftSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (1<<62)/10 {
			break
		}
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

// parseUint32 parses a leading unsigned decimal. Values that do not fit, or
// negative values, yield 0.
func parseUint32(s string) uint32 {
	n := atoi(s)
	if n < 0 || n > 1<<32-1 {
		return 0
	}
	return uint32(n)
}
