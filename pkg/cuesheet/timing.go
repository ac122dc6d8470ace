package cuesheet

// finishTrack derives a track's sample count and length in milliseconds
// from the offset where it ends. Data tracks still get a span since they
// occupy a slot. Tracks without a known start and inconsistent ends are
// left untouched.
func finishTrack(t *Record, end int64, rate uint32) {
	if !t.Subtrack || end < t.SampleOffset {
		return
	}
	t.SampleCount = end - t.SampleOffset
	if rate > 0 {
		t.SongLength = t.SampleCount * 1000 / int64(rate)
	}
}
