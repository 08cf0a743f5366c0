package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// BytesPerSample is the width of one 16-bit mono sample.
const BytesPerSample = 2

// Duration returns the playing time of mono 16-bit pcm at rate.
func Duration(pcm []byte, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	samples := len(pcm) / BytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(rate)
}

// Silence returns d worth of zeroed samples at rate.
func Silence(d time.Duration, rate int) []byte {
	samples := int(d * time.Duration(rate) / time.Second)
	return make([]byte, samples*BytesPerSample)
}

// Resample converts mono 16-bit little-endian pcm from one rate to another
// using linear interpolation. A trailing odd byte is dropped.
func Resample(pcm []byte, from, to int) ([]byte, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	n := len(pcm) / BytesPerSample
	if from == to || n == 0 {
		out := make([]byte, n*BytesPerSample)
		copy(out, pcm)
		return out, nil
	}

	in := make([]int16, n)
	for i := range in {
		in[i] = int16(binary.LittleEndian.Uint16(pcm[i*BytesPerSample:]))
	}

	m := int(int64(n) * int64(to) / int64(from))
	if m == 0 {
		m = 1
	}
	out := make([]byte, m*BytesPerSample)
	step := float64(from) / float64(to)
	for i := 0; i < m; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := pos - float64(j)

		s := float64(in[j])
		if j+1 < n {
			s += (float64(in[j+1]) - s) * frac
		}
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(int16(s)))
	}
	return out, nil
}
