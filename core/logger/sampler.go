package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler passes the first n of every d debug lines. d == 0 passes all.
type ratioSampler struct {
	n, d uint64
	seen atomic.Uint64
}

func newRatioSampler(n, d int) *ratioSampler {
	if n <= 0 || d <= 0 {
		return &ratioSampler{}
	}
	return &ratioSampler{n: uint64(min(n, d)), d: uint64(d)}
}

// Allow reports whether the next event is sampled in.
func (s *ratioSampler) Allow() bool {
	if s.d == 0 {
		return true
	}
	return (s.seen.Add(1)-1)%s.d < s.n
}

// parseRatioSpec reads LOG_DEBUG_SAMPLE: "n/d", or a bare "d" for 1/d.
// Unparseable input yields 0, 0.
func parseRatioSpec(spec string) (int, int) {
	num, den, hasSlash := strings.Cut(strings.TrimSpace(spec), "/")
	if !hasSlash {
		num, den = "1", num
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || (!hasSlash && d <= 0) {
		return 0, 0
	}
	return n, d
}
