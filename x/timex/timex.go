package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns the tick period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(1_000_000_000 / uint64(freqHz))
}

// PeriodMsFromHz is the integer millisecond period (1000/f, truncated),
// the unit of the logical sample clock.
func PeriodMsFromHz(freqHz uint32) int64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return int64(1000 / freqHz)
}
