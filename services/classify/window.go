// Package classify holds reference activity and sleep classifiers. They
// stand in for the vendor motion libraries and are tuned for a wrist-worn
// accelerometer sampled at tens of hertz.
package classify

import "math"

// window is a fixed-capacity ring of samples with running statistics.
type window struct {
	data []float64
	pos  int
	full bool
}

func newWindow(n int) *window {
	if n < 1 {
		n = 1
	}
	return &window{data: make([]float64, n)}
}

func (w *window) Push(v float64) {
	w.data[w.pos] = v
	w.pos++
	if w.pos >= len(w.data) {
		w.pos = 0
		w.full = true
	}
}

func (w *window) Len() int {
	if w.full {
		return len(w.data)
	}
	return w.pos
}

func (w *window) Full() bool { return w.full }

// Slice returns the contents in insertion order.
func (w *window) Slice() []float64 {
	n := w.Len()
	out := make([]float64, n)
	if w.full {
		copy(out, w.data[w.pos:])
		copy(out[len(w.data)-w.pos:], w.data[:w.pos])
	} else {
		copy(out, w.data[:w.pos])
	}
	return out
}

func (w *window) Mean() float64 {
	n := w.Len()
	if n == 0 {
		return 0
	}
	var s float64
	for _, v := range w.data[:n] {
		s += v
	}
	return s / float64(n)
}

// Std is the population standard deviation.
func (w *window) Std() float64 {
	n := w.Len()
	if n == 0 {
		return 0
	}
	m := w.Mean()
	var s float64
	for _, v := range w.data[:n] {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func magnitude(a [3]float64) float64 {
	return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
}
