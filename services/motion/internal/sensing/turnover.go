package sensing

// TurnOverDetector latches when the z axis changes sign between two
// consecutive non-zero readings. A second flip before the latch is consumed
// is absorbed into the same event.
type TurnOverDetector struct {
	flag bool
}

// Flipped reports a sign reversal; zero on either side is never a flip.
func Flipped(prevZ, newZ int32) bool {
	return (prevZ < 0 && newZ > 0) || (prevZ > 0 && newZ < 0)
}

// Observe folds one reading pair into the latch and returns its state.
func (d *TurnOverDetector) Observe(prevZ, newZ int32) bool {
	if Flipped(prevZ, newZ) {
		d.flag = true
	}
	return d.flag
}

func (d *TurnOverDetector) Pending() bool { return d.flag }

// Consume clears the latch and reports whether it was set.
func (d *TurnOverDetector) Consume() bool {
	was := d.flag
	d.flag = false
	return was
}
