// Package strafe filters timing events into strafe samples.
package strafe

// SampleLog is the ordered, append-only set of accepted timing deltas for one
// session. It is not safe for concurrent use; a session mutates it from a
// single goroutine.
type SampleLog struct {
	values  []float64
	last    float64
	hasLast bool
	version uint64
}

// NewSampleLog returns an empty log.
func NewSampleLog() *SampleLog {
	return &SampleLog{}
}

// Append records an accepted delta in arrival order.
func (l *SampleLog) Append(v float64) {
	l.values = append(l.values, v)
	l.last = v
	l.hasLast = true
	l.version++
}

// Clear empties the log. Clearing an empty log is a no-op.
func (l *SampleLog) Clear() {
	if len(l.values) == 0 && !l.hasLast {
		return
	}
	l.values = nil
	l.last = 0
	l.hasLast = false
	l.version++
}

// Len returns the number of accepted samples.
func (l *SampleLog) Len() int {
	return len(l.values)
}

// Last returns the most recently accepted value.
func (l *SampleLog) Last() (float64, bool) {
	return l.last, l.hasLast
}

// Values returns a copy of the samples in acceptance order.
func (l *SampleLog) Values() []float64 {
	out := make([]float64, len(l.values))
	copy(out, l.values)
	return out
}

// View returns the samples without copying. Callers must not modify it.
func (l *SampleLog) View() []float64 {
	return l.values
}

// Version changes every time the contents change.
func (l *SampleLog) Version() uint64 {
	return l.version
}
