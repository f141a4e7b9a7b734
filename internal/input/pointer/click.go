package pointer

import "time"

// ClickTracker detects multi-click sequences by time and distance.
// Double-clicks finalize split lines and close drawn shapes, so the
// thresholds come from configuration rather than constants.
type ClickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastPos   Position
	lastTime  time.Time
	lastCount int
}

// NewClickTracker creates a tracker with the given double-click window
// and maximum Manhattan distance between clicks.
func NewClickTracker(maxTime time.Duration, maxDistance int) *ClickTracker {
	return &ClickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// RecordClick records a click and returns the sequence count (1, 2, 3).
// The count wraps back to 1 after 3. A zero timestamp falls back to the
// current time.
func (t *ClickTracker) RecordClick(pos Position, timestamp time.Time) int {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	if t.partOfSequence(pos, timestamp) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastPos = pos
	t.lastTime = timestamp
	return t.lastCount
}

// partOfSequence checks whether a click continues the current sequence.
func (t *ClickTracker) partOfSequence(pos Position, timestamp time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() {
		return false
	}

	// A negative elapsed time means clock skew; start a new sequence.
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}

	return pos.Distance(t.lastPos) <= t.maxDistance
}

// Count returns the last recorded click count.
func (t *ClickTracker) Count() int {
	return t.lastCount
}

// Reset clears the click sequence.
func (t *ClickTracker) Reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = Position{}
}
