package tracker

// RunningMean is an incrementally updated arithmetic mean.
// It is not safe for concurrent use on its own; Tracker guards its means.
type RunningMean struct {
	mean float64
	n    int
}

// Add folds v into the mean.
func (m *RunningMean) Add(v float64) {
	m.mean = (v + m.mean*float64(m.n)) / float64(m.n+1)
	m.n++
}

// Mean returns the current mean, 0 when nothing was added.
func (m *RunningMean) Mean() float64 { return m.mean }

// Count returns how many values were added.
func (m *RunningMean) Count() int { return m.n }

// Reset clears the mean.
func (m *RunningMean) Reset() {
	m.mean = 0
	m.n = 0
}
