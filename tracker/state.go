package tracker

// MeanState is the persisted form of a RunningMean.
type MeanState struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"n"`
}

// State is a serializable copy of a Tracker, for checkpointing.
type State struct {
	Names  []string             `json:"names"`
	Tracks map[string]MeanState `json:"tracks"`
	Epochs []int                `json:"epochs"`
	Means  map[string][]float64 `json:"means_over_epochs"`
}

// State returns a deep copy of the tracker's state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := State{
		Names:  append([]string(nil), t.names...),
		Tracks: make(map[string]MeanState, len(t.tracks)),
		Epochs: append([]int(nil), t.epochs...),
		Means:  make(map[string][]float64, len(t.means)),
	}
	for name, m := range t.tracks {
		s.Tracks[name] = MeanState{Mean: m.mean, Count: m.n}
	}
	for name, h := range t.means {
		s.Means[name] = append([]float64(nil), h...)
	}
	return s
}

// LoadState replaces the tracker's state. Histories are truncated to the
// shortest one, so a checkpoint written mid-epoch loads consistently.
func (t *Tracker) LoadState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names = append([]string(nil), s.Names...)
	t.tracks = make(map[string]*RunningMean, len(s.Names))
	t.means = make(map[string][]float64, len(s.Names))
	for _, name := range s.Names {
		ms := s.Tracks[name]
		t.tracks[name] = &RunningMean{mean: ms.Mean, n: ms.Count}
		t.means[name] = append([]float64(nil), s.Means[name]...)
	}

	shortest := len(s.Epochs)
	for _, h := range t.means {
		shortest = min(shortest, len(h))
	}
	t.epochs = append([]int(nil), s.Epochs[:shortest]...)
	for name, h := range t.means {
		t.means[name] = h[:min(len(h), shortest)]
	}
}
