package tracker

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/kbukum/batchkit/errors"
)

// LogFile is the name of the CSV history written by RegisterMeans.
const LogFile = "log.csv"

// Tracker keeps one running mean per named quantity and the per-epoch
// history of their means. All methods are safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	dir    string
	names  []string
	tracks map[string]*RunningMean
	epochs []int
	means  map[string][]float64
}

// New returns a tracker that writes its history into dir. An empty dir
// keeps the history in memory only.
func New(dir string) *Tracker {
	return &Tracker{
		dir:    dir,
		tracks: make(map[string]*RunningMean),
		means:  make(map[string][]float64),
	}
}

// Add registers a new quantity. Registering a name twice is an error.
func (t *Tracker) Add(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tracks[name]; ok {
		return errors.Configuration("name", "is already tracked").WithDetail("name", name)
	}
	t.addLocked(name)
	return nil
}

func (t *Tracker) addLocked(name string) {
	t.names = append(t.names, name)
	t.tracks[name] = &RunningMean{}
	t.means[name] = nil
}

// Update adds each value to its running mean, registering unknown names in
// sorted order.
func (t *Tracker) Update(values map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := t.tracks[k]; !ok {
			t.addLocked(k)
		}
		t.tracks[k].Add(values[k])
	}
}

// Mean returns the current running mean of name.
func (t *Tracker) Mean(name string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.tracks[name]
	if !ok {
		return 0, false
	}
	return m.Mean(), true
}

// Names returns the tracked quantities in registration order.
func (t *Tracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.names)
}

// History returns the registered means of name, one per epoch since it was added.
func (t *Tracker) History(name string) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.means[name])
}

// RegisterMeans closes an epoch: every running mean is appended to the
// history and reset, and the whole history is rewritten to log.csv.
func (t *Tracker) RegisterMeans(epoch int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epochs = append(t.epochs, epoch)
	for _, name := range t.names {
		m := t.tracks[name]
		t.means[name] = append(t.means[name], m.Mean())
		m.Reset()
	}
	if t.dir == "" {
		return nil
	}
	return t.writeCSVLocked()
}

// writeCSVLocked writes one row per epoch. Quantities added after the first
// epoch have a shorter history, aligned to the most recent epochs; rows
// older than some quantity's history are left out.
func (t *Tracker) writeCSVLocked() error {
	path := filepath.Join(t.dir, LogFile)
	f, err := os.Create(path)
	if err != nil {
		return errors.Internal(fmt.Errorf("creating %s: %w", path, err))
	}
	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"epoch"}, t.names...)); err != nil {
		_ = f.Close()
		return errors.Internal(err)
	}

	n := len(t.epochs)
rows:
	for i, epoch := range t.epochs {
		back := n - i
		row := []string{strconv.Itoa(epoch)}
		for _, name := range t.names {
			h := t.means[name]
			if back > len(h) {
				continue rows
			}
			row = append(row, strconv.FormatFloat(h[len(h)-back], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return errors.Internal(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errors.Internal(err)
	}
	if err := f.Close(); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// String renders the current means as "name: 0.1234567, other: 2.0000000".
func (t *Tracker) String() string { return t.Summary(7) }

// Summary renders the current means with the given number of decimals.
func (t *Tracker) Summary(decimals int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	parts := make([]string, 0, len(t.names))
	for _, name := range t.names {
		parts = append(parts, fmt.Sprintf("%s: %.*f", name, decimals, t.tracks[name].Mean()))
	}
	return strings.Join(parts, ", ")
}
