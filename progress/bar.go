package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	defaultColumns     = 80
	defaultMinInterval = 300 * time.Millisecond
	percentMultiplier  = 100
)

// Bar renders a single-line progress bar, redrawn in place with '\r'.
// Redraws are throttled to one per interval, except the final one which is
// always printed and followed by a newline.
type Bar struct {
	mu          sync.Mutex
	out         io.Writer
	total       int
	current     int
	prefix      string
	suffix      string
	decimals    int
	width       int
	fill        string
	minInterval time.Duration
	lastPrint   time.Time
	now         func() time.Time
}

// BarOption configures a Bar.
type BarOption func(*Bar)

// WithWriter sets the output writer (stderr by default).
func WithWriter(w io.Writer) BarOption {
	return func(b *Bar) { b.out = w }
}

// WithPrefix sets the text printed before the bar.
func WithPrefix(prefix string) BarOption {
	return func(b *Bar) { b.prefix = prefix }
}

// WithSuffix sets the text printed after the counters.
func WithSuffix(suffix string) BarOption {
	return func(b *Bar) { b.suffix = suffix }
}

// WithWidth fixes the bar width in characters instead of fitting the terminal.
func WithWidth(width int) BarOption {
	return func(b *Bar) { b.width = width }
}

// WithFill sets the character used for the completed part of the bar.
func WithFill(fill string) BarOption {
	return func(b *Bar) { b.fill = fill }
}

// WithMinInterval sets the minimum time between redraws.
func WithMinInterval(d time.Duration) BarOption {
	return func(b *Bar) { b.minInterval = d }
}

// NewBar creates a bar for total iterations.
func NewBar(total int, opts ...BarOption) *Bar {
	b := &Bar{
		out:         os.Stderr,
		total:       total,
		prefix:      "Progress:",
		decimals:    1,
		fill:        "#",
		minInterval: defaultMinInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.width <= 0 {
		b.width = max(1, columnsOf(b.out)-len(b.status("", percentMultiplier))-1)
	}
	return b
}

// Increment advances the bar by n and redraws it if the throttle allows.
func (b *Bar) Increment(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current += n
	now := b.now()
	done := b.current >= b.total
	if !done && now.Sub(b.lastPrint) < b.minInterval {
		return
	}
	b.lastPrint = now

	percent := 0.0
	filled := 0
	if b.total > 0 {
		percent = percentMultiplier * float64(b.current) / float64(b.total)
		filled = min(b.width, b.width*b.current/b.total)
	}
	bar := strings.Repeat(b.fill, filled) + strings.Repeat("-", b.width-filled)
	_, _ = io.WriteString(b.out, b.status(bar, percent))
	if b.current == b.total {
		_, _ = io.WriteString(b.out, "\n")
	}
}

// Current returns the number of iterations counted so far.
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Bar) status(bar string, percent float64) string {
	s := fmt.Sprintf("\r%s |%s| %.*f%% [%d/%d]", b.prefix, bar, b.decimals, percent, b.current, b.total)
	if b.suffix != "" {
		s += " " + b.suffix
	}
	return s
}

// columnsOf returns the terminal width behind w, or 80 when w is not a terminal.
func columnsOf(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultColumns
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return defaultColumns
	}
	return cols
}
