package progress

// Reporter receives a completion signal for every delivered batch.
type Reporter interface {
	Increment(n int)
}

// Func adapts a plain function to the Reporter interface.
type Func func(n int)

// Increment calls f(n).
func (f Func) Increment(n int) { f(n) }

type multi []Reporter

func (m multi) Increment(n int) {
	for _, r := range m {
		r.Increment(n)
	}
}

// Multi returns a Reporter that forwards every Increment to each non-nil reporter.
func Multi(reporters ...Reporter) Reporter {
	out := make(multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type nop struct{}

func (nop) Increment(int) {}

// Nop returns a Reporter that ignores every call.
func Nop() Reporter { return nop{} }
