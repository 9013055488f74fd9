// Package dataset provides shuffling helpers for batch sources.
package dataset

import (
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/errors"
)

// Shuffle permutes s in place. A nil r uses the global source.
func Shuffle[T any](s []T, r *rand.Rand) {
	swap := func(i, j int) { s[i], s[j] = s[j], s[i] }
	if r == nil {
		rand.Shuffle(len(s), swap)
		return
	}
	r.Shuffle(len(s), swap)
}

// ShuffleInUnison applies one random permutation to every slice, keeping
// rows aligned across them (samples and labels, for example). All arguments
// must be slices of equal length.
func ShuffleInUnison(r *rand.Rand, slices ...any) error {
	if len(slices) == 0 {
		return nil
	}
	swappers := make([]func(i, j int), len(slices))
	n := -1
	for i, s := range slices {
		v := reflect.ValueOf(s)
		if v.Kind() != reflect.Slice {
			return errors.Configuration(fmt.Sprintf("slices[%d]", i), "is not a slice").
				WithDetail("type", fmt.Sprintf("%T", s))
		}
		if n >= 0 && v.Len() != n {
			return errors.Configuration(fmt.Sprintf("slices[%d]", i), "has a different length").
				WithDetail("want", n).WithDetail("got", v.Len())
		}
		n = v.Len()
		swappers[i] = reflect.Swapper(s)
	}

	swap := func(i, j int) {
		for _, sw := range swappers {
			sw(i, j)
		}
	}
	if r == nil {
		rand.Shuffle(n, swap)
	} else {
		r.Shuffle(n, swap)
	}
	return nil
}

// Permuted is a read-only, randomly ordered view of a Source. The underlying
// data is never moved, so a new view per epoch costs one index slice.
type Permuted[T any] struct {
	src  batch.Source[T]
	perm []int
}

// Permute returns a shuffled view of src. A nil r uses the global source.
func Permute[T any](src batch.Source[T], r *rand.Rand) *Permuted[T] {
	n := src.Len()
	var perm []int
	if r == nil {
		perm = rand.Perm(n)
	} else {
		perm = r.Perm(n)
	}
	return &Permuted[T]{src: src, perm: perm}
}

// Len returns the length of the underlying source.
func (p *Permuted[T]) Len() int { return len(p.perm) }

// Slice gathers the permuted items [lo, hi) into a new slice.
func (p *Permuted[T]) Slice(lo, hi int) []T {
	out := make([]T, 0, hi-lo)
	for _, idx := range p.perm[lo:hi] {
		out = append(out, p.src.Slice(idx, idx+1)[0])
	}
	return out
}

// Index maps a position in the view to the index in the source.
func (p *Permuted[T]) Index(i int) int { return p.perm[i] }
