package batch

// Source is a finite, random-access sequence. The pipeline only reads from
// it; callers must not mutate it while a Provider is running.
type Source[T any] interface {
	// Len returns the number of items.
	Len() int
	// Slice returns items [lo, hi).
	Slice(lo, hi int) []T
}

type sliceSource[T any] []T

func (s sliceSource[T]) Len() int { return len(s) }

// Slice returns a capped sub-slice so a transform appending to its input
// cannot overwrite the next batch.
func (s sliceSource[T]) Slice(lo, hi int) []T { return s[lo:hi:hi] }

// FromSlice adapts a slice to a Source.
func FromSlice[T any](items []T) Source[T] {
	return sliceSource[T](items)
}

// BatchCount returns ceil(length / batchSize).
func BatchCount(length, batchSize int) int {
	if length <= 0 || batchSize <= 0 {
		return 0
	}
	return (length + batchSize - 1) / batchSize
}

// Bounds returns the half-open item range [lo, hi) covered by batch index.
func Bounds(index, length, batchSize int) (lo, hi int) {
	lo = index * batchSize
	hi = min(lo+batchSize, length)
	return lo, hi
}
