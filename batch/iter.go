package batch

import (
	"context"
	"iter"

	"github.com/kbukum/batchkit/errors"
)

// All returns a single-use range-over-func view of p. The range stops after
// the first error; breaking out of the loop closes the provider.
//
//	for b, err := range p.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    use(b)
//	}
func (p *Provider[T, B]) All(ctx context.Context) iter.Seq2[B, error] {
	return func(yield func(B, error) bool) {
		defer p.Close()
		for {
			b, ok, err := p.Next(ctx)
			if err != nil {
				var zero B
				yield(zero, err)
				return
			}
			if !ok || !yield(b, nil) {
				return
			}
		}
	}
}

// Collect drains p into a slice and closes it. On error the batches received
// so far are returned with it.
func Collect[T, B any](ctx context.Context, p *Provider[T, B]) ([]B, error) {
	defer p.Close()
	out := make([]B, 0, p.Len())
	for {
		b, ok, err := p.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, b)
	}
}

// ForEach calls fn for every batch and closes p when done. An error from fn
// stops the pipeline and is returned unchanged.
func ForEach[T, B any](ctx context.Context, p *Provider[T, B], fn func(B) error) error {
	defer p.Close()
	for {
		b, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}

// IsConfigurationError reports whether err came from invalid construction arguments.
func IsConfigurationError(err error) bool {
	return errors.Is(err, errors.ErrCodeConfiguration)
}

// IsTransformFailure reports whether err is a failed transform.
func IsTransformFailure(err error) bool {
	return errors.Is(err, errors.ErrCodeTransformFailure)
}

// IsTimeout reports whether err is an elapsed Next deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, errors.ErrCodeTimeout)
}

// IsCancelled reports whether err means the parent context was cancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, errors.ErrCodeCancelled)
}

// BatchIndex extracts the failing batch index from a transform failure.
func BatchIndex(err error) (int, bool) {
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeTransformFailure {
		return 0, false
	}
	idx, ok := appErr.Details["batch_index"].(int)
	return idx, ok
}
