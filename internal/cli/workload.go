package cli

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// result is what the synthetic transform produces per batch.
type result struct {
	Items int
	Score float64
}

// workloadName names a hashWorkload configuration for the memo cache, so
// results are never shared between different delays or failure points.
func workloadName(delay time.Duration, failAt int) string {
	return fmt.Sprintf("hash-d%d-f%d", delay.Nanoseconds(), failAt)
}

// hashWorkload returns a transform that hashes every item, optionally
// sleeping per batch and failing on the batch that contains failAt.
func hashWorkload(delay time.Duration, failAt int) func(context.Context, []int) (result, error) {
	return func(ctx context.Context, items []int) (result, error) {
		if failAt >= 0 && slices.Contains(items, failAt) {
			return result{}, fmt.Errorf("synthetic failure on item %d", failAt)
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return result{}, ctx.Err()
			}
		}
		// Mean of per-item values uniform in [0, 1).
		var acc float64
		for _, it := range items {
			sum := sha256.Sum256([]byte(strconv.Itoa(it)))
			acc += float64(binary.BigEndian.Uint64(sum[:8])>>11) / (1 << 53)
		}
		return result{Items: len(items), Score: acc / float64(len(items))}, nil
	}
}
