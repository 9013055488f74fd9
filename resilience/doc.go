// Package resilience provides retry with exponential backoff for flaky
// per-batch work such as network reads or decoders that occasionally fail.
//
//	cfg := resilience.DefaultRetryConfig()
//	out, err := resilience.Retry(ctx, cfg, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx, url)
//	})
package resilience
