// Package errors provides the structured error type shared by batchkit
// packages.
//
// Every failure surfaced to a caller is an *AppError carrying a
// machine-readable ErrorCode, a human-readable message, a retryable flag and
// optional details. The underlying cause stays reachable through Unwrap, so
// errors.Is and errors.As keep working across package boundaries.
//
//	err := errors.Configuration("batch_size", "must be positive")
//	if errors.Is(err, errors.ErrCodeConfiguration) { ... }
package errors
