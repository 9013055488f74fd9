// Package status serves a small HTTP view of a running batch pipeline.
//
// Routes:
//
//	GET /healthz   liveness and build version
//	GET /progress  delivered batches, rate and ETA, plus pipeline counters
//
// The server is backed by Gin and speaks HTTP/1.1 and cleartext HTTP/2.
package status
