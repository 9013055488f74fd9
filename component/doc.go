// Package component manages the lifecycle of the long-lived services that
// surround a batch run: telemetry exporters and the status server.
//
// Components start in registration order and stop in reverse order. Their
// health is reported by the status server's /healthz route.
package component
