// Package version reports the build identity of the batchkit binary.
//
// Values are injected at link time and fall back to the module's embedded
// VCS settings:
//
//	go build -ldflags "-X github.com/kbukum/batchkit/version.Version=1.2.0 \
//	    -X github.com/kbukum/batchkit/version.GitCommit=$(git rev-parse --short HEAD)"
package version
