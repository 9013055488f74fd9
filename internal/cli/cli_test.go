package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/batchkit/batch"
	"github.com/kbukum/batchkit/tracker"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_Summary(t *testing.T) {
	out, err := runCLI(t, "run", "--items", "100", "--batch-size", "10", "--workers", "3", "--queue", "4")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "epochs=1 batches=10 items=100") {
		t.Errorf("unexpected summary %q", out)
	}
}

func TestRun_WithStatusServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	out, err := runCLI(t, "run", "--items", "30", "--batch-size", "10", "--status-addr", addr)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "batches=3 items=30") {
		t.Errorf("unexpected summary %q", out)
	}
}

func TestRun_EpochsWriteLog(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "run", "--items", "50", "--batch-size", "7",
		"--epochs", "2", "--shuffle", "--seed", "42", "--out", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "epochs=2 batches=16 items=100") {
		t.Errorf("unexpected summary %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, tracker.LogFile))
	if err != nil {
		t.Fatalf("expected log.csv: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 3 {
		t.Errorf("expected header and 2 rows, got %d lines:\n%s", lines, data)
	}
}

func TestRun_FailAt(t *testing.T) {
	_, err := runCLI(t, "run", "--items", "40", "--batch-size", "4", "--workers", "2", "--fail-at", "13")
	if !batch.IsTransformFailure(err) {
		t.Fatalf("expected TRANSFORM_FAILURE, got %v", err)
	}
	if idx, ok := batch.BatchIndex(err); !ok || idx != 3 {
		t.Errorf("expected failing batch 3, got %d", idx)
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	_, err := runCLI(t, "run", "--batch-size", "0")
	if !batch.IsConfigurationError(err) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := "pipeline:\n  batch_size: 25\n  workers: 2\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "run", "--config", path, "--items", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "batches=4 ") {
		t.Errorf("config batch size not applied: %q", out)
	}
}

func TestRun_Cache(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for range 2 {
		if out, err := runCLI(t, "run", "--items", "20", "--batch-size", "5", "--cache"); err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}
	}
	entries, err := os.ReadDir(filepath.Join(dir, ".cache"))
	if err != nil {
		t.Fatalf("expected cache dir: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("expected 4 cache entries, got %d", len(entries))
	}
}

func TestRun_CacheKeepsFailures(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if out, err := runCLI(t, "run", "--items", "20", "--batch-size", "5", "--cache"); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	_, err = runCLI(t, "run", "--items", "20", "--batch-size", "5", "--cache", "--fail-at", "7")
	if !batch.IsTransformFailure(err) {
		t.Fatalf("cached result hid the failure, got %v", err)
	}
}

func TestWorkloadName(t *testing.T) {
	base := workloadName(0, -1)
	if workloadName(0, -1) != base {
		t.Error("name must be stable")
	}
	if workloadName(time.Millisecond, -1) == base || workloadName(0, 3) == base {
		t.Error("delay and failure point must change the name")
	}
	if strings.ContainsAny(base, `/\`) {
		t.Errorf("name %q must be usable as a file name", base)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "batchkit ") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = runCLI(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info["version"] == nil {
		t.Errorf("missing version in %v", info)
	}
}

func TestHashWorkload(t *testing.T) {
	fn := hashWorkload(0, -1)
	r, err := fn(context.Background(), []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if r.Items != 3 || r.Score < 0 || r.Score >= 1 {
		t.Errorf("unexpected result %+v", r)
	}
	again, _ := fn(context.Background(), []int{1, 2, 3})
	if again != r {
		t.Error("workload must be deterministic")
	}
	if _, err := hashWorkload(0, 2)(context.Background(), []int{1, 2, 3}); err == nil {
		t.Error("expected synthetic failure")
	}
}
