package version

import (
	"strings"
	"testing"
)

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGet_LinkerValues(t *testing.T) {
	defer restore()()
	Version = "1.4.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-02T03:04:05Z"

	info := Get()
	if info.Version != "1.4.0" || info.GitCommit != "abc1234" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("linker values not used: %+v", info)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestInfo_Full(t *testing.T) {
	info := Info{Version: "1.0.0", GoVersion: "go1.26.0", BuildTime: "2026-01-02T03:04:05Z"}
	want := "1.0.0 (go1.26.0, built 2026-01-02T03:04:05Z)"
	if got := info.Full(); got != want {
		t.Errorf("Full() = %q, want %q", got, want)
	}
	if got := (Info{Version: "dev", GoVersion: "go1.26.0"}).Full(); got != "dev (go1.26.0)" {
		t.Errorf("Full() = %q", got)
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
}
