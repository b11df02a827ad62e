package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			name: "defaults filled",
			in:   Info{Version: "dev", Commit: "none", Date: "unknown"},
			want: Info{Version: "v0.3.1", Commit: "0123456789abcdef", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			in:   Info{Version: "v1.0.0", Commit: "abc", Date: "today"},
			want: Info{Version: "v1.0.0", Commit: "abc", Date: "today"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fill(tt.in, bi); got != tt.want {
				t.Errorf("fill() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFillDevelBuild(t *testing.T) {
	got := fill(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}
}

func TestShort(t *testing.T) {
	if got := (Info{Commit: "0123456789abcdef"}).Short(); got != "0123456" {
		t.Errorf("Short() = %q", got)
	}
	if got := (Info{Commit: "none"}).Short(); got != "none" {
		t.Errorf("Short() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if tmpl := Template(); !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if s := Get().String(); !strings.Contains(s, "go: go") {
		t.Errorf("String() = %q, missing go version", s)
	}
}
