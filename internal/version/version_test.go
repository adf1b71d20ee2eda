package version

import (
	"strings"
	"testing"
)

func TestBannerPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := []struct {
		in, want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"  ", "dev"},
		{"7", "7"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Banner(false); got != tt.want {
			t.Errorf("Banner(false) with %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBannerColored(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-dev"
	got := Banner(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("Banner(true) = %q, want ANSI escapes", got)
	}
	if !strings.HasSuffix(got, "-dev") {
		t.Fatalf("Banner(true) = %q, want plain -dev suffix", got)
	}
}

func TestOptionalFieldsDefaultEmpty(t *testing.T) {
	if GitCommit != "" || BuildDate != "" {
		t.Fatalf("unexpected build metadata: commit=%q date=%q", GitCommit, BuildDate)
	}
}
