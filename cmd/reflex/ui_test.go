package main

import (
	"bytes"
	"testing"
)

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("fancy"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
}

func TestShouldUseTUIAutoNeedsTerminal(t *testing.T) {
	var buf bytes.Buffer
	if shouldUseTUI(uiModeAuto, &buf) {
		t.Fatal("auto mode must stay off for a buffer")
	}
	if !shouldUseTUI(uiModeOn, &buf) || shouldUseTUI(uiModeOff, &buf) {
		t.Fatal("explicit modes must win")
	}
}
