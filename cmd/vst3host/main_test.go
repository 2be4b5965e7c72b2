package main

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if parseLevel("") != zapcore.InfoLevel {
		t.Fatalf("expected InfoLevel for empty string")
	}
	if parseLevel("bogus") != zapcore.InfoLevel {
		t.Fatalf("expected InfoLevel fallback for unrecognized value")
	}
}

func TestParseLevelRecognizesEachName(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for name, want := range cases {
		if got := parseLevel(name); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBindFirstFreePortFindsAPort(t *testing.T) {
	ln, port, err := bindFirstFreePort(49500, 49600)
	if err != nil {
		t.Fatalf("bindFirstFreePort failed: %v", err)
	}
	defer ln.Close()
	if port < 49500 || port > 49600 {
		t.Fatalf("port %d outside requested range", port)
	}
}

func TestBindFirstFreePortFailsOnExhaustedRange(t *testing.T) {
	// An inverted range never matches a port, so this should fail fast
	// without binding anything.
	if _, _, err := bindFirstFreePort(1, 0); err == nil {
		t.Fatal("expected failure for empty range")
	}
}
