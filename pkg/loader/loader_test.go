//go:build linux || darwin

package loader

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestResolveMakesPathAbsolute(t *testing.T) {
	resolved, err := resolve("./plugin.so")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.HasSuffix(resolved, "plugin.so") {
		t.Errorf("expected resolved path to end in plugin.so, got %q", resolved)
	}
	if resolved[0] != '/' {
		t.Errorf("expected an absolute path, got %q", resolved)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	log := zap.NewNop()
	if _, err := Load(log, "/nonexistent/path/to/plugin.so"); err == nil {
		t.Fatal("expected Load of a nonexistent file to fail")
	}
}
