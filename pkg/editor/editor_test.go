package editor

import "testing"

func TestClampEnforcesMinimum(t *testing.T) {
	if got := clamp(50); got != minWidth {
		t.Errorf("expected clamp(50) = %d, got %d", minWidth, got)
	}
	if got := clamp(1920); got != 1920 {
		t.Errorf("expected clamp to pass through values above the minimum, got %d", got)
	}
}
