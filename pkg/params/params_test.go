package params

import "testing"

func TestInfoRejectsOutOfRangeIndex(t *testing.T) {
	c := &Controller{ring: NewRing()}
	// Count() calls through c.ec, which is nil here; this test only
	// exercises the bounds check path that runs before that call would
	// matter in a real controller with zero parameters, so we skip
	// straight to validating the sentinel on a manufactured zero-count
	// scenario by checking negative indices, which are rejected first.
	if _, err := c.Info(-1); err == nil {
		t.Fatal("expected negative index to be rejected")
	}
}

func TestSetRejectsOutOfRangeValue(t *testing.T) {
	c := &Controller{ring: NewRing()}
	if err := c.Set(0, 1.5); err == nil {
		t.Fatal("expected value above 1.0 to be rejected")
	}
	if err := c.Set(0, -0.1); err == nil {
		t.Fatal("expected negative value to be rejected")
	}
}

func TestDrainChangesReflectsRing(t *testing.T) {
	c := &Controller{ring: NewRing()}
	c.ring.Push(Change{ID: 5, Value: 0.75})

	got := c.DrainChanges()
	if len(got) != 1 || got[0].ID != 5 || got[0].Value != 0.75 {
		t.Errorf("unexpected drained changes: %+v", got)
	}
}
