package midi

import "testing"

func TestTranslateNoteOn(t *testing.T) {
	ev, ok := Translate(WireEvent{SampleOffset: 10, Data: [4]byte{0x91, 60, 100, 0}})
	if !ok {
		t.Fatal("expected translation to succeed")
	}
	on, isOn := ev.(NoteOnEvent)
	if !isOn {
		t.Fatalf("expected NoteOnEvent, got %T", ev)
	}
	if on.Channel() != 1 || on.NoteNumber != 60 || on.Velocity != 100 || on.SampleOffset() != 10 {
		t.Errorf("unexpected decoded event: %+v", on)
	}
}

func TestTranslateNoteOnZeroVelocityBecomesNoteOff(t *testing.T) {
	ev, ok := Translate(WireEvent{SampleOffset: 0, Data: [4]byte{0x90, 60, 0, 0}})
	if !ok {
		t.Fatal("expected translation to succeed")
	}
	off, isOff := ev.(NoteOffEvent)
	if !isOff {
		t.Fatalf("expected NoteOffEvent, got %T", ev)
	}
	if off.Velocity != 0 || off.NoteNumber != 60 {
		t.Errorf("unexpected decoded event: %+v", off)
	}
}

func TestTranslateNoteOff(t *testing.T) {
	ev, ok := Translate(WireEvent{Data: [4]byte{0x82, 64, 10, 0}})
	if !ok {
		t.Fatal("expected translation to succeed")
	}
	off := ev.(NoteOffEvent)
	if off.Channel() != 2 || off.NoteNumber != 64 || off.Velocity != 10 {
		t.Errorf("unexpected decoded event: %+v", off)
	}
}

func TestTranslatePolyPressure(t *testing.T) {
	ev, ok := Translate(WireEvent{Data: [4]byte{0xA3, 48, 90, 0}})
	if !ok {
		t.Fatal("expected translation to succeed")
	}
	pp := ev.(PolyPressureEvent)
	if pp.Channel() != 3 || pp.NoteNumber != 48 || pp.Pressure != 90 {
		t.Errorf("unexpected decoded event: %+v", pp)
	}
}

func TestTranslateIgnoresUnrecognizedStatus(t *testing.T) {
	cases := [][4]byte{
		{0xB0, 1, 127, 0}, // control change
		{0xC0, 5, 0, 0},   // program change
		{0xE0, 0, 64, 0},  // pitch bend
		{0xF8, 0, 0, 0},   // clock
	}
	for _, data := range cases {
		if _, ok := Translate(WireEvent{Data: data}); ok {
			t.Errorf("expected status %#x to be ignored", data[0])
		}
	}
}

func TestInputEventsAccumulateAndClear(t *testing.T) {
	q := NewInputEvents()
	q.Append(WireEvent{Data: [4]byte{0x90, 60, 100, 0}})
	q.Append(WireEvent{Data: [4]byte{0xB0, 1, 127, 0}}) // dropped
	q.Append(WireEvent{Data: [4]byte{0x80, 60, 0, 0}})

	if q.Len() != 2 {
		t.Fatalf("expected 2 recognized events, got %d", q.Len())
	}

	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("expected empty after Clear, got %d", q.Len())
	}
}
