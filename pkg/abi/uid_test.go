package abi

import "testing"

func TestNewUIDByteSwap(t *testing.T) {
	cases := []struct {
		name   string
		group1 uint32
		group2 uint16
		group3 uint16
		tail   [8]byte
		want   UID
	}{
		{
			name:   "zero",
			group1: 0,
			group2: 0,
			group3: 0,
			tail:   [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46},
			want:   UID{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46},
		},
		{
			name:   "plugin factory",
			group1: 0x7A4D811C,
			group2: 0x5211,
			group3: 0x4A1F,
			tail:   [8]byte{0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F},
			want:   UID{0x1C, 0x81, 0x4D, 0x7A, 0x11, 0x52, 0x1F, 0x4A, 0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NewUID(c.group1, c.group2, c.group3, c.tail)
			if got != c.want {
				t.Errorf("NewUID(%#x, %#x, %#x, %v) = %v, want %v", c.group1, c.group2, c.group3, c.tail, got, c.want)
			}
		})
	}
}

func TestNewUIDTailIsNotSwapped(t *testing.T) {
	tail := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	u := NewUID(0, 0, 0, tail)
	for i, b := range tail {
		if u[8+i] != b {
			t.Errorf("tail byte %d: got %#x, want %#x (tail must be copied in source order, not swapped)", i, u[8+i], b)
		}
	}
}

func TestUIDEqual(t *testing.T) {
	a := NewUID(0x7A4D811C, 0x5211, 0x4A1F, [8]byte{0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F})
	b := NewUID(0x7A4D811C, 0x5211, 0x4A1F, [8]byte{0xAE, 0xD9, 0xD2, 0xEE, 0x0B, 0x43, 0xBF, 0x9F})
	c := NewUID(0x0007B650, 0xF24B, 0x4C0B, [8]byte{0xA4, 0x64, 0xED, 0xB9, 0xF0, 0x0B, 0x2A, 0xBB})

	if !a.Equal(b) {
		t.Error("expected equal UIDs built from the same groups to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected UIDs built from different groups to compare unequal")
	}
}
