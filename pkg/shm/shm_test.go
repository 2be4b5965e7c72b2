package shm

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeTestRegion(t *testing.T, numIn, numOut, blockSize uint32) string {
	t.Helper()

	headerBytes := make([]byte, headerSize)
	le := binary.LittleEndian
	le.PutUint32(headerBytes[0:4], Magic)
	le.PutUint32(headerBytes[4:8], Version)
	le.PutUint32(headerBytes[8:12], numIn)
	le.PutUint32(headerBytes[12:16], numOut)
	le.PutUint32(headerBytes[16:20], blockSize)
	le.PutUint32(headerBytes[20:24], 48000)
	le.PutUint32(headerBytes[32:36], headerSize)
	le.PutUint32(headerBytes[36:40], headerSize+numIn*blockSize*4)

	total := headerSize + int(numIn+numOut)*int(blockSize)*4
	buf := make([]byte, total)
	copy(buf, headerBytes)

	path := filepath.Join(t.TempDir(), "region")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write test region: %v", err)
	}
	return path
}

func TestOpenValidatesMagicAndVersion(t *testing.T) {
	path := writeTestRegion(t, 2, 2, 64)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if r.Header().NumInputs != 2 || r.Header().NumOutputs != 2 {
		t.Errorf("unexpected channel counts: %+v", r.Header())
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := writeTestRegion(t, 1, 1, 32)
	data, _ := os.ReadFile(path)
	binary.LittleEndian.PutUint32(data[0:4], 0xDEADBEEF)
	os.WriteFile(path, data, 0o600)

	if _, err := Open(path); err == nil {
		t.Fatal("expected Open to reject a bad magic")
	}
}

func TestChannelSlicesAreIndependentAndCorrectLength(t *testing.T) {
	path := writeTestRegion(t, 2, 1, 8)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	in0 := r.InputChannel(0)
	in1 := r.InputChannel(1)
	out0 := r.OutputChannel(0)

	if len(in0) != 8 || len(in1) != 8 || len(out0) != 8 {
		t.Fatalf("expected length-8 channels, got %d/%d/%d", len(in0), len(in1), len(out0))
	}

	in0[0] = 1.5
	if in1[0] == 1.5 {
		t.Error("writing channel 0 leaked into channel 1")
	}
}

func TestHostReadyRoundTrip(t *testing.T) {
	path := writeTestRegion(t, 1, 1, 16)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	r.SetHostReady(true)
	if got := binary.LittleEndian.Uint32(r.data[24:28]); got != 1 {
		t.Errorf("expected host_ready field to read back as 1, got %d", got)
	}
	if r.ClientReady() {
		t.Error("SetHostReady must not affect ClientReady")
	}
}
