package protocol

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

func writeRawRequest(t *testing.T, w *bytes.Buffer, magic, version uint32, cmd Command, payload []byte) {
	t.Helper()
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:4], magic)
	binary.LittleEndian.PutUint32(hdr[4:8], version)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(cmd))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(payload)))
	w.Write(hdr[:])
	w.Write(payload)
}

func TestReadRequestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writeRawRequest(t, &buf, requestMagic, protocolVersion, CmdPing, nil)

	h, err := ReadRequestHeader(&buf)
	if err != nil {
		t.Fatalf("ReadRequestHeader failed: %v", err)
	}
	if h.Command != CmdPing || h.PayloadSize != 0 {
		t.Errorf("unexpected header: %+v", h)
	}
}

func TestReadRequestHeaderRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	writeRawRequest(t, &buf, 0xDEADBEEF, protocolVersion, CmdPing, nil)

	if _, err := ReadRequestHeader(&buf); err == nil {
		t.Fatal("expected bad magic to be rejected")
	}
}

func TestReadRequestHeaderRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	writeRawRequest(t, &buf, requestMagic, 99, CmdPing, nil)

	if _, err := ReadRequestHeader(&buf); err == nil {
		t.Fatal("expected unsupported version to be rejected")
	}
}

func TestWriteResponseThenReadBackOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := []byte("hello")
	done := make(chan error, 1)
	go func() {
		done <- WriteResponse(server, StatusOK, payload)
	}()

	client.SetReadDeadline(time.Now().Add(time.Second))
	var hdr [12]byte
	if _, err := readFull(client, hdr[:]); err != nil {
		t.Fatalf("read response header: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}

	magic := binary.LittleEndian.Uint32(hdr[0:4])
	status := binary.LittleEndian.Uint32(hdr[4:8])
	size := binary.LittleEndian.Uint32(hdr[8:12])
	if magic != responseMagic || status != uint32(StatusOK) || size != uint32(len(payload)) {
		t.Fatalf("unexpected response header: magic=%#x status=%d size=%d", magic, status, size)
	}

	got := make([]byte, size)
	if _, err := readFull(client, got); err != nil {
		t.Fatalf("read response payload: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("expected payload %q, got %q", payload, got)
	}
}

func readFull(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
