package protocol

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

// sendRequest writes a full request and reads back the response header
// and payload over a net.Pipe-backed connection pair.
func sendRequest(t *testing.T, conn net.Conn, cmd Command, payload []byte) (Status, []byte) {
	t.Helper()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	var hdr [16]byte
	putU32 := func(b []byte, v uint32) { b[0] = byte(v); b[1] = byte(v >> 8); b[2] = byte(v >> 16); b[3] = byte(v >> 24) }
	putU32(hdr[0:4], requestMagic)
	putU32(hdr[4:8], protocolVersion)
	putU32(hdr[8:12], uint32(cmd))
	putU32(hdr[12:16], uint32(len(payload)))
	if _, err := conn.Write(hdr[:]); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}

	var rhdr [12]byte
	if _, err := readFull(conn, rhdr[:]); err != nil {
		t.Fatalf("read response header: %v", err)
	}
	getU32 := func(b []byte) uint32 { return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24 }
	status := Status(getU32(rhdr[4:8]))
	size := getU32(rhdr[8:12])
	var body []byte
	if size > 0 {
		body = make([]byte, size)
		if _, err := readFull(conn, body); err != nil {
			t.Fatalf("read response payload: %v", err)
		}
	}
	return status, body
}

func TestServePingReturnsOK(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := NewServer(zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- s.Serve(server) }()

	status, body := sendRequest(t, client, CmdPing, nil)
	if status != StatusOK || len(body) != 0 {
		t.Fatalf("unexpected ping response: status=%d body=%v", status, body)
	}

	sendShutdown(t, client)
	if err := <-done; err != nil {
		t.Fatalf("Serve returned error: %v", err)
	}
}

func TestServeRejectsCommandsBeforeLoad(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := NewServer(zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- s.Serve(server) }()

	status, _ := sendRequest(t, client, CmdGetInfo, nil)
	if status != StatusNotLoaded {
		t.Fatalf("expected StatusNotLoaded, got %d", status)
	}

	sendShutdown(t, client)
	<-done
}

func TestServeLoadPluginMissingFileReturnsError(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := NewServer(zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- s.Serve(server) }()

	payload := make([]byte, loadPluginPathLen+4)
	copy(payload, "/nonexistent/does-not-exist.vst3")
	status, _ := sendRequest(t, client, CmdLoadPlugin, payload)
	if status != StatusError && status != StatusInvalidParam {
		t.Fatalf("expected a failure status, got %d", status)
	}

	sendShutdown(t, client)
	<-done
}

func TestServeUnknownCommandReturnsInvalidParam(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := NewServer(zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- s.Serve(server) }()

	status, _ := sendRequest(t, client, Command(12345), nil)
	if status != StatusInvalidParam {
		t.Fatalf("expected StatusInvalidParam, got %d", status)
	}

	sendShutdown(t, client)
	<-done
}

func sendShutdown(t *testing.T, conn net.Conn) {
	t.Helper()
	sendRequest(t, conn, CmdShutdown, nil)
}
