// Package protocol implements the binary framed request/response wire
// format this host speaks over its single client connection: a
// fixed-size header, a length-delimited payload, and a command dispatch
// table covering load/unload, info, audio init/process, the parameter
// surface, MIDI input, and the editor surface.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rack-audio/vst3host/pkg/hosterr"
)

// Command identifies a request. Values match the wire protocol exactly;
// they are not renumbered for Go-side convenience.
type Command uint32

const (
	CmdPing             Command = 1
	CmdLoadPlugin       Command = 2
	CmdUnloadPlugin     Command = 3
	CmdGetInfo          Command = 4
	CmdInit             Command = 5 // legacy alias for CmdInitAudio
	CmdProcess          Command = 6 // legacy alias for CmdProcessAudio
	CmdGetParamCount    Command = 7
	CmdGetParamInfo     Command = 8
	CmdGetParam         Command = 9
	CmdSetParam         Command = 10
	CmdSendMidi         Command = 11
	CmdGetState         Command = 12
	CmdSetState         Command = 13
	CmdOpenEditor       Command = 14
	CmdCloseEditor      Command = 15
	CmdGetEditorSize    Command = 16
	CmdGetParamChanges  Command = 17
	CmdInitAudio        Command = 20
	CmdProcessAudio     Command = 21
	CmdShutdown         Command = 99
)

// Status is the response status code. Values match the wire protocol.
type Status uint32

const (
	StatusOK              Status = 0
	StatusError           Status = 1
	StatusNotLoaded       Status = 2
	StatusNotInitialized  Status = 3
	StatusInvalidParam    Status = 4
)

const (
	requestMagic  uint32 = 0x484E5752 // 'RWNH'
	responseMagic uint32 = 0x524E5752 // 'RWNR'
	protocolVersion uint32 = 1

	requestHeaderSize  = 16
	responseHeaderSize = 12
)

// RequestHeader is the fixed 16-byte prefix of every client message.
type RequestHeader struct {
	Magic       uint32
	Version     uint32
	Command     Command
	PayloadSize uint32
}

// ResponseHeader is the fixed 12-byte prefix of every reply.
type ResponseHeader struct {
	Magic       uint32
	Status      Status
	PayloadSize uint32
}

// ReadRequestHeader reads and validates the 16-byte request header. A
// bad magic or unsupported version is a framing error: the caller must
// close the connection rather than attempt to recover mid-stream, since
// there is no way to know where the next valid header would start.
func ReadRequestHeader(r io.Reader) (RequestHeader, error) {
	var buf [requestHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return RequestHeader{}, fmt.Errorf("%w: read header: %v", hosterr.ErrFraming, err)
	}
	h := RequestHeader{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint32(buf[4:8]),
		Command:     Command(binary.LittleEndian.Uint32(buf[8:12])),
		PayloadSize: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Magic != requestMagic {
		return RequestHeader{}, fmt.Errorf("%w: bad magic %#x", hosterr.ErrFraming, h.Magic)
	}
	if h.Version != protocolVersion {
		return RequestHeader{}, fmt.Errorf("%w: unsupported version %d", hosterr.ErrFraming, h.Version)
	}
	return h, nil
}

// ReadPayload reads exactly size bytes following a header.
func ReadPayload(r io.Reader, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", hosterr.ErrFraming, err)
	}
	return buf, nil
}

// WriteResponse writes a response header followed by payload.
func WriteResponse(w io.Writer, status Status, payload []byte) error {
	var buf [responseHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], responseMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(status))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(payload)))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: write header: %v", hosterr.ErrFraming, err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("%w: write payload: %v", hosterr.ErrFraming, err)
		}
	}
	return nil
}

// statusFor maps a taxonomy error to a wire status code via errors.Is,
// never by string matching.
func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, hosterr.ErrNotLoaded):
		return StatusNotLoaded
	case errors.Is(err, hosterr.ErrNotInitialized):
		return StatusNotInitialized
	case errors.Is(err, hosterr.ErrInvalidParam), errors.Is(err, hosterr.ErrInterfaceAbsent):
		return StatusInvalidParam
	default:
		return StatusError
	}
}
