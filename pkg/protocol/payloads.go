package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rack-audio/vst3host/pkg/hosterr"
)

// Fixed field widths, matching the original wire layout's packed C
// structs byte-for-byte.
const (
	loadPluginPathLen = 1024
	infoNameLen       = 256
	infoVendorLen     = 256
	infoCategoryLen   = 128
	infoUIDLen        = 64
	paramInfoNameLen  = 128
	paramInfoUnitsLen = 32
	shmNameLen        = 64
	midiEventSize     = 8
)

func putCString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func getCString(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}

// LoadPluginRequest is CMD_LOAD_PLUGIN's payload: a fixed 1024-byte
// NUL-padded bundle path and a class index (reserved — this host
// currently always selects the first Audio Module Class it finds, but
// the field is parsed and kept for a future multi-class selector).
type LoadPluginRequest struct {
	Path       string
	ClassIndex uint32
}

func decodeLoadPluginRequest(payload []byte) (LoadPluginRequest, error) {
	if len(payload) != loadPluginPathLen+4 {
		return LoadPluginRequest{}, fmt.Errorf("%w: LoadPlugin payload size %d", hosterr.ErrInvalidParam, len(payload))
	}
	return LoadPluginRequest{
		Path:       getCString(payload[:loadPluginPathLen]),
		ClassIndex: binary.LittleEndian.Uint32(payload[loadPluginPathLen:]),
	}, nil
}

// PluginInfoResponse is CMD_GET_INFO's response payload.
type PluginInfoResponse struct {
	Name            string
	Vendor          string
	Category        string
	UID             string
	NumParams       uint32
	NumAudioInputs  uint32
	NumAudioOutputs uint32
	Flags           uint32
}

func encodePluginInfoResponse(r PluginInfoResponse) []byte {
	buf := make([]byte, infoNameLen+infoVendorLen+infoCategoryLen+infoUIDLen+16)
	off := 0
	putCString(buf[off:off+infoNameLen], r.Name)
	off += infoNameLen
	putCString(buf[off:off+infoVendorLen], r.Vendor)
	off += infoVendorLen
	putCString(buf[off:off+infoCategoryLen], r.Category)
	off += infoCategoryLen
	putCString(buf[off:off+infoUIDLen], r.UID)
	off += infoUIDLen
	binary.LittleEndian.PutUint32(buf[off:], r.NumParams)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], r.NumAudioInputs)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], r.NumAudioOutputs)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], r.Flags)
	return buf
}

// InitAudioRequest is CMD_INIT_AUDIO's (and legacy CMD_INIT's) payload.
type InitAudioRequest struct {
	SampleRate uint32
	BlockSize  uint32
	NumInputs  uint32
	NumOutputs uint32
	ShmName    string
}

func decodeInitAudioRequest(payload []byte) (InitAudioRequest, error) {
	if len(payload) != 16+shmNameLen {
		return InitAudioRequest{}, fmt.Errorf("%w: InitAudio payload size %d", hosterr.ErrInvalidParam, len(payload))
	}
	return InitAudioRequest{
		SampleRate: binary.LittleEndian.Uint32(payload[0:4]),
		BlockSize:  binary.LittleEndian.Uint32(payload[4:8]),
		NumInputs:  binary.LittleEndian.Uint32(payload[8:12]),
		NumOutputs: binary.LittleEndian.Uint32(payload[12:16]),
		ShmName:    getCString(payload[16 : 16+shmNameLen]),
	}, nil
}

// ProcessAudioRequest is CMD_PROCESS_AUDIO's (and legacy CMD_PROCESS's)
// payload: just the sample count for this block, since the audio data
// itself travels through the shared-memory region established by
// InitAudio.
type ProcessAudioRequest struct {
	NumSamples uint32
}

func decodeProcessAudioRequest(payload []byte) (ProcessAudioRequest, error) {
	if len(payload) != 4 {
		return ProcessAudioRequest{}, fmt.Errorf("%w: ProcessAudio payload size %d", hosterr.ErrInvalidParam, len(payload))
	}
	return ProcessAudioRequest{NumSamples: binary.LittleEndian.Uint32(payload)}, nil
}

// ParamRequest is CMD_GET_PARAM's/CMD_SET_PARAM's payload.
type ParamRequest struct {
	ID    uint32
	Value float64
}

func decodeParamRequest(payload []byte) (ParamRequest, error) {
	if len(payload) != 12 {
		return ParamRequest{}, fmt.Errorf("%w: Param payload size %d", hosterr.ErrInvalidParam, len(payload))
	}
	return ParamRequest{
		ID:    binary.LittleEndian.Uint32(payload[0:4]),
		Value: float64FromBits(payload[4:12]),
	}, nil
}

func encodeParamValueResponse(value float64) []byte {
	buf := make([]byte, 8)
	putFloat64(buf, value)
	return buf
}

// ParamInfoResponse is CMD_GET_PARAM_INFO's response payload.
type ParamInfoResponse struct {
	ID           uint32
	Name         string
	Units        string
	DefaultValue float64
	MinValue     float64
	MaxValue     float64
	Flags        uint32
}

func encodeParamInfoResponse(r ParamInfoResponse) []byte {
	buf := make([]byte, 4+paramInfoNameLen+paramInfoUnitsLen+24+4)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], r.ID)
	off += 4
	putCString(buf[off:off+paramInfoNameLen], r.Name)
	off += paramInfoNameLen
	putCString(buf[off:off+paramInfoUnitsLen], r.Units)
	off += paramInfoUnitsLen
	putFloat64(buf[off:], r.DefaultValue)
	off += 8
	putFloat64(buf[off:], r.MinValue)
	off += 8
	putFloat64(buf[off:], r.MaxValue)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], r.Flags)
	return buf
}

func encodeParamCountResponse(count int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(count))
	return buf
}

func decodeParamIndexRequest(payload []byte) (int32, error) {
	if len(payload) != 4 {
		return 0, fmt.Errorf("%w: param index payload size %d", hosterr.ErrInvalidParam, len(payload))
	}
	return int32(binary.LittleEndian.Uint32(payload)), nil
}

// MidiRequest is CMD_SEND_MIDI's payload: a count followed by that many
// fixed 8-byte wire records.
type MidiRequest struct {
	Events []WireMidiEvent
}

// WireMidiEvent is the 8-byte {sample_offset, data[4]} record.
type WireMidiEvent struct {
	SampleOffset uint32
	Data         [4]byte
}

func decodeMidiRequest(payload []byte) (MidiRequest, error) {
	if len(payload) < 4 {
		return MidiRequest{}, fmt.Errorf("%w: SendMidi payload too short", hosterr.ErrInvalidParam)
	}
	count := binary.LittleEndian.Uint32(payload[0:4])
	want := 4 + int(count)*midiEventSize
	if len(payload) != want {
		return MidiRequest{}, fmt.Errorf("%w: SendMidi payload size %d, expected %d", hosterr.ErrInvalidParam, len(payload), want)
	}
	events := make([]WireMidiEvent, count)
	off := 4
	for i := range events {
		events[i].SampleOffset = binary.LittleEndian.Uint32(payload[off : off+4])
		copy(events[i].Data[:], payload[off+4:off+8])
		off += midiEventSize
	}
	return MidiRequest{Events: events}, nil
}

// EditorInfoResponse is CMD_OPEN_EDITOR's response payload.
type EditorInfoResponse struct {
	WindowID uint32
	Width    uint32
	Height   uint32
}

func encodeEditorInfoResponse(r EditorInfoResponse) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], r.WindowID)
	binary.LittleEndian.PutUint32(buf[4:8], r.Width)
	binary.LittleEndian.PutUint32(buf[8:12], r.Height)
	return buf
}

func encodeEditorSizeResponse(width, height uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], width)
	binary.LittleEndian.PutUint32(buf[4:8], height)
	return buf
}

// ParamChangeEvent is one drained GUI-driven edit.
type ParamChangeEvent struct {
	ParamID uint32
	Value   float64
}

func encodeParamChangesResponse(changes []ParamChangeEvent) []byte {
	buf := make([]byte, 4+len(changes)*12)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(changes)))
	off := 4
	for _, c := range changes {
		binary.LittleEndian.PutUint32(buf[off:off+4], c.ParamID)
		putFloat64(buf[off+4:off+12], c.Value)
		off += 12
	}
	return buf
}

func putFloat64(dst []byte, v float64) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
}

func float64FromBits(src []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src))
}
