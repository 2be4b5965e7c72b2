package protocol

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rack-audio/vst3host/pkg/hosterr"
	"github.com/rack-audio/vst3host/pkg/midi"
	"github.com/rack-audio/vst3host/pkg/session"
	"github.com/rack-audio/vst3host/pkg/shm"
	"go.uber.org/zap"
)

// Server drives the single client connection this host accepts: one
// loaded plug-in session at a time, one shared-memory audio region once
// InitAudio has run, and a per-block MIDI accumulator fed by SendMidi
// and drained by the next ProcessAudio call.
type Server struct {
	log *zap.Logger

	sess *session.Session
	shm  *shm.Region

	midiIn *midi.InputEvents
}

// NewServer constructs a dispatcher with nothing loaded yet.
func NewServer(log *zap.Logger) *Server {
	return &Server{
		log:    log.Named("protocol"),
		midiIn: midi.NewInputEvents(),
	}
}

// Serve runs the read-dispatch-write loop over conn until the client
// sends CmdShutdown, disconnects, or a framing error makes the stream
// unrecoverable. It always tears down a loaded session before
// returning, regardless of how the loop ended.
func (s *Server) Serve(conn io.ReadWriter) error {
	defer s.unload()

	for {
		hdr, err := ReadRequestHeader(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}

		payload, err := ReadPayload(conn, hdr.PayloadSize)
		if err != nil {
			return err
		}
		s.log.Debug("command", zap.Stringer("command", hdr.Command))

		if hdr.Command == CmdShutdown {
			WriteResponse(conn, StatusOK, nil)
			return nil
		}

		respPayload, err := s.dispatch(hdr.Command, payload)
		status := statusFor(err)
		if werr := WriteResponse(conn, status, respPayload); werr != nil {
			return werr
		}
		if err != nil {
			s.log.Warn("command failed", zap.Stringer("command", hdr.Command), zap.Uint32("status", uint32(status)), zap.Error(err))
		}
	}
}

// String names a command for logging; unrecognized values print their
// raw number rather than panicking.
func (c Command) String() string {
	switch c {
	case CmdPing:
		return "Ping"
	case CmdLoadPlugin:
		return "LoadPlugin"
	case CmdUnloadPlugin:
		return "UnloadPlugin"
	case CmdGetInfo:
		return "GetInfo"
	case CmdInit, CmdInitAudio:
		return "InitAudio"
	case CmdProcess, CmdProcessAudio:
		return "ProcessAudio"
	case CmdGetParamCount:
		return "GetParamCount"
	case CmdGetParamInfo:
		return "GetParamInfo"
	case CmdGetParam:
		return "GetParam"
	case CmdSetParam:
		return "SetParam"
	case CmdSendMidi:
		return "SendMidi"
	case CmdGetState:
		return "GetState"
	case CmdSetState:
		return "SetState"
	case CmdOpenEditor:
		return "OpenEditor"
	case CmdCloseEditor:
		return "CloseEditor"
	case CmdGetEditorSize:
		return "GetEditorSize"
	case CmdGetParamChanges:
		return "GetParamChanges"
	case CmdShutdown:
		return "Shutdown"
	default:
		return fmt.Sprintf("Command(%d)", uint32(c))
	}
}

func (s *Server) dispatch(cmd Command, payload []byte) ([]byte, error) {
	switch cmd {
	case CmdPing:
		return nil, nil
	case CmdLoadPlugin:
		return nil, s.handleLoadPlugin(payload)
	case CmdUnloadPlugin:
		s.unload()
		return nil, nil
	case CmdGetInfo:
		return s.handleGetInfo()
	case CmdInit, CmdInitAudio:
		return nil, s.handleInitAudio(payload)
	case CmdProcess, CmdProcessAudio:
		return nil, s.handleProcessAudio(payload)
	case CmdGetParamCount:
		return s.handleGetParamCount()
	case CmdGetParamInfo:
		return s.handleGetParamInfo(payload)
	case CmdGetParam:
		return s.handleGetParam(payload)
	case CmdSetParam:
		return nil, s.handleSetParam(payload)
	case CmdSendMidi:
		return nil, s.handleSendMidi(payload)
	case CmdGetState, CmdSetState:
		// State save/restore needs a host-implemented IBStream object
		// this host does not provide; plug-ins that require it simply
		// fail this pair of commands rather than the whole session.
		return nil, fmt.Errorf("%w: state save/restore not supported", hosterr.ErrInvalidParam)
	case CmdOpenEditor:
		return s.handleOpenEditor()
	case CmdCloseEditor:
		return nil, s.handleCloseEditor()
	case CmdGetEditorSize:
		return s.handleGetEditorSize()
	case CmdGetParamChanges:
		return s.handleGetParamChanges()
	default:
		return nil, fmt.Errorf("%w: unknown command %s", hosterr.ErrInvalidParam, cmd)
	}
}

func (s *Server) requireSession() error {
	if s.sess == nil {
		return hosterr.ErrNotLoaded
	}
	return nil
}

func (s *Server) handleLoadPlugin(payload []byte) error {
	req, err := decodeLoadPluginRequest(payload)
	if err != nil {
		return err
	}
	s.unload()

	sess, err := session.Load(s.log, req.Path)
	if err != nil {
		return err
	}
	s.sess = sess
	return nil
}

func (s *Server) unload() {
	if s.shm != nil {
		s.shm.Close()
		s.shm = nil
	}
	if s.sess != nil {
		s.sess.Close()
		s.sess = nil
	}
	s.midiIn.Clear()
}

func (s *Server) handleGetInfo() ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	m := s.sess.Metadata

	var numParams, numInputs, numOutputs uint32
	if s.sess.Params != nil {
		numParams = uint32(s.sess.Params.Count())
	}
	if s.sess.Audio != nil {
		numInputs, numOutputs = s.sess.Audio.BusCounts()
	}

	resp := PluginInfoResponse{
		Name:            m.Name,
		Vendor:          m.Vendor,
		Category:        m.Category,
		UID:             uidString(m.CID),
		NumParams:       numParams,
		NumAudioInputs:  numInputs,
		NumAudioOutputs: numOutputs,
	}
	return encodePluginInfoResponse(resp), nil
}

func uidString(u [16]byte) string {
	var b strings.Builder
	for _, c := range u {
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}

// resolveShmPath treats a name that is already absolute as a literal
// path, and otherwise joins it under /dev/shm, matching how the
// client-side shm_open/mmap pairing on Linux names its segments.
func resolveShmPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join("/dev/shm", name)
}

func (s *Server) handleInitAudio(payload []byte) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	req, err := decodeInitAudioRequest(payload)
	if err != nil {
		return err
	}

	if s.shm != nil {
		s.shm.Close()
		s.shm = nil
	}
	region, err := shm.Open(resolveShmPath(req.ShmName))
	if err != nil {
		return err
	}

	if err := s.sess.Audio.Init(float64(req.SampleRate), int32(req.BlockSize), int32(req.NumInputs), int32(req.NumOutputs)); err != nil {
		region.Close()
		return err
	}
	s.shm = region
	return nil
}

func (s *Server) handleProcessAudio(payload []byte) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if s.shm == nil {
		return hosterr.ErrNotInitialized
	}
	req, err := decodeProcessAudioRequest(payload)
	if err != nil {
		return err
	}

	events := s.midiIn.All()
	err = s.sess.Audio.Process(s.shm, int32(req.NumSamples), events)
	s.midiIn.Clear()
	return err
}

func (s *Server) handleGetParamCount() ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if s.sess.Params == nil {
		return nil, fmt.Errorf("%w: plug-in has no controller", hosterr.ErrInterfaceAbsent)
	}
	return encodeParamCountResponse(s.sess.Params.Count()), nil
}

func (s *Server) handleGetParamInfo(payload []byte) ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if s.sess.Params == nil {
		return nil, fmt.Errorf("%w: plug-in has no controller", hosterr.ErrInterfaceAbsent)
	}
	index, err := decodeParamIndexRequest(payload)
	if err != nil {
		return nil, err
	}
	info, err := s.sess.Params.Info(index)
	if err != nil {
		return nil, err
	}
	return encodeParamInfoResponse(ParamInfoResponse{
		ID:           info.ID,
		Name:         info.Title,
		Units:        info.Units,
		DefaultValue: info.DefaultNormalizedValue,
		MinValue:     0,
		MaxValue:     1,
		Flags:        uint32(info.Flags),
	}), nil
}

func (s *Server) handleGetParam(payload []byte) ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if s.sess.Params == nil {
		return nil, fmt.Errorf("%w: plug-in has no controller", hosterr.ErrInterfaceAbsent)
	}
	req, err := decodeParamRequest(payload)
	if err != nil {
		return nil, err
	}
	return encodeParamValueResponse(s.sess.Params.Get(req.ID)), nil
}

func (s *Server) handleSetParam(payload []byte) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	if s.sess.Params == nil {
		return fmt.Errorf("%w: plug-in has no controller", hosterr.ErrInterfaceAbsent)
	}
	req, err := decodeParamRequest(payload)
	if err != nil {
		return err
	}
	return s.sess.Params.Set(req.ID, req.Value)
}

func (s *Server) handleSendMidi(payload []byte) error {
	if err := s.requireSession(); err != nil {
		return err
	}
	req, err := decodeMidiRequest(payload)
	if err != nil {
		return err
	}
	for _, e := range req.Events {
		s.midiIn.Append(midi.WireEvent{SampleOffset: e.SampleOffset, Data: e.Data})
	}
	return nil
}

func (s *Server) handleOpenEditor() ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if err := s.sess.OpenEditor(); err != nil {
		return nil, err
	}
	width, height, _ := s.sess.EditorSize()
	return encodeEditorInfoResponse(EditorInfoResponse{
		WindowID: s.sess.Editor.WindowID(),
		Width:    uint32(width),
		Height:   uint32(height),
	}), nil
}

func (s *Server) handleCloseEditor() error {
	if err := s.requireSession(); err != nil {
		return err
	}
	return s.sess.CloseEditor()
}

func (s *Server) handleGetEditorSize() ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	width, height, ok := s.sess.EditorSize()
	if !ok {
		return nil, fmt.Errorf("%w: no editor open", hosterr.ErrInvalidParam)
	}
	return encodeEditorSizeResponse(uint32(width), uint32(height)), nil
}

func (s *Server) handleGetParamChanges() ([]byte, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if s.sess.Params == nil {
		return encodeParamChangesResponse(nil), nil
	}
	changes := s.sess.Params.DrainChanges()
	out := make([]ParamChangeEvent, len(changes))
	for i, c := range changes {
		out[i] = ParamChangeEvent{ParamID: c.ID, Value: c.Value}
	}
	return encodeParamChangesResponse(out), nil
}
