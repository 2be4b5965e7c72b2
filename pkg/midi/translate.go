package midi

// WireEvent is the fixed 8-byte on-the-wire MIDI record: a sample offset
// into the current block and a raw 4-byte MIDI status/data triplet
// (the fourth byte is padding, always zero on the wire this host reads).
type WireEvent struct {
	SampleOffset uint32
	Data         [4]byte
}

const (
	statusNoteOffLo   = 0x80
	statusNoteOffHi   = 0x8F
	statusNoteOnLo    = 0x90
	statusNoteOnHi    = 0x9F
	statusPolyPressLo = 0xA0
	statusPolyPressHi = 0xAF
)

// Translate decodes a wire record into one of the three event shapes
// this host forwards to the plug-in. ok is false for every status this
// host does not translate (control change, program change, pitch bend,
// system real-time, and anything else outside the three recognized
// status-nibble ranges) — the caller drops the record rather than
// forwarding it.
//
// A Note-On with velocity 0 is remapped to a Note-Off, matching the
// conventional MIDI running-status optimization: some senders never
// emit an explicit Note-Off status byte at all.
func Translate(w WireEvent) (Event, bool) {
	status := w.Data[0]
	channel := status & 0x0F
	offset := int32(w.SampleOffset)

	switch {
	case status >= statusNoteOffLo && status <= statusNoteOffHi:
		return NoteOffEvent{
			BaseEvent:  BaseEvent{EventChannel: channel, Offset: offset},
			NoteNumber: w.Data[1],
			Velocity:   w.Data[2],
		}, true

	case status >= statusNoteOnLo && status <= statusNoteOnHi:
		if w.Data[2] == 0 {
			return NoteOffEvent{
				BaseEvent:  BaseEvent{EventChannel: channel, Offset: offset},
				NoteNumber: w.Data[1],
				Velocity:   0,
			}, true
		}
		return NoteOnEvent{
			BaseEvent:  BaseEvent{EventChannel: channel, Offset: offset},
			NoteNumber: w.Data[1],
			Velocity:   w.Data[2],
		}, true

	case status >= statusPolyPressLo && status <= statusPolyPressHi:
		return PolyPressureEvent{
			BaseEvent:  BaseEvent{EventChannel: channel, Offset: offset},
			NoteNumber: w.Data[1],
			Pressure:   w.Data[2],
		}, true

	default:
		return nil, false
	}
}

// InputEvents accumulates translated events for one audio block. It is
// append-only between blocks and cleared as a whole after the block's
// Process call returns — there is no range query and no reordering,
// unlike the teacher's general-purpose EventQueue, because the protocol
// hands every MIDI record for a block to SendMidi before ProcessAudio is
// called for that block.
type InputEvents struct {
	events []Event
}

func NewInputEvents() *InputEvents {
	return &InputEvents{events: make([]Event, 0, 32)}
}

// Append decodes and appends a wire record. It reports whether the
// record was recognized and kept.
func (q *InputEvents) Append(w WireEvent) bool {
	ev, ok := Translate(w)
	if !ok {
		return false
	}
	q.events = append(q.events, ev)
	return true
}

func (q *InputEvents) All() []Event {
	return q.events
}

func (q *InputEvents) Len() int {
	return len(q.events)
}

// Clear empties the accumulated block. Called by the protocol server
// after each ProcessAudio command has handed the contents to the audio
// engine, and when a plug-in is unloaded.
func (q *InputEvents) Clear() {
	q.events = q.events[:0]
}
