// Package audio drives the plug-in through the foreign ABI's processing
// state machine (bus activation, setup, process) and marshals each
// block between the shared-memory region and the native IAudioProcessor
// call. When a component has no processor interface at all, it runs in
// passthrough mode: input channels are copied straight to output.
package audio

import (
	"fmt"

	"github.com/rack-audio/vst3host/pkg/abi"
	"github.com/rack-audio/vst3host/pkg/hosterr"
	"github.com/rack-audio/vst3host/pkg/midi"
	"github.com/rack-audio/vst3host/pkg/shm"
	"go.uber.org/zap"
)

// State tracks where the engine sits in the load -> buses-active ->
// processing lifecycle. Teardown always runs in exact reverse order:
// Processing -> BusesActive -> Cold.
type State int

const (
	StateCold State = iota
	StateBusesActive
	StateProcessing
)

const (
	mediaTypeAudio  = 0
	busDirectionIn  = 0
	busDirectionOut = 1
)

// Engine owns the IAudioProcessor handshake for one loaded component.
// It is not safe for concurrent use — the protocol dispatcher calls
// into it from a single goroutine per connection, matching spec.md's
// single-client model.
type Engine struct {
	component    abi.Component
	processor    abi.AudioProcessor
	hasProcessor bool

	state      State
	numInputs  int32
	numOutputs int32
	events     *abi.EventList

	log *zap.Logger
}

// New wraps a component and its optional processor interface. hasProc
// is false when pkg/session could not query IAudioProcessor off the
// component — the engine still works, just in passthrough mode.
func New(log *zap.Logger, component abi.Component, processor abi.AudioProcessor, hasProc bool) *Engine {
	return &Engine{
		component:    component,
		processor:    processor,
		hasProcessor: hasProc,
		events:       abi.NewEventList(),
		log:          log.Named("audio"),
	}
}

// HasProcessor reports whether this engine will call into a real
// IAudioProcessor or is running in passthrough mode.
func (e *Engine) HasProcessor() bool { return e.hasProcessor }

// BusCounts reports how many audio input and output buses the component
// declares, independent of whether Init has activated any of them yet —
// GetInfo needs this before InitAudio ever runs.
func (e *Engine) BusCounts() (numInputs, numOutputs uint32) {
	return uint32(e.component.GetBusCount(mediaTypeAudio, busDirectionIn)),
		uint32(e.component.GetBusCount(mediaTypeAudio, busDirectionOut))
}

// stereoArrangement is the speaker-arrangement bitmask for a single
// left+right bus (VST3's kStereo), the only arrangement this host ever
// requests: one input bus, one output bus, each carrying every channel
// the client asked for.
const stereoArrangement uint64 = 0x3

// Init sets the stereo bus arrangement, activates exactly bus 0 for
// input and bus 0 for output (never one bus per channel — a real
// single-bus-stereo plug-in has only bus index 0 to activate), then —
// if a processor is present — runs setupProcessing and flips
// setActive/setProcessing on. Moves the engine from Cold to Processing
// directly; spec.md's BusesActive state is a bookkeeping waypoint
// inside this one call, not something pkg/protocol ever pauses at.
func (e *Engine) Init(sampleRate float64, blockSize, numInputs, numOutputs int32) error {
	if e.state != StateCold {
		return fmt.Errorf("%w: audio engine already initialized", hosterr.ErrInvalidParam)
	}

	if e.hasProcessor {
		var inputs, outputs []uint64
		if numInputs > 0 {
			inputs = []uint64{stereoArrangement}
		}
		if numOutputs > 0 {
			outputs = []uint64{stereoArrangement}
		}
		if err := e.processor.SetBusArrangements(inputs, outputs); err != nil {
			return fmt.Errorf("%w: setBusArrangements: %v", hosterr.ErrLoad, err)
		}
	}

	if numInputs > 0 {
		if err := e.component.ActivateBus(mediaTypeAudio, busDirectionIn, 0, true); err != nil {
			return fmt.Errorf("%w: activate input bus 0: %v", hosterr.ErrLoad, err)
		}
	}
	if numOutputs > 0 {
		if err := e.component.ActivateBus(mediaTypeAudio, busDirectionOut, 0, true); err != nil {
			return fmt.Errorf("%w: activate output bus 0: %v", hosterr.ErrLoad, err)
		}
	}
	e.numInputs, e.numOutputs = numInputs, numOutputs
	e.state = StateBusesActive

	if e.hasProcessor {
		setup := abi.ProcessSetup{
			ProcessMode:        0,
			SymbolicSampleSize: 0,
			MaxSamplesPerBlock: blockSize,
			SampleRate:         sampleRate,
		}
		if err := e.processor.SetupProcessing(setup); err != nil {
			return fmt.Errorf("%w: setupProcessing: %v", hosterr.ErrLoad, err)
		}
		if err := e.component.SetActive(true); err != nil {
			return fmt.Errorf("%w: setActive: %v", hosterr.ErrLoad, err)
		}
		if err := e.processor.SetProcessing(true); err != nil {
			return fmt.Errorf("%w: setProcessing: %v", hosterr.ErrLoad, err)
		}
	}

	e.state = StateProcessing
	e.log.Info("audio initialized",
		zap.Float64("sampleRate", sampleRate), zap.Int32("blockSize", blockSize),
		zap.Int32("numInputs", numInputs), zap.Int32("numOutputs", numOutputs),
		zap.Bool("hasProcessor", e.hasProcessor))
	return nil
}

// Process runs one block. A failed process() call returns
// hosterr.ErrProcessFailed and does not change state — the session
// survives a single bad block, per spec.md's non-fatal ProcessFailed
// classification.
func (e *Engine) Process(region *shm.Region, numSamples int32, events []midi.Event) error {
	if e.state != StateProcessing {
		return hosterr.ErrNotInitialized
	}

	inputs := make([][]float32, e.numInputs)
	for i := int32(0); i < e.numInputs; i++ {
		inputs[i] = region.InputChannel(uint32(i))[:numSamples]
	}
	outputs := make([][]float32, e.numOutputs)
	for i := int32(0); i < e.numOutputs; i++ {
		outputs[i] = region.OutputChannel(uint32(i))[:numSamples]
	}

	if !e.hasProcessor {
		passthrough(inputs, outputs)
		return nil
	}

	e.events.Clear()
	populateEventList(e.events, events)

	err := e.processor.Process(abi.ProcessBlock{
		NumSamples:  numSamples,
		Inputs:      inputs,
		Outputs:     outputs,
		InputEvents: e.events,
	})
	e.events.Clear()

	if err != nil {
		e.log.Warn("process call failed", zap.Error(err))
		return fmt.Errorf("%w: %v", hosterr.ErrProcessFailed, err)
	}
	return nil
}

func passthrough(inputs, outputs [][]float32) {
	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	for ch := 0; ch < n; ch++ {
		copy(outputs[ch], inputs[ch])
	}
	for ch := n; ch < len(outputs); ch++ {
		for i := range outputs[ch] {
			outputs[ch][i] = 0
		}
	}
}

func populateEventList(list *abi.EventList, events []midi.Event) {
	for _, ev := range events {
		switch e := ev.(type) {
		case midi.NoteOnEvent:
			list.AddNoteOn(e.SampleOffset(), int16(e.Channel()), int16(e.NoteNumber), float32(e.Velocity)/127.0)
		case midi.NoteOffEvent:
			list.AddNoteOff(e.SampleOffset(), int16(e.Channel()), int16(e.NoteNumber), float32(e.Velocity)/127.0)
		case midi.PolyPressureEvent:
			list.AddPolyPressure(e.SampleOffset(), int16(e.Channel()), int16(e.NoteNumber), float32(e.Pressure)/127.0)
		}
	}
}

// Close reverses Init: stops processing, deactivates the component, and
// deactivates every bus this engine activated. Safe to call from
// BusesActive or Cold too — each step is skipped if it was never
// reached.
func (e *Engine) Close() error {
	if e.state == StateProcessing && e.hasProcessor {
		if err := e.processor.SetProcessing(false); err != nil {
			e.log.Warn("setProcessing(false) failed during teardown", zap.Error(err))
		}
		if err := e.component.SetActive(false); err != nil {
			e.log.Warn("setActive(false) failed during teardown", zap.Error(err))
		}
	}
	if e.state >= StateBusesActive {
		if e.numInputs > 0 {
			e.component.ActivateBus(mediaTypeAudio, busDirectionIn, 0, false)
		}
		if e.numOutputs > 0 {
			e.component.ActivateBus(mediaTypeAudio, busDirectionOut, 0, false)
		}
	}
	e.events.Close()
	e.state = StateCold
	return nil
}
