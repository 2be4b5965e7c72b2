package abi

/*
#cgo CFLAGS: -I.
#include <stdlib.h>
#include "vst3cabi.h"
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"
)

// TResult mirrors the foreign ABI's signed 32-bit call-result convention.
// Zero is success; the sentinel values below cover the ones this host
// branches on. Anything else is treated as a generic failure.
type TResult int32

const (
	ResultOK         TResult = 0
	ResultFalse      TResult = 1
	ResultNoInterface TResult = -1
)

// Ok reports whether a call succeeded.
func (r TResult) Ok() bool { return r == ResultOK }

var errNoInterface = errors.New("abi: interface not implemented")

func tuidOf(u UID) C.vst3_tuid {
	var t C.vst3_tuid
	for i := 0; i < 16; i++ {
		t[i] = C.uchar(u[i])
	}
	return t
}

// Unknown wraps a raw FUnknown pointer. Every other wrapper in this
// package embeds one so addRef/release/queryInterface are always
// available, matching how every foreign-ABI interface derives from
// FUnknown.
type Unknown struct {
	ptr *C.struct_vst3_funknown
}

func newUnknown(p unsafe.Pointer) Unknown {
	return Unknown{ptr: (*C.struct_vst3_funknown)(p)}
}

// Pointer exposes the raw interface pointer for passing back into other
// vtable calls that expect an opaque FUnknown*.
func (u Unknown) Pointer() unsafe.Pointer { return unsafe.Pointer(u.ptr) }

func (u Unknown) Valid() bool { return u.ptr != nil }

// AddRef increments the foreign object's reference count.
func (u Unknown) AddRef() uint32 {
	return uint32(C.vst3_addRef(u.ptr))
}

// Release decrements the foreign object's reference count. The caller
// must not touch the wrapper after the count reaches zero.
func (u Unknown) Release() uint32 {
	return uint32(C.vst3_release(u.ptr))
}

// QueryInterface asks the foreign object for another interface by UID.
// ErrInterfaceAbsent-style absence is reported as errNoInterface so
// callers can treat it as optional rather than fatal.
func (u Unknown) QueryInterface(iid UID) (unsafe.Pointer, error) {
	var out unsafe.Pointer
	tuid := tuidOf(iid)
	res := TResult(C.vst3_queryInterface(u.ptr, &tuid[0], &out))
	if !res.Ok() || out == nil {
		return nil, errNoInterface
	}
	return out, nil
}

// ---- IPluginFactory / IPluginFactory2 ----------------------------------

type FactoryInfo struct {
	Vendor string
	URL    string
	Email  string
}

type ClassInfo struct {
	CID         UID
	Cardinality int32
	Category    string
	Name        string
}

type ClassInfo2 struct {
	ClassInfo
	ClassFlags     uint32
	SubCategories  string
	Vendor         string
	Version        string
	SDKVersion     string
}

// PluginFactory wraps IPluginFactory, the sole entry point into a loaded
// module's class catalogue.
type PluginFactory struct {
	Unknown
	ptr *C.struct_vst3_plugin_factory
}

// NewPluginFactory wraps a raw pointer returned by GetPluginFactory.
func NewPluginFactory(p unsafe.Pointer) PluginFactory {
	fp := (*C.struct_vst3_plugin_factory)(p)
	return PluginFactory{Unknown: newUnknown(p), ptr: fp}
}

func (f PluginFactory) GetFactoryInfo() (FactoryInfo, error) {
	var info C.struct_vst3_pfactory_info
	if res := TResult(C.vst3_factory_getFactoryInfo(f.ptr, &info)); !res.Ok() {
		return FactoryInfo{}, errors.New("abi: getFactoryInfo failed")
	}
	return FactoryInfo{
		Vendor: C.GoString(&info.vendor[0]),
		URL:    C.GoString(&info.url[0]),
		Email:  C.GoString(&info.email[0]),
	}, nil
}

func (f PluginFactory) CountClasses() int32 {
	return int32(C.vst3_factory_countClasses(f.ptr))
}

func (f PluginFactory) GetClassInfo(index int32) (ClassInfo, error) {
	var info C.struct_vst3_pclass_info
	if res := TResult(C.vst3_factory_getClassInfo(f.ptr, C.int32_t(index), &info)); !res.Ok() {
		return ClassInfo{}, errors.New("abi: getClassInfo failed")
	}
	var cid UID
	for i := 0; i < 16; i++ {
		cid[i] = byte(info.cid[i])
	}
	return ClassInfo{
		CID:         cid,
		Cardinality: int32(info.cardinality),
		Category:    C.GoString(&info.category[0]),
		Name:        C.GoString(&info.name[0]),
	}, nil
}

// CreateInstance instantiates a class by CID, requesting the iid
// interface directly.
func (f PluginFactory) CreateInstance(cid UID, iid UID) (unsafe.Pointer, error) {
	var out unsafe.Pointer
	ctuid := tuidOf(cid)
	ituid := tuidOf(iid)
	res := TResult(C.vst3_factory_createInstance(f.ptr, &ctuid[0], &ituid[0], &out))
	if !res.Ok() || out == nil {
		return nil, errors.New("abi: createInstance failed")
	}
	return out, nil
}

// AsFactory2 queries the same object for IPluginFactory2, the optional
// richer class-metadata interface. Absence is not an error.
func (f PluginFactory) AsFactory2() (PluginFactory2, bool) {
	p, err := f.QueryInterface(IIDPluginFactory2)
	if err != nil {
		return PluginFactory2{}, false
	}
	return PluginFactory2{Unknown: newUnknown(p), ptr: (*C.struct_vst3_plugin_factory2)(p)}, true
}

type PluginFactory2 struct {
	Unknown
	ptr *C.struct_vst3_plugin_factory2
}

func (f PluginFactory2) GetClassInfo2(index int32) (ClassInfo2, error) {
	var info C.struct_vst3_pclass_info2
	if res := TResult(C.vst3_factory2_getClassInfo2(f.ptr, C.int32_t(index), &info)); !res.Ok() {
		return ClassInfo2{}, errors.New("abi: getClassInfo2 failed")
	}
	var cid UID
	for i := 0; i < 16; i++ {
		cid[i] = byte(info.cid[i])
	}
	return ClassInfo2{
		ClassInfo: ClassInfo{
			CID:         cid,
			Cardinality: int32(info.cardinality),
			Category:    C.GoString(&info.category[0]),
			Name:        C.GoString(&info.name[0]),
		},
		ClassFlags:    uint32(info.classFlags),
		SubCategories: C.GoString(&info.subCategories[0]),
		Vendor:        C.GoString(&info.vendor[0]),
		Version:       C.GoString(&info.version[0]),
		SDKVersion:    C.GoString(&info.sdkVersion[0]),
	}, nil
}

// ---- module entry-point invocation -------------------------------------

// CallGetFactory invokes a GetPluginFactory symbol resolved by the
// loader and wraps the result.
func CallGetFactory(sym unsafe.Pointer) PluginFactory {
	p := C.vst3_call_get_factory(sym)
	return NewPluginFactory(unsafe.Pointer(p))
}

// CallInitDll invokes an optional InitDll symbol.
func CallInitDll(sym unsafe.Pointer) bool {
	return int32(C.vst3_call_init_dll(sym)) != 0
}

// CallExitDll invokes an optional ExitDll symbol.
func CallExitDll(sym unsafe.Pointer) bool {
	return int32(C.vst3_call_exit_dll(sym)) != 0
}

// ---- IComponent ----------------------------------------------------------

type BusInfo struct {
	MediaType    int32
	Direction    int32
	ChannelCount int32
	Name         string
	BusType      int32
	Flags        uint32
}

type Component struct {
	Unknown
	ptr *C.struct_vst3_component
}

func NewComponent(p unsafe.Pointer) Component {
	return Component{Unknown: newUnknown(p), ptr: (*C.struct_vst3_component)(p)}
}

func (c Component) Initialize(context unsafe.Pointer) error {
	res := TResult(C.vst3_component_initialize(c.ptr, (*C.struct_vst3_funknown)(context)))
	if !res.Ok() {
		return errors.New("abi: component initialize failed")
	}
	return nil
}

// GetControllerClassID asks the component for the CID of its separate
// edit-controller class. Plug-ins that implement IEditController on the
// component itself instead return the zero UID; callers fall back to
// querying the component directly for IIDEditController in that case.
func (c Component) GetControllerClassID() (UID, error) {
	var tuid C.vst3_tuid
	if res := TResult(C.vst3_component_getControllerClassId(c.ptr, &tuid[0])); !res.Ok() {
		return UID{}, errors.New("abi: getControllerClassId failed")
	}
	var u UID
	for i := 0; i < 16; i++ {
		u[i] = byte(tuid[i])
	}
	return u, nil
}

func (c Component) Terminate() error {
	if res := TResult(C.vst3_component_terminate(c.ptr)); !res.Ok() {
		return errors.New("abi: component terminate failed")
	}
	return nil
}

func (c Component) GetBusCount(mediaType, direction int32) int32 {
	return int32(C.vst3_component_getBusCount(c.ptr, C.int32_t(mediaType), C.int32_t(direction)))
}

func (c Component) GetBusInfo(mediaType, direction, index int32) (BusInfo, error) {
	var info C.struct_vst3_bus_info
	res := TResult(C.vst3_component_getBusInfo(c.ptr, C.int32_t(mediaType), C.int32_t(direction), C.int32_t(index), &info))
	if !res.Ok() {
		return BusInfo{}, errors.New("abi: getBusInfo failed")
	}
	return BusInfo{
		MediaType:    int32(info.mediaType),
		Direction:    int32(info.direction),
		ChannelCount: int32(info.channelCount),
		Name:         utf16ToString(unsafe.Pointer(&info.name[0]), 128),
		BusType:      int32(info.busType),
		Flags:        uint32(info.flags),
	}, nil
}

func (c Component) ActivateBus(mediaType, direction, index int32, active bool) error {
	var state C.uchar
	if active {
		state = 1
	}
	if res := TResult(C.vst3_component_activateBus(c.ptr, C.int32_t(mediaType), C.int32_t(direction), C.int32_t(index), state)); !res.Ok() {
		return errors.New("abi: activateBus failed")
	}
	return nil
}

func (c Component) SetActive(active bool) error {
	var state C.uchar
	if active {
		state = 1
	}
	if res := TResult(C.vst3_component_setActive(c.ptr, state)); !res.Ok() {
		return errors.New("abi: setActive failed")
	}
	return nil
}

// AsAudioProcessor queries for the optional processing interface.
func (c Component) AsAudioProcessor() (AudioProcessor, bool) {
	p, err := c.QueryInterface(IIDAudioProcessor)
	if err != nil {
		return AudioProcessor{}, false
	}
	return AudioProcessor{Unknown: newUnknown(p), ptr: (*C.struct_vst3_audio_processor)(p)}, true
}

// AsConnectionPoint queries for the optional event-bus interface.
func (c Component) AsConnectionPoint() (ConnectionPoint, bool) {
	p, err := c.QueryInterface(IIDConnectionPoint)
	if err != nil {
		return ConnectionPoint{}, false
	}
	return ConnectionPoint{Unknown: newUnknown(p), ptr: (*C.struct_vst3_connection_point)(p)}, true
}

// ---- IAudioProcessor ------------------------------------------------------

type ProcessSetup struct {
	ProcessMode        int32
	SymbolicSampleSize  int32
	MaxSamplesPerBlock int32
	SampleRate         float64
}

type AudioProcessor struct {
	Unknown
	ptr *C.struct_vst3_audio_processor
}

func (p AudioProcessor) SetupProcessing(setup ProcessSetup) error {
	cs := C.struct_vst3_process_setup{
		processMode:        C.int32_t(setup.ProcessMode),
		symbolicSampleSize: C.int32_t(setup.SymbolicSampleSize),
		maxSamplesPerBlock: C.int32_t(setup.MaxSamplesPerBlock),
		sampleRate:         C.double(setup.SampleRate),
	}
	if res := TResult(C.vst3_processor_setupProcessing(p.ptr, &cs)); !res.Ok() {
		return errors.New("abi: setupProcessing failed")
	}
	return nil
}

// SetBusArrangements sets the speaker arrangement bitmask for every
// input and output bus in one call. A single stereo bus is arrangement
// 0x3 (left+right), the only arrangement this host ever requests.
func (p AudioProcessor) SetBusArrangements(inputs, outputs []uint64) error {
	var inPtr, outPtr *C.uint64_t
	if len(inputs) > 0 {
		inPtr = (*C.uint64_t)(unsafe.Pointer(&inputs[0]))
	}
	if len(outputs) > 0 {
		outPtr = (*C.uint64_t)(unsafe.Pointer(&outputs[0]))
	}
	res := TResult(C.vst3_processor_setBusArrangements(p.ptr, inPtr, C.int32_t(len(inputs)), outPtr, C.int32_t(len(outputs))))
	if !res.Ok() {
		return errors.New("abi: setBusArrangements failed")
	}
	return nil
}

func (p AudioProcessor) CanProcessSampleSize(symbolicSampleSize int32) bool {
	return TResult(C.vst3_processor_canProcessSampleSize(p.ptr, C.int32_t(symbolicSampleSize))).Ok()
}

func (p AudioProcessor) SetProcessing(on bool) error {
	var state C.uchar
	if on {
		state = 1
	}
	if res := TResult(C.vst3_processor_setProcessing(p.ptr, state)); !res.Ok() {
		return errors.New("abi: setProcessing failed")
	}
	return nil
}

// ProcessBlock is the Go-side description of one Process() call; pointer
// slices reference shared-memory-backed channel buffers owned by pkg/shm.
type ProcessBlock struct {
	NumSamples  int32
	Inputs      [][]float32
	Outputs     [][]float32
	InputEvents *EventList
}

func (p AudioProcessor) Process(block ProcessBlock) error {
	var data C.struct_vst3_process_data
	data.processMode = 0
	data.symbolicSampleSize = 0
	data.numSamples = C.int32_t(block.NumSamples)

	inBus, inPtrs := buildBusBuffers(block.Inputs)
	outBus, outPtrs := buildBusBuffers(block.Outputs)
	defer freeBusBuffers(inBus, inPtrs)
	defer freeBusBuffers(outBus, outPtrs)

	if inBus != nil {
		data.numInputs = 1
		data.inputs = inBus
	}
	if outBus != nil {
		data.numOutputs = 1
		data.outputs = outBus
	}
	if block.InputEvents != nil {
		data.inputEvents = (*C.struct_vst3_funknown)(unsafe.Pointer(block.InputEvents.ptr))
	}

	if res := TResult(C.vst3_processor_process(p.ptr, &data)); !res.Ok() {
		return errors.New("abi: process failed")
	}
	return nil
}

func buildBusBuffers(channels [][]float32) (*C.struct_vst3_audio_bus_buffers, []unsafe.Pointer) {
	if len(channels) == 0 {
		return nil, nil
	}
	bus := (*C.struct_vst3_audio_bus_buffers)(C.malloc(C.size_t(unsafe.Sizeof(C.struct_vst3_audio_bus_buffers{}))))
	bus.numChannels = C.int32_t(len(channels))
	bus.silenceFlags = 0

	ptrArray := (**C.float)(C.malloc(C.size_t(len(channels)) * C.size_t(unsafe.Sizeof((*C.float)(nil)))))
	slots := unsafe.Slice(ptrArray, len(channels))
	for i, ch := range channels {
		if len(ch) == 0 {
			slots[i] = nil
			continue
		}
		slots[i] = (*C.float)(unsafe.Pointer(&ch[0]))
	}
	bus.channelBuffers32 = ptrArray
	return bus, nil
}

func freeBusBuffers(bus *C.struct_vst3_audio_bus_buffers, _ []unsafe.Pointer) {
	if bus == nil {
		return
	}
	if bus.channelBuffers32 != nil {
		C.free(unsafe.Pointer(bus.channelBuffers32))
	}
	C.free(unsafe.Pointer(bus))
}

// ---- IConnectionPoint -----------------------------------------------------

type ConnectionPoint struct {
	Unknown
	ptr *C.struct_vst3_connection_point
}

func (c ConnectionPoint) Connect(other ConnectionPoint) error {
	if res := TResult(C.vst3_connection_connect(c.ptr, other.ptr)); !res.Ok() {
		return errors.New("abi: connect failed")
	}
	return nil
}

func (c ConnectionPoint) Disconnect(other ConnectionPoint) error {
	if res := TResult(C.vst3_connection_disconnect(c.ptr, other.ptr)); !res.Ok() {
		return errors.New("abi: disconnect failed")
	}
	return nil
}

// ---- IEditController -------------------------------------------------------

type ParameterInfo struct {
	ID                     uint32
	Title                  string
	ShortTitle             string
	Units                  string
	StepCount              int32
	DefaultNormalizedValue float64
	UnitID                 int32
	Flags                  int32
}

type EditController struct {
	Unknown
	ptr *C.struct_vst3_edit_controller
}

func NewEditController(p unsafe.Pointer) EditController {
	return EditController{Unknown: newUnknown(p), ptr: (*C.struct_vst3_edit_controller)(p)}
}

func (e EditController) Initialize(context unsafe.Pointer) error {
	if res := TResult(C.vst3_controller_initialize(e.ptr, (*C.struct_vst3_funknown)(context))); !res.Ok() {
		return errors.New("abi: controller initialize failed")
	}
	return nil
}

func (e EditController) Terminate() error {
	if res := TResult(C.vst3_controller_terminate(e.ptr)); !res.Ok() {
		return errors.New("abi: controller terminate failed")
	}
	return nil
}

func (e EditController) GetParameterCount() int32 {
	return int32(C.vst3_controller_getParameterCount(e.ptr))
}

func (e EditController) GetParameterInfo(index int32) (ParameterInfo, error) {
	var info C.struct_vst3_parameter_info
	if res := TResult(C.vst3_controller_getParameterInfo(e.ptr, C.int32_t(index), &info)); !res.Ok() {
		return ParameterInfo{}, errors.New("abi: getParameterInfo failed")
	}
	return ParameterInfo{
		ID:                     uint32(info.id),
		Title:                  utf16ToString(unsafe.Pointer(&info.title[0]), 128),
		ShortTitle:             utf16ToString(unsafe.Pointer(&info.shortTitle[0]), 64),
		Units:                  utf16ToString(unsafe.Pointer(&info.units[0]), 128),
		StepCount:              int32(info.stepCount),
		DefaultNormalizedValue: float64(info.defaultNormalizedValue),
		UnitID:                 int32(info.unitId),
		Flags:                  int32(info.flags),
	}, nil
}

func (e EditController) GetParamNormalized(id uint32) float64 {
	return float64(C.vst3_controller_getParamNormalized(e.ptr, C.uint32_t(id)))
}

func (e EditController) SetParamNormalized(id uint32, value float64) error {
	if res := TResult(C.vst3_controller_setParamNormalized(e.ptr, C.uint32_t(id), C.double(value))); !res.Ok() {
		return errors.New("abi: setParamNormalized failed")
	}
	return nil
}

func (e EditController) SetComponentHandler(h ComponentHandler) error {
	if res := TResult(C.vst3_controller_setComponentHandler(e.ptr, (*C.struct_vst3_funknown)(unsafe.Pointer(h.ptr)))); !res.Ok() {
		return errors.New("abi: setComponentHandler failed")
	}
	return nil
}

// AsConnectionPoint queries for the optional event-bus interface, used
// to wire this controller to its component's notification channel when
// they are two distinct objects.
func (e EditController) AsConnectionPoint() (ConnectionPoint, bool) {
	p, err := e.QueryInterface(IIDConnectionPoint)
	if err != nil {
		return ConnectionPoint{}, false
	}
	return ConnectionPoint{Unknown: newUnknown(p), ptr: (*C.struct_vst3_connection_point)(p)}, true
}

func (e EditController) CreateView(name string) (PlugView, bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	v := C.vst3_controller_createView(e.ptr, cname)
	if v == nil {
		return PlugView{}, false
	}
	return PlugView{Unknown: newUnknown(unsafe.Pointer(v)), ptr: v}, true
}

// ---- IPlugView -------------------------------------------------------------

type ViewRect struct {
	Left, Top, Right, Bottom int32
}

func (r ViewRect) Width() int32  { return r.Right - r.Left }
func (r ViewRect) Height() int32 { return r.Bottom - r.Top }

type PlugView struct {
	Unknown
	ptr *C.struct_vst3_plug_view
}

func (v PlugView) IsPlatformTypeSupported(platformType string) bool {
	ctype := C.CString(platformType)
	defer C.free(unsafe.Pointer(ctype))
	return TResult(C.vst3_view_isPlatformTypeSupported(v.ptr, ctype)).Ok()
}

func (v PlugView) Attached(parent unsafe.Pointer, platformType string) error {
	ctype := C.CString(platformType)
	defer C.free(unsafe.Pointer(ctype))
	if res := TResult(C.vst3_view_attached(v.ptr, parent, ctype)); !res.Ok() {
		return errors.New("abi: view attached failed")
	}
	return nil
}

func (v PlugView) Removed() error {
	if res := TResult(C.vst3_view_removed(v.ptr)); !res.Ok() {
		return errors.New("abi: view removed failed")
	}
	return nil
}

func (v PlugView) GetSize() (ViewRect, error) {
	var r C.struct_vst3_view_rect
	if res := TResult(C.vst3_view_getSize(v.ptr, &r)); !res.Ok() {
		return ViewRect{}, errors.New("abi: getSize failed")
	}
	return ViewRect{int32(r.left), int32(r.top), int32(r.right), int32(r.bottom)}, nil
}

func (v PlugView) OnSize(rect ViewRect) error {
	r := C.struct_vst3_view_rect{
		left: C.int32_t(rect.Left), top: C.int32_t(rect.Top),
		right: C.int32_t(rect.Right), bottom: C.int32_t(rect.Bottom),
	}
	if res := TResult(C.vst3_view_onSize(v.ptr, &r)); !res.Ok() {
		return errors.New("abi: onSize failed")
	}
	return nil
}

func (v PlugView) SetFrame(f PlugFrame) error {
	if res := TResult(C.vst3_view_setFrame(v.ptr, f.ptr)); !res.Ok() {
		return errors.New("abi: setFrame failed")
	}
	return nil
}

// ---- host-implemented IPlugFrame ------------------------------------------

// ResizeFunc is invoked when the plug-in asks the host to resize its
// editor window. The host is expected to resize the native window and
// then echo the final rect back via view.OnSize.
type ResizeFunc func(view PlugView, rect ViewRect) error

type PlugFrame struct {
	ptr *C.struct_vst3_plug_frame
}

var (
	frameRegistryMu sync.Mutex
	frameRegistry   = map[unsafe.Pointer]ResizeFunc{}
)

// NewPlugFrame allocates a host-owned IPlugFrame object bound to fn.
func NewPlugFrame(fn ResizeFunc) PlugFrame {
	ptr := C.vst3_make_plug_frame()
	frameRegistryMu.Lock()
	frameRegistry[unsafe.Pointer(ptr)] = fn
	frameRegistryMu.Unlock()
	return PlugFrame{ptr: ptr}
}

// Close releases the native allocation and callback registration.
func (f PlugFrame) Close() {
	frameRegistryMu.Lock()
	delete(frameRegistry, unsafe.Pointer(f.ptr))
	frameRegistryMu.Unlock()
	C.vst3_free_plug_frame(f.ptr)
}

//export go_resizeView
func go_resizeView(framePtr unsafe.Pointer, viewPtr unsafe.Pointer, newSize *C.struct_vst3_view_rect) C.vst3_tresult {
	frameRegistryMu.Lock()
	fn := frameRegistry[framePtr]
	frameRegistryMu.Unlock()
	if fn == nil {
		return C.vst3_tresult(ResultFalse)
	}
	view := PlugView{Unknown: newUnknown(viewPtr), ptr: (*C.struct_vst3_plug_view)(viewPtr)}
	rect := ViewRect{int32(newSize.left), int32(newSize.top), int32(newSize.right), int32(newSize.bottom)}
	if err := fn(view, rect); err != nil {
		return C.vst3_tresult(ResultFalse)
	}
	return C.vst3_tresult(ResultOK)
}

// ---- host-implemented IComponentHandler -----------------------------------

// EditCallbacks receives the three-call parameter-edit protocol a plug-in
// uses to notify the host of GUI-driven changes. Only PerformEdit needs
// to produce a visible effect; Begin/End mark the gesture boundary.
type EditCallbacks struct {
	BeginEdit        func(id uint32) error
	PerformEdit      func(id uint32, value float64) error
	EndEdit          func(id uint32) error
	RestartComponent func(flags int32) error
}

type ComponentHandler struct {
	ptr *C.struct_vst3_component_handler
}

var (
	handlerRegistryMu sync.Mutex
	handlerRegistry   = map[unsafe.Pointer]EditCallbacks{}
)

func NewComponentHandler(cb EditCallbacks) ComponentHandler {
	ptr := C.vst3_make_component_handler()
	handlerRegistryMu.Lock()
	handlerRegistry[unsafe.Pointer(ptr)] = cb
	handlerRegistryMu.Unlock()
	return ComponentHandler{ptr: ptr}
}

func (h ComponentHandler) Close() {
	handlerRegistryMu.Lock()
	delete(handlerRegistry, unsafe.Pointer(h.ptr))
	handlerRegistryMu.Unlock()
	C.vst3_free_component_handler(h.ptr)
}

func lookupHandler(ptr unsafe.Pointer) (EditCallbacks, bool) {
	handlerRegistryMu.Lock()
	defer handlerRegistryMu.Unlock()
	cb, ok := handlerRegistry[ptr]
	return cb, ok
}

//export go_beginEdit
func go_beginEdit(handlerPtr unsafe.Pointer, id C.uint32_t) C.vst3_tresult {
	cb, ok := lookupHandler(handlerPtr)
	if !ok || cb.BeginEdit == nil {
		return C.vst3_tresult(ResultOK)
	}
	if err := cb.BeginEdit(uint32(id)); err != nil {
		return C.vst3_tresult(ResultFalse)
	}
	return C.vst3_tresult(ResultOK)
}

//export go_performEdit
func go_performEdit(handlerPtr unsafe.Pointer, id C.uint32_t, value C.double) C.vst3_tresult {
	cb, ok := lookupHandler(handlerPtr)
	if !ok || cb.PerformEdit == nil {
		return C.vst3_tresult(ResultOK)
	}
	if err := cb.PerformEdit(uint32(id), float64(value)); err != nil {
		return C.vst3_tresult(ResultFalse)
	}
	return C.vst3_tresult(ResultOK)
}

//export go_endEdit
func go_endEdit(handlerPtr unsafe.Pointer, id C.uint32_t) C.vst3_tresult {
	cb, ok := lookupHandler(handlerPtr)
	if !ok || cb.EndEdit == nil {
		return C.vst3_tresult(ResultOK)
	}
	if err := cb.EndEdit(uint32(id)); err != nil {
		return C.vst3_tresult(ResultFalse)
	}
	return C.vst3_tresult(ResultOK)
}

//export go_restartComponent
func go_restartComponent(handlerPtr unsafe.Pointer, flags C.int32_t) C.vst3_tresult {
	cb, ok := lookupHandler(handlerPtr)
	if !ok || cb.RestartComponent == nil {
		return C.vst3_tresult(ResultOK)
	}
	if err := cb.RestartComponent(int32(flags)); err != nil {
		return C.vst3_tresult(ResultFalse)
	}
	return C.vst3_tresult(ResultOK)
}

// ---- host-owned IEventList --------------------------------------------------

// EventKind identifies which of the three translated MIDI event shapes an
// EventList entry carries.
type EventKind uint16

const (
	EventNoteOn       EventKind = C.VST3_EVENT_NOTE_ON
	EventNoteOff      EventKind = C.VST3_EVENT_NOTE_OFF
	EventPolyPressure EventKind = C.VST3_EVENT_POLY_PRESSURE
)

// EventList is the fixed-capacity, append-only event buffer handed to the
// plug-in as IEventList on every Process call. It holds 256 entries;
// an event added to a full list is dropped (drop-newest on overflow).
type EventList struct {
	ptr *C.struct_vst3_event_list
}

func NewEventList() *EventList {
	return &EventList{ptr: C.vst3_make_event_list()}
}

func (l *EventList) Close() {
	C.vst3_free_event_list(l.ptr)
}

// Clear empties the list. The audio engine calls this once per block,
// after the previous block's Process call returns.
func (l *EventList) Clear() {
	C.vst3_event_list_clear(l.ptr)
}

func (l *EventList) Len() int {
	return int(C.vst3_event_list_get_count_impl((*C.struct_vst3_funknown)(unsafe.Pointer(l.ptr))))
}

// AddNoteOn appends a translated Note-On event. Returns false if the list
// is at capacity; the caller drops the event rather than block.
func (l *EventList) AddNoteOn(sampleOffset int32, channel, pitch int16, velocity float32) bool {
	var e C.struct_vst3_event
	e.sampleOffset = C.int32_t(sampleOffset)
	e._type = C.uint16_t(EventNoteOn)
	*(*C.struct_vst3_note_on_event)(unsafe.Pointer(&e.data)) = C.struct_vst3_note_on_event{
		channel:  C.int16_t(channel),
		pitch:    C.int16_t(pitch),
		velocity: C.float(velocity),
		noteId:   -1,
	}
	return TResult(C.vst3_event_list_add_event_impl((*C.struct_vst3_funknown)(unsafe.Pointer(l.ptr)), &e)).Ok()
}

func (l *EventList) AddNoteOff(sampleOffset int32, channel, pitch int16, velocity float32) bool {
	var e C.struct_vst3_event
	e.sampleOffset = C.int32_t(sampleOffset)
	e._type = C.uint16_t(EventNoteOff)
	*(*C.struct_vst3_note_off_event)(unsafe.Pointer(&e.data)) = C.struct_vst3_note_off_event{
		channel:  C.int16_t(channel),
		pitch:    C.int16_t(pitch),
		velocity: C.float(velocity),
		noteId:   -1,
	}
	return TResult(C.vst3_event_list_add_event_impl((*C.struct_vst3_funknown)(unsafe.Pointer(l.ptr)), &e)).Ok()
}

func (l *EventList) AddPolyPressure(sampleOffset int32, channel, pitch int16, pressure float32) bool {
	var e C.struct_vst3_event
	e.sampleOffset = C.int32_t(sampleOffset)
	e._type = C.uint16_t(EventPolyPressure)
	*(*C.struct_vst3_poly_pressure_event)(unsafe.Pointer(&e.data)) = C.struct_vst3_poly_pressure_event{
		channel:  C.int16_t(channel),
		pitch:    C.int16_t(pitch),
		pressure: C.float(pressure),
		noteId:   -1,
	}
	return TResult(C.vst3_event_list_add_event_impl((*C.struct_vst3_funknown)(unsafe.Pointer(l.ptr)), &e)).Ok()
}

// utf16ToString narrows a foreign char16_t buffer into ASCII one code
// unit at a time: units below 0x80 are kept as-is and every other unit
// becomes '?', rather than attempting a real UTF-16 decode — parameter
// titles and units are expected to be ASCII in practice, and the wire
// protocol has no room for anything else.
func utf16ToString(buf unsafe.Pointer, maxLen int) string {
	units := unsafe.Slice((*uint16)(buf), maxLen)
	out := make([]byte, 0, maxLen)
	for _, u := range units {
		if u == 0 {
			break
		}
		if u < 0x80 {
			out = append(out, byte(u))
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
