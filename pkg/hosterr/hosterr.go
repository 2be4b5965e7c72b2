// Package hosterr defines the error taxonomy shared by the protocol
// dispatcher and the components it calls into. Sentinels let the
// dispatcher map a returned error to a wire status code with errors.Is
// instead of string matching.
package hosterr

import "errors"

var (
	// ErrNotLoaded is returned by operations that require a loaded plugin.
	ErrNotLoaded = errors.New("no plugin loaded")

	// ErrNotInitialized is returned by operations that require an
	// initialized audio region.
	ErrNotInitialized = errors.New("audio not initialized")

	// ErrInvalidParam covers short payloads and out-of-range ids.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrFraming covers invalid magic, unsupported version, or a short
	// read on the header or payload. Framing errors terminate the
	// connection; they are never translated into a response.
	ErrFraming = errors.New("framing error")

	// ErrLoad covers every way LoadPlugin can fail: missing file,
	// dynamic-link failure, absent factory, no audio-module class,
	// instantiation failure.
	ErrLoad = errors.New("plugin load failed")

	// ErrInterfaceAbsent covers an optional foreign-ABI interface that a
	// plugin does not implement (no processor, no controller, no view).
	ErrInterfaceAbsent = errors.New("interface not supported by plugin")

	// ErrProcessFailed covers a single failed process() call. It does
	// not tear down the session.
	ErrProcessFailed = errors.New("process call failed")
)
