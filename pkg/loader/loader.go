// Package loader takes the path of a native plug-in binary, makes it
// absolute, dynamically links it, and resolves its three well-known
// entry points. The path must name the binary itself: a bundle
// directory is not searched for the binary inside it.
// The platform-specific halves (dlopen/dlsym on POSIX, LoadLibrary/
// GetProcAddress on Windows) live in loader_unix.go and
// loader_windows.go, split the way obsctl's internal/midi package
// splits native vs. stub backends by build tag.
package loader

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/rack-audio/vst3host/pkg/abi"
	"github.com/rack-audio/vst3host/pkg/hosterr"
	"go.uber.org/zap"
)

// Module is a loaded native plug-in binary and its resolved entry
// points. The bundle path is treated as an opaque string handed
// straight to the filesystem and the platform loader — Wine/Z:-drive
// path rewriting, if any, is the client's concern, not this host's.
type Module struct {
	path    string
	handle  nativeHandle
	initDll nativeSymbol
	exitDll nativeSymbol
	getFac  nativeSymbol

	log *zap.Logger
}

// resolve normalizes the bundle path without inspecting or rewriting
// drive letters/prefixes; it exists only to turn a relative path into
// one the platform loader is guaranteed to interpret the same way
// regardless of the process's current working directory.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("loader: resolve %q: %w", path, err)
	}
	return abs, nil
}

// Load resolves path, dynamically links the binary it names, and
// resolves GetPluginFactory (required), InitDll and ExitDll (both
// optional). If InitDll is present it is invoked before Load returns;
// a false return from InitDll is treated as a load failure, matching
// the original host's own "DLL refused to initialize" handling.
func Load(log *zap.Logger, path string) (*Module, error) {
	resolved, err := resolve(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hosterr.ErrLoad, err)
	}

	handle, err := nativeOpen(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: dynamic link: %v", hosterr.ErrLoad, err)
	}

	getFac, err := nativeSym(handle, "GetPluginFactory")
	if err != nil {
		nativeClose(handle)
		return nil, fmt.Errorf("%w: GetPluginFactory not exported: %v", hosterr.ErrLoad, err)
	}

	initDll, _ := nativeSym(handle, "InitDll")
	exitDll, _ := nativeSym(handle, "ExitDll")

	m := &Module{
		path:    resolved,
		handle:  handle,
		initDll: initDll,
		exitDll: exitDll,
		getFac:  getFac,
		log:     log.Named("loader"),
	}

	if initDll != nil {
		if !abi.CallInitDll(unsafe.Pointer(initDll)) {
			nativeClose(handle)
			return nil, fmt.Errorf("%w: InitDll returned failure", hosterr.ErrLoad)
		}
	}

	m.log.Info("loaded plugin module", zap.String("path", resolved))
	return m, nil
}

// Factory invokes GetPluginFactory and wraps the returned interface.
func (m *Module) Factory() abi.PluginFactory {
	return abi.CallGetFactory(unsafe.Pointer(m.getFac))
}

// Path returns the resolved bundle path this module was loaded from.
func (m *Module) Path() string { return m.path }

// Unload runs ExitDll (if present) and unlinks the binary. It is safe
// to call at most once; the caller (pkg/session) owns not calling it
// twice.
func (m *Module) Unload() error {
	if m.exitDll != nil {
		abi.CallExitDll(unsafe.Pointer(m.exitDll))
	}
	if err := nativeClose(m.handle); err != nil {
		return fmt.Errorf("loader: unload %q: %w", m.path, err)
	}
	m.log.Info("unloaded plugin module", zap.String("path", m.path))
	return nil
}
