// Package editor owns the native window a plug-in's GUI attaches to: it
// creates the window, queries the plug-in for its IPlugView, attaches
// it, and mediates resize through a host-implemented IPlugFrame. The
// platform-specific window backend lives in editor_linux.go (a pure-Go
// X11 client via jezek/xgb) and editor_other.go (every other platform,
// where this host does not yet embed a native window).
package editor

import (
	"fmt"

	"github.com/rack-audio/vst3host/pkg/abi"
	"github.com/rack-audio/vst3host/pkg/hosterr"
	"go.uber.org/zap"
)

const (
	defaultWidth  int32 = 800
	defaultHeight int32 = 600
	minWidth      int32 = 100
	minHeight     int32 = 100
)

// Editor owns one attached plug-in GUI. Only one can be open per
// session, matching spec.md's single-editor-per-session model.
type Editor struct {
	view   abi.PlugView
	frame  abi.PlugFrame
	window nativeWindow
	size   abi.ViewRect
	closed bool

	log *zap.Logger
}

// Open creates the editor's IPlugView from controller, reads the
// plug-in's preferred size (falling back to an 800x600 default and
// clamping to a 100x100 minimum), creates a native window of that size,
// installs this host's IPlugFrame as the resize callback, and attaches
// the view. On any failure past view creation, the view and any window
// already created are released before the error is returned, matching
// spec.md §4.7's attached/fallback-destroy sequencing.
func Open(log *zap.Logger, controller abi.EditController) (*Editor, error) {
	log = log.Named("editor")

	view, ok := controller.CreateView("editor")
	if !ok {
		return nil, fmt.Errorf("%w: plug-in has no editor view", hosterr.ErrInterfaceAbsent)
	}

	platformType := nativePlatformType()
	if !view.IsPlatformTypeSupported(platformType) {
		view.Release()
		return nil, fmt.Errorf("%w: view does not support platform type %q", hosterr.ErrInterfaceAbsent, platformType)
	}

	width, height := defaultWidth, defaultHeight
	if rect, err := view.GetSize(); err == nil {
		width, height = clamp(rect.Width()), clamp(rect.Height())
	}

	window, handle, err := nativeCreateWindow(width, height)
	if err != nil {
		view.Release()
		return nil, fmt.Errorf("editor: create window: %w", err)
	}

	e := &Editor{view: view, log: log, size: abi.ViewRect{Right: width, Bottom: height}}

	e.frame = abi.NewPlugFrame(func(v abi.PlugView, rect abi.ViewRect) error {
		if err := nativeResizeWindow(window, rect.Width(), rect.Height()); err != nil {
			return err
		}
		e.size = rect
		return v.OnSize(rect)
	})
	if err := view.SetFrame(e.frame); err != nil {
		e.frame.Close()
		nativeDestroyWindow(window)
		view.Release()
		return nil, fmt.Errorf("editor: setFrame: %w", err)
	}

	if err := view.Attached(handle, platformType); err != nil {
		e.frame.Close()
		nativeDestroyWindow(window)
		view.Release()
		return nil, fmt.Errorf("editor: attached: %w", err)
	}

	if err := nativeShowWindow(window); err != nil {
		view.Removed()
		e.frame.Close()
		nativeDestroyWindow(window)
		view.Release()
		return nil, fmt.Errorf("editor: show window: %w", err)
	}

	e.window = window
	log.Info("editor opened", zap.Int32("width", width), zap.Int32("height", height))
	return e, nil
}

func clamp(v int32) int32 {
	if v < minWidth {
		return minWidth
	}
	return v
}

// Size returns the current editor window size.
func (e *Editor) Size() (int32, int32) {
	return e.size.Width(), e.size.Height()
}

// WindowID returns the native window identifier a remote client can use
// to reparent or embed this editor's window, 0 where no such identifier
// is meaningful.
func (e *Editor) WindowID() uint32 {
	return nativeWindowID(e.window)
}

// Close is idempotent: a second call is a no-op, matching spec.md's
// CloseEditor contract.
func (e *Editor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.view.Removed(); err != nil {
		e.log.Warn("view.Removed failed during close", zap.Error(err))
	}
	e.frame.Close()
	if err := nativeDestroyWindow(e.window); err != nil {
		e.log.Warn("destroy window failed during close", zap.Error(err))
	}
	e.view.Release()
	e.log.Info("editor closed")
	return nil
}
