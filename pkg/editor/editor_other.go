//go:build !linux

package editor

import (
	"unsafe"

	"github.com/rack-audio/vst3host/pkg/hosterr"
)

// nativeWindow is unused on platforms without a window backend yet;
// editor.Open fails before ever constructing one.
type nativeWindow struct{}

func nativePlatformType() string {
	return "unsupported"
}

func nativeCreateWindow(width, height int32) (nativeWindow, unsafe.Pointer, error) {
	return nativeWindow{}, nil, hosterr.ErrInterfaceAbsent
}

func nativeShowWindow(w nativeWindow) error { return nil }

func nativeResizeWindow(w nativeWindow, width, height int32) error { return nil }

func nativeDestroyWindow(w nativeWindow) error { return nil }

func nativeWindowID(w nativeWindow) uint32 { return 0 }
