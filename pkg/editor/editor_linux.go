//go:build linux

package editor

import (
	"fmt"
	"unsafe"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// nativeWindow is the X11 window this host creates to host a plug-in's
// editor view. The plug-in attaches to it as a child window via the
// "X11EmbedWindowID" platform type, the same embedding convention the
// public VST3 C API documents for Linux hosts.
type nativeWindow struct {
	conn *xgb.Conn
	win  xproto.Window
}

func nativePlatformType() string {
	return "X11EmbedWindowID"
}

func nativeCreateWindow(width, height int32) (nativeWindow, unsafe.Pointer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nativeWindow{}, nil, fmt.Errorf("xgb: connect: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nativeWindow{}, nil, fmt.Errorf("xgb: allocate window id: %w", err)
	}

	err = xproto.CreateWindowChecked(
		conn, screen.RootDepth, win, screen.Root,
		0, 0, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{
			screen.BlackPixel,
			uint32(xproto.EventMaskStructureNotify),
		},
	).Check()
	if err != nil {
		conn.Close()
		return nativeWindow{}, nil, fmt.Errorf("xgb: create window: %w", err)
	}

	nw := nativeWindow{conn: conn, win: win}
	return nw, unsafe.Pointer(uintptr(win)), nil
}

func nativeShowWindow(w nativeWindow) error {
	return xproto.MapWindowChecked(w.conn, w.win).Check()
}

func nativeResizeWindow(w nativeWindow, width, height int32) error {
	return xproto.ConfigureWindowChecked(
		w.conn, w.win,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	).Check()
}

func nativeWindowID(w nativeWindow) uint32 {
	return uint32(w.win)
}

func nativeDestroyWindow(w nativeWindow) error {
	if w.conn == nil {
		return nil
	}
	err := xproto.DestroyWindowChecked(w.conn, w.win).Check()
	w.conn.Close()
	return err
}
