//go:build windows

package loader

/*
#include <windows.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

type nativeHandle unsafe.Pointer
type nativeSymbol unsafe.Pointer

func nativeOpen(path string) (nativeHandle, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	h := C.LoadLibraryA(cpath)
	if h == nil {
		return nil, fmt.Errorf("LoadLibraryA %q failed with error %d", path, C.GetLastError())
	}
	return nativeHandle(unsafe.Pointer(h)), nil
}

func nativeSym(handle nativeHandle, name string) (nativeSymbol, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sym := C.GetProcAddress(C.HMODULE(unsafe.Pointer(handle)), cname)
	if sym == nil {
		return nil, fmt.Errorf("GetProcAddress %s failed with error %d", name, C.GetLastError())
	}
	return nativeSymbol(unsafe.Pointer(sym)), nil
}

func nativeClose(handle nativeHandle) error {
	if C.FreeLibrary(C.HMODULE(unsafe.Pointer(handle))) == 0 {
		return fmt.Errorf("FreeLibrary failed with error %d", C.GetLastError())
	}
	return nil
}
