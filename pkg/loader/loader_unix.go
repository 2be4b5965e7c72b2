//go:build linux || darwin

package loader

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
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

	h := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if h == nil {
		return nil, fmt.Errorf("dlopen: %s", C.GoString(C.dlerror()))
	}
	return nativeHandle(h), nil
}

func nativeSym(handle nativeHandle, name string) (nativeSymbol, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	C.dlerror() // clear any pending error
	sym := C.dlsym(unsafe.Pointer(handle), cname)
	if sym == nil {
		if msg := C.dlerror(); msg != nil {
			return nil, fmt.Errorf("dlsym %s: %s", name, C.GoString(msg))
		}
		return nil, fmt.Errorf("dlsym %s: symbol is nil", name)
	}
	return nativeSymbol(sym), nil
}

func nativeClose(handle nativeHandle) error {
	if C.dlclose(unsafe.Pointer(handle)) != 0 {
		return fmt.Errorf("dlclose: %s", C.GoString(C.dlerror()))
	}
	return nil
}
