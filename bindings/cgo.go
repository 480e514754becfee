package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"
)

// Version is set at build time via -ldflags
var Version = "dev"

// goString maps a NULL pointer to the empty string, which selects the default.
func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

//export sqlfp_normalize
func sqlfp_normalize(text, dialect, placeholder *C.char) *C.char {
	return C.CString(normalizeJSON(goString(text), goString(dialect), goString(placeholder)))
}

//export sqlfp_canonicalize
func sqlfp_canonicalize(text, dialect *C.char) *C.char {
	return C.CString(canonicalizeJSON(goString(text), goString(dialect)))
}

//export sqlfp_version
func sqlfp_version() *C.char {
	return C.CString(Version)
}

//export sqlfp_free
func sqlfp_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func main() {}
