// Command librtcore builds the runtime as a C shared library for compiled
// programs:
//
//	go build -buildmode=c-shared -o librtcore.so ./cmd/librtcore
//
// Settings come from the RTCORE_* environment variables. Memory always comes
// from the page host so C code never holds Go heap pointers.
package main

/*
#include <stddef.h>
#include <stdint.h>
#include <string.h>
*/
import "C"

import (
	"unsafe"

	"github.com/joshuapare/rtcore/rt/cstr"
)

func cstrlen(p unsafe.Pointer) int { return int(C.strlen((*C.char)(p))) }

func goBytes(s *C.char) []byte { return cBytes(unsafe.Pointer(s), cstrlen) }

//export rtcore_arc_alloc
func rtcore_arc_alloc(size C.size_t) unsafe.Pointer {
	if uint64(size) > uint64(^uint(0)>>1) {
		return nil
	}
	return instance().arcAlloc(int(size))
}

//export rtcore_ref_inc
func rtcore_ref_inc(p unsafe.Pointer) { instance().refInc(p) }

//export rtcore_ref_dec
func rtcore_ref_dec(p unsafe.Pointer) { instance().refDec(p) }

//export rtcore_runtime_alloc
func rtcore_runtime_alloc(size C.size_t) unsafe.Pointer {
	if uint64(size) > uint64(^uint(0)>>1) {
		return nil
	}
	return instance().rawAlloc(int(size))
}

//export rtcore_runtime_free
func rtcore_runtime_free(p unsafe.Pointer) { instance().rawFree(p) }

//export rtcore_putchar
func rtcore_putchar(c C.int) C.int {
	if err := instance().rt.Console().PutChar(byte(c)); err != nil {
		return -1
	}
	return c
}

//export rtcore_getchar
func rtcore_getchar() C.int {
	ch, err := instance().rt.Console().GetChar()
	if err != nil {
		return -1
	}
	return C.int(ch)
}

//export rtcore_print
func rtcore_print(s *C.char) { instance().print(goBytes(s), false) }

//export rtcore_println
func rtcore_println(s *C.char) { instance().print(goBytes(s), true) }

//export rtcore_print_i32
func rtcore_print_i32(v C.int32_t) { _ = instance().rt.Console().PrintI32(int32(v)) }

//export rtcore_println_i32
func rtcore_println_i32(v C.int32_t) { _ = instance().rt.Console().PrintlnI32(int32(v)) }

//export rtcore_print_i64
func rtcore_print_i64(v C.int64_t) { _ = instance().rt.Console().PrintI64(int64(v)) }

//export rtcore_println_i64
func rtcore_println_i64(v C.int64_t) { _ = instance().rt.Console().PrintlnI64(int64(v)) }

//export rtcore_print_f64
func rtcore_print_f64(v C.double) { _ = instance().rt.Console().PrintF64(float64(v)) }

//export rtcore_println_f64
func rtcore_println_f64(v C.double) { _ = instance().rt.Console().PrintlnF64(float64(v)) }

//export rtcore_strlen
func rtcore_strlen(s *C.char) C.size_t { return C.size_t(cstr.Strlen(goBytes(s))) }

//export rtcore_strcmp
func rtcore_strcmp(a, b *C.char) C.int { return C.int(cstr.Strcmp(goBytes(a), goBytes(b))) }

//export rtcore_exit
func rtcore_exit(code C.int) { instance().exit(int(code)) }

func main() {}
