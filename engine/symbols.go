package engine

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Pointers to the engine entry points. The exports use the cdecl calling
// convention and return OptiX-style status codes; strings returned by the
// engine are engine-owned and must be copied via goString before the next
// engine call.
var (
	fnTestLibrary    func(int32) bool
	fnAbiVersion     func() int32
	fnVersion        func() uintptr
	fnLastError      func() uintptr
	fnDeviceCount    func() int32
	fnDeviceName     func(int32) uintptr
	fnDeviceMemory   func(int32) uint64
	fnDeviceCompute  func(int32) int32
	fnCreateContext  func(int32) uintptr
	fnDestroyContext func(uintptr)
	fnResize         func(uintptr, uint32, uint32) int32
	fnSetRegion      func(uintptr, uint32, uint32) int32
	fnSetCamera      func(uintptr, unsafe.Pointer, unsafe.Pointer, unsafe.Pointer, float32) int32
	fnSetBackground  func(uintptr, float32, float32, float32) int32
	fnSetMesh        func(uintptr, string, unsafe.Pointer, int32, unsafe.Pointer, unsafe.Pointer, int32, int32) int32
	fnSetMaterial    func(uintptr, int32, unsafe.Pointer, float32, float32, unsafe.Pointer) int32
	fnAddLight       func(uintptr, unsafe.Pointer, unsafe.Pointer, float32) int32
	fnLaunch         func(uintptr, int32, uint32) int32
	fnDenoise        func(uintptr, float32) int32
	fnTonemap        func(uintptr, float32, float32) int32
	fnReadFrame      func(uintptr, unsafe.Pointer, uint64) int32
)

type libSymbol struct {
	fptr     interface{}
	name     string
	optional bool
}

// The engine export table. Optional symbols may be absent from older engine
// builds; their fn pointers stay nil when unresolved.
var libSymbols = []libSymbol{
	{&fnTestLibrary, "test_library", false},
	{&fnAbiVersion, "abi_version", false},
	{&fnVersion, "version", false},
	{&fnLastError, "last_error", false},
	{&fnDeviceCount, "device_count", false},
	{&fnDeviceName, "device_name", false},
	{&fnDeviceMemory, "device_memory", false},
	{&fnDeviceCompute, "device_compute", false},
	{&fnCreateContext, "create_context", false},
	{&fnDestroyContext, "destroy_context", false},
	{&fnResize, "resize", false},
	{&fnSetRegion, "set_region", false},
	{&fnSetCamera, "set_camera", false},
	{&fnSetBackground, "set_background", false},
	{&fnSetMesh, "set_mesh", false},
	{&fnSetMaterial, "set_material", false},
	{&fnAddLight, "add_light", false},
	{&fnLaunch, "launch", false},
	{&fnDenoise, "denoise", true},
	{&fnTonemap, "tonemap", false},
	{&fnReadFrame, "read_frame", false},
}

// Resolve every entry point in the export table and bind it to its fn
// pointer. Missing required symbols abort the load.
func registerSymbols(handle uintptr) error {
	// Reset optional bindings from any previous load.
	fnDenoise = nil

	for _, sym := range libSymbols {
		addr, err := dlsym(handle, sym.name)
		if err != nil || addr == 0 {
			if sym.optional {
				continue
			}
			return fmt.Errorf("engine: could not resolve symbol %q: %v", sym.name, err)
		}
		purego.RegisterFunc(sym.fptr, addr)
	}
	return nil
}

// Copy a NUL-terminated engine-owned string into a Go string.
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var out []byte
	for {
		b := *(*byte)(unsafe.Pointer(ptr))
		if b == 0 {
			break
		}
		out = append(out, b)
		ptr++
	}
	return string(out)
}

// Drain the engine's thread-local error slot.
func lastError() string {
	if fnLastError == nil {
		return ""
	}
	return goString(fnLastError())
}
