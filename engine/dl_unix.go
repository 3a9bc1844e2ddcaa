//go:build darwin || linux || freebsd

package engine

import (
	"github.com/ebitengine/purego"
)

// Load a dynamic library on unix-like systems.
func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// Resolve a symbol from the loaded library.
func getSymbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

// Unload the library.
func closeLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}
