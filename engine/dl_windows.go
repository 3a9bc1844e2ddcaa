//go:build windows

package engine

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Load a dynamic library on Windows.
func openLibrary(path string) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, fmt.Errorf("LoadLibrary failed: %w", err)
	}
	return uintptr(handle), nil
}

// Resolve a symbol from the loaded library.
func getSymbol(handle uintptr, name string) (uintptr, error) {
	addr, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, fmt.Errorf("GetProcAddress(%s) failed: %w", name, err)
	}
	return addr, nil
}

// Unload the library.
func closeLibrary(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
