// Package engine binds the OrionRT native ray tracing library. The library
// is loaded with the platform dynamic loader and all entry points are
// resolved eagerly; callers interact with it through the Library and Context
// types instead of raw handles.
package engine

// A loaded instance of the native engine library. The handle and the
// resolved entry points are immutable after a successful load.
type Library struct {
	handle      uintptr
	path        string
	version     string
	abiVersion  int32
	hasDenoiser bool
}

// Get the resolved path of the loaded library.
func (lib *Library) Path() string {
	return lib.path
}

// Get the engine version string.
func (lib *Library) Version() string {
	return lib.version
}

// Get the engine ABI generation.
func (lib *Library) ABIVersion() int32 {
	return lib.abiVersion
}

// Returns true if the loaded engine build ships the AI denoiser.
func (lib *Library) HasDenoiser() bool {
	return lib.hasDenoiser
}

// Invoke the engine's diagnostic entry point. The engine echoes back a
// truthy result when it can service calls; probe is an arbitrary caller
// chosen value that the diagnostic incorporates into its self check.
func (lib *Library) SelfTest(probe int32) bool {
	return fnTestLibrary(probe)
}

// Unload the library and reset the process-wide instance so that a
// subsequent Load starts from scratch. Engine contexts created from this
// library must be closed first. Intended for tests; production binaries
// keep the library loaded until process exit.
func (lib *Library) Close() error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if lib.handle == 0 {
		return nil
	}

	err := dlclose(lib.handle)
	lib.handle = 0
	if loadedLib == lib {
		loadedLib = nil
	}
	return err
}
