package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Environment variable that overrides the library search paths with an
// explicit path to the native engine library.
const libPathEnvVar = "ORION_RT_LIBRARY"

// The engine ABI generation this binding speaks. Libraries reporting a
// different value are rejected at load time.
const requiredABIVersion = 2

var (
	loadMu    sync.Mutex
	loadedLib *Library

	// Indirection over the platform loader entry points so that tests can
	// substitute them.
	dlopen   = openLibrary
	dlsym    = getSymbol
	dlclose  = closeLibrary
	register = registerSymbols
)

// Get the platform file name for the engine library.
func libraryFileName() string {
	switch runtime.GOOS {
	case "windows":
		return "orionrt.dll"
	case "darwin":
		return "liborionrt.dylib"
	default:
		return "liborionrt.so"
	}
}

// Locate the engine library. The ORION_RT_LIBRARY environment variable takes
// precedence over the search paths; when set it must point at an existing
// file. Otherwise the working directory and the executable directory are
// scanned and the bare library name is returned as a fallback so that the
// system loader can consult its own search paths.
func resolveLibraryPath() (string, error) {
	if path := os.Getenv(libPathEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s points to %s: %v", ErrLibraryNotFound, libPathEnvVar, path, err)
		}
		return path, nil
	}

	libName := libraryFileName()
	searchPaths := []string{
		libName,
	}
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths,
			filepath.Join(execDir, libName),
			filepath.Join(execDir, "..", "lib", libName),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath, nil
			}
			return path, nil
		}
	}

	// Let the system loader find it.
	return libName, nil
}

// Load the engine library, resolving its location via ORION_RT_LIBRARY or the
// default search paths. The library is loaded once per process; subsequent
// calls return the already loaded instance.
func Load() (*Library, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loadedLib != nil {
		return loadedLib, nil
	}

	path, err := resolveLibraryPath()
	if err != nil {
		return nil, err
	}

	lib, err := loadLibrary(path)
	if err != nil {
		return nil, err
	}

	loadedLib = lib
	return lib, nil
}

// Load the engine library from an explicit path, bypassing path resolution.
// The process-wide instance cache still applies; attempting to load a second
// library at a different path fails with ErrAlreadyLoaded.
func LoadFrom(path string) (*Library, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loadedLib != nil {
		if loadedLib.path == path {
			return loadedLib, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, loadedLib.path)
	}

	lib, err := loadLibrary(path)
	if err != nil {
		return nil, err
	}

	loadedLib = lib
	return lib, nil
}

// Open the library, resolve its entry points and verify ABI compatibility.
func loadLibrary(path string) (*Library, error) {
	handle, err := dlopen(path)
	if err != nil {
		return nil, fmt.Errorf("engine: could not load library %s: %w", path, err)
	}

	if err = register(handle); err != nil {
		dlclose(handle)
		return nil, err
	}

	if abi := fnAbiVersion(); abi != requiredABIVersion {
		dlclose(handle)
		return nil, fmt.Errorf("%w: %s reports ABI version %d; this binding requires %d", ErrIncompatibleABI, path, abi, requiredABIVersion)
	}

	return &Library{
		handle:      handle,
		path:        path,
		version:     goString(fnVersion()),
		abiVersion:  requiredABIVersion,
		hasDenoiser: fnDenoise != nil,
	}, nil
}
