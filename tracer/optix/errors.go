package optix

import "errors"

var (
	ErrNotInitialized = errors.New("optix tracer: tracer not initialized")
	ErrNoSceneData    = errors.New("optix tracer: no scene data uploaded")
)
