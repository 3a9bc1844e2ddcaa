package engine

import (
	"errors"
	"fmt"
)

var (
	ErrLibraryNotFound     = errors.New("engine: library not found")
	ErrIncompatibleABI     = errors.New("engine: incompatible library ABI")
	ErrAlreadyLoaded       = errors.New("engine: a different library is already loaded")
	ErrContextDestroyed    = errors.New("engine: context already destroyed")
	ErrDenoiserUnavailable = errors.New("engine: denoiser not available in loaded library")
)

// Status codes returned by the native engine entry points.
type Status int32

const (
	StatusSuccess               Status = 0
	StatusInvalidValue          Status = 7001
	StatusHostOutOfMemory       Status = 7002
	StatusInvalidOperation      Status = 7003
	StatusFileIOError           Status = 7004
	StatusLaunchFailure         Status = 7050
	StatusInvalidContext        Status = 7051
	StatusDeviceNotInitialized  Status = 7052
	StatusValidationFailure     Status = 7053
	StatusDenoiserModelNotSet   Status = 7300
	StatusDenoiserNotInitalized Status = 7301
	StatusNotSupported          Status = 7800
	StatusUnsupportedABI        Status = 7801
	StatusDeviceOutOfMemory     Status = 7807
	StatusCudaError             Status = 7900
	StatusInternalError         Status = 7990
	StatusUnknown               Status = 7999
)

// Ok returns true if the status indicates success.
func (s Status) Ok() bool {
	return s == StatusSuccess
}

// Get the symbolic name for an engine status code.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "ORION_SUCCESS"
	case StatusInvalidValue:
		return "ORION_ERROR_INVALID_VALUE"
	case StatusHostOutOfMemory:
		return "ORION_ERROR_HOST_OUT_OF_MEMORY"
	case StatusInvalidOperation:
		return "ORION_ERROR_INVALID_OPERATION"
	case StatusFileIOError:
		return "ORION_ERROR_FILE_IO_ERROR"
	case StatusLaunchFailure:
		return "ORION_ERROR_LAUNCH_FAILURE"
	case StatusInvalidContext:
		return "ORION_ERROR_INVALID_CONTEXT"
	case StatusDeviceNotInitialized:
		return "ORION_ERROR_DEVICE_NOT_INITIALIZED"
	case StatusValidationFailure:
		return "ORION_ERROR_VALIDATION_FAILURE"
	case StatusDenoiserModelNotSet:
		return "ORION_ERROR_DENOISER_MODEL_NOT_SET"
	case StatusDenoiserNotInitalized:
		return "ORION_ERROR_DENOISER_NOT_INITIALIZED"
	case StatusNotSupported:
		return "ORION_ERROR_NOT_SUPPORTED"
	case StatusUnsupportedABI:
		return "ORION_ERROR_UNSUPPORTED_ABI_VERSION"
	case StatusDeviceOutOfMemory:
		return "ORION_ERROR_DEVICE_OUT_OF_MEMORY"
	case StatusCudaError:
		return "ORION_ERROR_CUDA_ERROR"
	case StatusInternalError:
		return "ORION_ERROR_INTERNAL_ERROR"
	case StatusUnknown:
		return "ORION_ERROR_UNKNOWN"
	default:
		return fmt.Sprintf("ORION_ERROR (%d)", int32(s))
	}
}
