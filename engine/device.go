package engine

import (
	"fmt"
	"strings"
)

// A CUDA-capable device reported by the engine.
type Device struct {
	// The engine assigned device ordinal.
	Ordinal int32

	// Device name as reported by the driver.
	Name string

	// Total device memory in bytes.
	Memory uint64

	// Compute capability encoded as major*10+minor.
	Compute int32
}

// Get the device compute capability in major.minor form.
func (d Device) ComputeCapability() string {
	return fmt.Sprintf("%d.%d", d.Compute/10, d.Compute%10)
}

// Get a crude relative speed estimate for the device. The estimate weighs
// the compute capability by the installed memory; per-frame scheduling
// feedback corrects for its inaccuracy.
func (d Device) SpeedEstimate() uint32 {
	speed := uint32(d.Compute) * uint32(d.Memory>>30)
	if speed == 0 {
		speed = 1
	}
	return speed
}

func (d Device) String() string {
	return fmt.Sprintf(
		"Name    %s\nMemory  %d MB\nCompute %s",
		d.Name,
		d.Memory>>20,
		d.ComputeCapability(),
	)
}

type DeviceList []Device

// Filter out devices whose names contain any of the given patterns.
func (dl DeviceList) Exclude(patterns []string) DeviceList {
	out := make(DeviceList, 0, len(dl))
	for _, dev := range dl {
		keep := true
		for _, pattern := range patterns {
			if pattern != "" && strings.Contains(dev.Name, pattern) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, dev)
		}
	}
	return out
}

// Enumerate the devices the engine can render on.
func (lib *Library) Devices() (DeviceList, error) {
	count := fnDeviceCount()
	if count < 0 {
		return nil, fmt.Errorf("engine: device enumeration failed: %s", lastError())
	}

	devices := make(DeviceList, 0, count)
	var ordinal int32
	for ordinal = 0; ordinal < count; ordinal++ {
		devices = append(devices, Device{
			Ordinal: ordinal,
			Name:    goString(fnDeviceName(ordinal)),
			Memory:  fnDeviceMemory(ordinal),
			Compute: fnDeviceCompute(ordinal),
		})
	}

	return devices, nil
}
