package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples to accumulate per pixel. A zero value lets the
	// renderer accumulate samples until it is closed.
	SamplesPerPixel uint32

	// Exposure and gamma for tonemapping.
	Exposure float32
	Gamma    float32

	// Device selection.
	BlackListedDevices []string
	ForcePrimaryDevice string
}
