package port

import "context"

type SampledFrame struct {
	Path      string
	Timestamp float64
}

type FrameSampleResult struct {
	Frames        []SampledFrame
	VideoDuration float64
}

type FrameSampler interface {
	SampleFrames(ctx context.Context, videoPath string, outputDir string, frameRate float64) (*FrameSampleResult, error)
}
