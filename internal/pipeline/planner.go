package pipeline

import (
	"math"

	"batch-transcoder/pkg/models"
)

// PlanChunks decides whether a file must be split before transcoding. It
// returns nil when the file is at or under thresholdMB and can be encoded in
// one pass. Otherwise it returns ceil(sizeMB/thresholdMB) equal-length chunk
// specs whose ranges tile [0, duration) contiguously.
func PlanChunks(desc models.MediaDescriptor, thresholdMB float64) ([]models.ChunkSpec, error) {
	if desc.SizeMB() <= thresholdMB {
		return nil, nil
	}

	// A zero-duration file cannot be divided into time ranges.
	if desc.DurationSeconds <= 0 {
		return nil, &PlanningError{Path: desc.Path, DurationSeconds: desc.DurationSeconds}
	}

	count := int(math.Ceil(desc.SizeMB() / thresholdMB))
	if count <= 0 {
		return nil, &PlanningError{Path: desc.Path, DurationSeconds: desc.DurationSeconds}
	}

	length := desc.DurationSeconds / float64(count)
	specs := make([]models.ChunkSpec, 0, count)
	for i := 1; i <= count; i++ {
		specs = append(specs, models.ChunkSpec{
			Index:         i,
			StartSeconds:  float64(i-1) * length,
			LengthSeconds: length,
		})
	}
	return specs, nil
}
