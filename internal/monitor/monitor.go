// Package monitor reports host specs at startup and checks disk headroom
// before the chunked pipeline doubles a file's footprint.
package monitor

import (
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const mb = 1024 * 1024

// LogSystemSpecs logs static hardware info once at startup. Failures to read
// any metric are non-fatal; transcoding does not depend on telemetry.
func LogSystemSpecs(log hclog.Logger) {
	model := "unknown"
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		model = info[0].ModelName
	}

	args := []interface{}{"cpu", model, "threads", runtime.NumCPU()}
	if v, err := mem.VirtualMemory(); err == nil {
		args = append(args, "ram_total_mb", v.Total/mb)
	}
	log.Info("system", args...)
}

// DiskGuard warns when the volume holding an input lacks the free space the
// chunked pipeline needs at its peak. Advisory only: a warning never stops
// the run, since the estimate is an upper bound.
type DiskGuard struct {
	log hclog.Logger
}

func NewDiskGuard(log hclog.Logger) *DiskGuard {
	return &DiskGuard{log: log}
}

// CheckHeadroom compares free space on path's volume against requiredBytes.
func (g *DiskGuard) CheckHeadroom(path string, requiredBytes uint64) {
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil {
		g.log.Debug("disk usage unavailable", "path", path, "error", err)
		return
	}
	if usage.Free < requiredBytes {
		g.log.Warn("low disk headroom for chunked conversion",
			"free_mb", usage.Free/mb,
			"required_mb", requiredBytes/mb,
		)
	}
}
