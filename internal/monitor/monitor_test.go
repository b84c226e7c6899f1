package monitor

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestLogSystemSpecs(t *testing.T) {
	// Telemetry is best-effort; this must never panic or fail on any host.
	LogSystemSpecs(hclog.NewNullLogger())
}

func TestCheckHeadroom(t *testing.T) {
	guard := NewDiskGuard(hclog.NewNullLogger())
	path := filepath.Join(t.TempDir(), "movie.mkv")

	// Both the satisfied and the impossible requirement are advisory no-ops.
	guard.CheckHeadroom(path, 1)
	guard.CheckHeadroom(path, math.MaxUint64)

	// A nonsense volume is tolerated silently.
	guard.CheckHeadroom("/definitely/not/a/volume/movie.mkv", 1)
}
