package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ConvertedSuffix marks finished outputs. The double dot distinguishes
// "movie..mp4" (already converted) from "movie.mp4" (pending), so discovery
// never re-selects a produced output.
const ConvertedSuffix = "..mp4"

// ConvertedName returns the output path for an input: the input's stem with
// the converted marker, in the same directory.
func ConvertedName(path string) string {
	return filepath.Join(filepath.Dir(path), stem(path)+ConvertedSuffix)
}

// ChunkName returns the deterministic path of the index-th chunk of path.
// Chunks are always repackaged into an MP4 container.
func ChunkName(path string, index int) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf("%s_part%d.mp4", stem(path), index))
}

// manifestName returns the path of the concat manifest for an input. It lives
// next to the input and is deleted together with the chunks after a
// successful merge.
func manifestName(path string) string {
	return filepath.Join(filepath.Dir(path), stem(path)+"_concat.txt")
}

// IsConverted reports whether a file name carries the converted marker.
func IsConverted(name string) bool {
	return strings.HasSuffix(name, ConvertedSuffix)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
