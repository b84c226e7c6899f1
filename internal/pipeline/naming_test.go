package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/media/movie.mkv", "/media/movie..mp4"},
		{"/media/song.mp3", "/media/song..mp4"},
		{"clip.avi", "clip..mp4"},
		{"/a/b/no_ext", "/a/b/no_ext..mp4"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertedName(tt.in))
	}
}

func TestChunkName(t *testing.T) {
	assert.Equal(t, "/media/movie_part1.mp4", ChunkName("/media/movie.mkv", 1))
	assert.Equal(t, "/media/movie_part12.mp4", ChunkName("/media/movie.mkv", 12))
}

func TestIsConverted(t *testing.T) {
	assert.True(t, IsConverted("movie..mp4"))
	assert.False(t, IsConverted("movie.mp4"))
	assert.False(t, IsConverted("movie.mkv"))

	// A produced output must never be re-selected as a candidate.
	out := ConvertedName("/media/movie.mkv")
	assert.True(t, IsConverted(filepath.Base(out)))
}
