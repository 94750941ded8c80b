package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0600))
	return path
}

func TestValidateDeclared(t *testing.T) {
	tests := []struct {
		name    string
		mime    string
		size    int64
		wantErr error
	}{
		{name: "mp4 10MB", mime: "video/mp4", size: 10 * 1024 * 1024},
		{name: "quicktime", mime: "video/quicktime", size: 2048},
		{name: "legacy avi", mime: "video/avi", size: 2048},
		{name: "msvideo", mime: "video/x-msvideo", size: 2048},
		{name: "webm with codecs", mime: "video/webm; codecs=vp9", size: 2048},
		{name: "mpeg", mime: "video/mpeg", size: 2048},
		{name: "exactly max", mime: "video/mp4", size: MaxFileSize},
		{name: "exactly min", mime: "video/mp4", size: MinFileSize},
		{name: "matroska", mime: "video/x-matroska", size: 2048, wantErr: ErrUnsupportedFormat},
		{name: "audio", mime: "audio/mp4", size: 2048, wantErr: ErrUnsupportedFormat},
		{name: "empty type", mime: "", size: 2048, wantErr: ErrUnsupportedFormat},
		{name: "too large", mime: "video/mp4", size: MaxFileSize + 1, wantErr: ErrFileTooLarge},
		{name: "suspect", mime: "video/mp4", size: 500, wantErr: ErrFileSuspect},
		{name: "format checked before size", mime: "text/plain", size: 10, wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeclared(tt.mime, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("accepts video by extension when content is not recognised", func(t *testing.T) {
		path := writeFile(t, dir, "dance.mp4", 4096)

		info, err := Validate(path)
		require.NoError(t, err)
		assert.Equal(t, "dance.mp4", info.Name)
		assert.Equal(t, int64(4096), info.Size)
		assert.Equal(t, "video/mp4", info.MIME)
		assert.Equal(t, path, info.Path)
		assert.Equal(t, "4.1 kB", info.HumanSize())
	})

	t.Run("small file is suspect", func(t *testing.T) {
		path := writeFile(t, dir, "tiny.mp4", 500)

		_, err := Validate(path)
		assert.ErrorIs(t, err, ErrFileSuspect)
	})

	t.Run("text file is unsupported", func(t *testing.T) {
		path := writeFile(t, dir, "notes.txt", 4096)

		_, err := Validate(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("directory is unsupported", func(t *testing.T) {
		_, err := Validate(dir)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Validate(filepath.Join(dir, "missing.mp4"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestHasVideoExtension(t *testing.T) {
	assert.True(t, HasVideoExtension("a.MP4"))
	assert.True(t, HasVideoExtension("a.mov"))
	assert.True(t, HasVideoExtension("a.webm"))
	assert.True(t, HasVideoExtension("a.avi"))
	assert.False(t, HasVideoExtension("a.mkv"))
	assert.False(t, HasVideoExtension("a.txt"))
	assert.False(t, HasVideoExtension("mp4"))
}
