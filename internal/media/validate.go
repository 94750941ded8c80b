package media

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

const (
	// MaxFileSize is the largest accepted video, 500 MiB
	MaxFileSize int64 = 500 * 1024 * 1024
	// MinFileSize is the smallest file that can plausibly be a video
	MinFileSize int64 = 1024
)

// SupportedSubtypes are the accepted video MIME subtypes.  A declared type is accepted when its subtype contains
// any of these, so "video/x-msvideo" and "video/avi" both pass.
var SupportedSubtypes = []string{"mp4", "mpeg", "quicktime", "avi", "webm", "x-msvideo"}

// FileInfo describes a validated local video file
type FileInfo struct {
	Path string
	Name string
	Size int64
	MIME string
}

// HumanSize renders the size for display, e.g. "10 MB"
func (f FileInfo) HumanSize() string {
	return humanize.Bytes(uint64(f.Size))
}

// Validate checks a local file against the accepted types and size limits.  The MIME type is sniffed from the file
// content, falling back to the extension when the content is not recognised.
func Validate(path string) (FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("resolving %q: %w", path, err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("reading %q: %w", path, err)
	}
	if stat.IsDir() {
		return FileInfo{}, fmt.Errorf("%q is a directory: %w", path, ErrUnsupportedFormat)
	}

	info := FileInfo{
		Path: abs,
		Name: stat.Name(),
		Size: stat.Size(),
		MIME: detectMIME(abs),
	}

	if err := ValidateDeclared(info.MIME, info.Size); err != nil {
		log.Info("Rejected video file", "path", abs, "mime", info.MIME, "size", info.Size, "error", err)
		return info, err
	}

	log.Debug("Validated video file", "path", abs, "mime", info.MIME, "size", info.Size)
	return info, nil
}

// ValidateDeclared applies the format and size rules to a declared MIME type and byte size
func ValidateDeclared(mimeType string, size int64) error {
	if !IsSupportedMIME(mimeType) {
		if mimeType == "" {
			mimeType = "unknown"
		}
		return fmt.Errorf("%s (choose an MP4, MOV, AVI or WebM file): %w", mimeType, ErrUnsupportedFormat)
	}

	if size > MaxFileSize {
		return fmt.Errorf("%s exceeds the %s limit: %w",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(MaxFileSize)), ErrFileTooLarge)
	}

	if size < MinFileSize {
		return fmt.Errorf("only %d bytes: %w", size, ErrFileSuspect)
	}

	return nil
}

// IsSupportedMIME reports whether a MIME type is one of the accepted video types
func IsSupportedMIME(mimeType string) bool {
	mediaType, subtype, ok := strings.Cut(strings.ToLower(mimeType), "/")
	if !ok || mediaType != "video" {
		return false
	}
	// Parameters such as "; codecs=..." are not part of the subtype
	subtype, _, _ = strings.Cut(subtype, ";")

	return lo.SomeBy(SupportedSubtypes, func(s string) bool {
		return strings.Contains(subtype, s)
	})
}

// HasVideoExtension reports whether the file name carries an extension of an accepted type.  Used to list
// candidates cheaply without reading file content.
func HasVideoExtension(name string) bool {
	return IsSupportedMIME(typeByExtension(name))
}

// extensionTypes covers containers the system MIME table often lacks
var extensionTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
}

func typeByExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

func detectMIME(path string) string {
	detected, err := mimetype.DetectFile(path)
	if err == nil && strings.HasPrefix(detected.String(), "video/") {
		return detected.String()
	}
	if err != nil {
		log.Debug("Content sniffing failed, falling back to extension", "path", path, "error", err)
	}

	if byExt := typeByExtension(path); byExt != "" {
		return byExt
	}
	if err == nil {
		return detected.String()
	}
	return ""
}
