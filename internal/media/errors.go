package media

import "errors"

var (
	// ErrUnsupportedFormat is returned when the file is not one of the accepted video types
	ErrUnsupportedFormat = errors.New("unsupported video format")
	// ErrFileTooLarge is returned when the file is bigger than MaxFileSize
	ErrFileTooLarge = errors.New("file too large")
	// ErrFileSuspect is returned when the file is too small to be a real video
	ErrFileSuspect = errors.New("file is too small to be a valid video")
)
