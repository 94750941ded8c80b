package playback

import (
	"errors"

	"github.com/PizzaHomicide/mirrorplay/internal/media"
)

var (
	// ErrLoad is returned when a file passed validation but could not be opened or decoded
	ErrLoad = errors.New("video could not be loaded")
	// ErrPlatformFullscreenUnavailable is logged when the player window refuses native full-screen
	ErrPlatformFullscreenUnavailable = errors.New("platform full-screen unavailable")
	// ErrUnexpectedFullscreenTarget is logged when the main window itself went native full-screen
	ErrUnexpectedFullscreenTarget = errors.New("main view entered full-screen directly")
	// ErrInvalidState is returned when an operation is not allowed in the current phase
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// UserMessage turns a load or validation error into text suitable for a notification
func UserMessage(err error) string {
	switch {
	case errors.Is(err, media.ErrUnsupportedFormat):
		return "Unsupported file format. Please choose an MP4, MOV, AVI, MPEG or WebM file."
	case errors.Is(err, media.ErrFileTooLarge):
		return "File is too large. Please choose a file smaller than 500 MB."
	case errors.Is(err, media.ErrFileSuspect):
		return "The file may be damaged or is not a valid video file."
	case errors.Is(err, ErrLoad):
		return "Failed to load the video. Please check the file format."
	default:
		return "Something went wrong: " + err.Error()
	}
}
