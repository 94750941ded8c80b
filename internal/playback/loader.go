package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/media"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
)

// MediaHandle is one loaded video.  Duration and dimensions are fixed once the metadata is known.  Playing and
// Muted are the main view's state as last reported while loading.
type MediaHandle struct {
	File     media.FileInfo
	Duration float64
	Width    int
	Height   int
	Playing  bool
	Muted    bool
	Main     player.ViewHandle
}

// Loader validates a file and opens the main view onto it
type Loader struct {
	factory  player.ViewFactory
	timeout  time.Duration
	validate func(path string) (media.FileInfo, error)
}

// NewLoader creates a loader.  A zero timeout waits for as long as ctx allows.
func NewLoader(factory player.ViewFactory, timeout time.Duration) *Loader {
	return &Loader{
		factory:  factory,
		timeout:  timeout,
		validate: media.Validate,
	}
}

// Load validates the file at path, opens a paused main view and waits for its metadata.  Validation failures are
// returned as the media package's errors, anything after that is wrapped in ErrLoad.
func (l *Loader) Load(ctx context.Context, path string) (*MediaHandle, error) {
	info, err := l.validate(path)
	if err != nil {
		log.Warn("Video failed validation", "path", path, "error", err)
		return nil, err
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	log.Info("Loading video", "path", info.Path, "size", info.HumanSize(), "mime", info.MIME)

	view, err := l.factory.Open(ctx, player.OpenOptions{
		Role:   player.RoleMain,
		Path:   info.Path,
		Title:  info.Name,
		Paused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	handle, err := waitForMetadata(ctx, view)
	if err != nil {
		if closeErr := view.Close(); closeErr != nil {
			log.Debug("Failed to close view after load failure", "error", closeErr)
		}
		log.Error("Failed to load video", "path", info.Path, "error", err)
		return nil, err
	}

	handle.File = info
	log.Info("Video loaded", "path", info.Path, "duration", handle.Duration, "width", handle.Width, "height", handle.Height)
	return handle, nil
}

func waitForMetadata(ctx context.Context, view player.ViewHandle) (*MediaHandle, error) {
	// The view is opened paused, user player args may still change that
	var playing, muted bool
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: timed out waiting for video metadata", ErrLoad)
			}
			return nil, fmt.Errorf("%w: %w", ErrLoad, ctx.Err())

		case ev, ok := <-view.Events():
			if !ok {
				return nil, fmt.Errorf("%w: player exited before the video was ready", ErrLoad)
			}

			switch ev.Kind {
			case player.EventMetadata:
				return &MediaHandle{
					Duration: ev.Duration,
					Width:    ev.Width,
					Height:   ev.Height,
					Playing:  playing,
					Muted:    muted,
					Main:     view,
				}, nil
			case player.EventPause:
				playing = !ev.Paused
			case player.EventMute:
				muted = ev.Muted
			case player.EventLoadError:
				return nil, fmt.Errorf("%w: %w", ErrLoad, ev.Err)
			case player.EventClosed:
				return nil, fmt.Errorf("%w: player window closed while loading", ErrLoad)
			default:
				log.Trace("Ignoring event while loading", "kind", ev.Kind)
			}
		}
	}
}
