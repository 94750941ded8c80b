package player

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/google/uuid"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

// MPVFactory opens each view as its own mpv process
type MPVFactory struct {
	config config.PlayerConfig
}

// NewMPVFactory creates a factory for mpv backed views
func NewMPVFactory(cfg config.PlayerConfig) *MPVFactory {
	return &MPVFactory{config: cfg}
}

// Open starts an mpv process for the options.  It returns once the process is running; the IPC connection is
// established in the background and commands issued before that are queued.
func (f *MPVFactory) Open(ctx context.Context, opts OpenOptions) (ViewHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	socketPath := socketPathFor(id)

	mpvPath := f.config.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}
	args := f.buildArgs(socketPath, opts)

	log.Info("Starting mpv view", "view", id, "role", opts.Role, "path", opts.Path, "start", opts.Start)
	log.Debug("mpv arguments", "view", id, "args", args)

	cmd := exec.Command(mpvPath, args...)
	setupPlayerProcess(cmd)
	// mpv must never write into the TUI's terminal
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	view := newMPVView(id, opts.Role, socketPath)
	view.start(ctx, cmd)
	return view, nil
}

func (f *MPVFactory) buildArgs(socketPath string, opts OpenOptions) []string {
	title := opts.Title
	if title == "" {
		title = "mirrorplay"
	}

	args := []string{
		"--no-terminal",
		"--input-ipc-server=" + socketPath,
		"--force-window=yes",
		"--idle=yes",
		// Stay on the last frame at the end like a browser video element does
		"--keep-open=yes",
		"--title=" + title,
		"--force-media-title=" + title,
	}

	if opts.Start > 0 {
		args = append(args, "--start="+strconv.FormatFloat(opts.Start, 'f', 3, 64))
	}
	if opts.Paused {
		args = append(args, "--pause=yes")
	}
	if opts.Muted {
		args = append(args, "--mute=yes")
	}
	if opts.Flipped {
		args = append(args, "--vf="+mirrorFilter)
	}
	if opts.Fullscreen {
		args = append(args, "--fullscreen=yes")
	}

	if f.config.Args != "" {
		args = append(args, ParseArgs(f.config.Args)...)
	}

	// Everything after -- is a file, so paths starting with a dash cannot be read as flags
	return append(args, "--", opts.Path)
}
