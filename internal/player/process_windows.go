//go:build windows

package player

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// setupPlayerProcess detaches mpv from the console the TUI is drawing in
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}
