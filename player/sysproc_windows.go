//go:build windows

package player

import (
	"os/exec"
	"syscall"
)

// sysProcAttr starts mpv in its own process group so a console Ctrl+C stops the
// rotation first and Close then asks mpv to quit.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcess terminates mpv when it ignores the quit command.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
