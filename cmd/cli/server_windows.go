//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

const serverBinaryName = "clipnest-server.exe"

// setSysProcAttr starts the server in its own process group without a
// console window, so closing the terminal does not stop it
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | createNoWindow,
		HideWindow:    true,
	}
}

// createNoWindow is CREATE_NO_WINDOW from the Win32 process creation flags
const createNoWindow = 0x08000000
