//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

const serverBinaryName = "clipnest-server"

// setSysProcAttr detaches an auto-started server from the CLI process group
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
