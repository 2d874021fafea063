// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !unix

package jupyter

import "os/exec"

// killProcessGroup is a no-op here; WaitDelay still bounds the wait.
func killProcessGroup(cmd *exec.Cmd) {}
