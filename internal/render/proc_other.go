//go:build !unix

package render

import "os/exec"

// killProcessGroup keeps the default behavior of killing only the direct
// child.
func killProcessGroup(cmd *exec.Cmd) {}
