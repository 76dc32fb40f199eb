//go:build !unix

package cmdrunner

import "os/exec"

// configureProcessGroup keeps exec's default cancellation (Process.Kill).
// Grandchildren notice the closed pipe on their next write.
func configureProcessGroup(cmd *exec.Cmd) {}
