//go:build !linux

package envexec

import "os"

// waitExited is not available, processes left in the group after a normal
// exit are not killed.
func waitExited(p *os.Process) bool {
	return false
}
