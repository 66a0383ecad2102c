//go:build !unix

package envexec

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(p *os.Process) {
	if p == nil {
		return
	}
	p.Kill()
}

func exitSignal(ps *os.ProcessState) (int, bool) {
	return 0, false
}
