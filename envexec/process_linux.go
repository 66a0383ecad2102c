package envexec

import (
	"os"

	"golang.org/x/sys/unix"
)

// waitExited blocks until p exits without reaping it. The zombie keeps its
// pid, so the process group id stays reserved until Wait.
func waitExited(p *os.Process) bool {
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, p.Pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if err != unix.EINTR {
			return err == nil
		}
	}
}
