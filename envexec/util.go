package envexec

import (
	"os"

	"github.com/criyle/go-sandbox/runner"
)

func convertStatus(s runner.Status) Status {
	switch s {
	case runner.StatusNormal:
		return StatusAccepted
	case runner.StatusSignalled:
		return StatusSignalled
	case runner.StatusNonzeroExitStatus:
		return StatusNonzeroExitStatus
	case runner.StatusTimeLimitExceeded:
		return StatusTimeLimitExceeded
	case runner.StatusOutputLimitExceeded:
		return StatusOutputLimitExceeded
	default:
		return StatusInternalError
	}
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f == nil {
			continue
		}
		f.Close()
	}
}
