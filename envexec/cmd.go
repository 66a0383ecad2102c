package envexec

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/criyle/go-sandbox/runner"
)

// Size represent data size in bytes
type Size = runner.Size

// RunnerResult represent process finish result
type RunnerResult = runner.Result

// DefaultOutputLimit is used for stdout / stderr when Cmd.OutputLimit is not set
const DefaultOutputLimit Size = 64 << 20

var errEmptyArgs = errors.New("envexec: cmd has no args")

// Cmd defines instruction to run a single program on the host
type Cmd struct {
	// exec argument, environment and working directory
	Args []string
	Env  []string
	Dir  string

	// Stdin is fed to the program, nil for empty input
	Stdin io.Reader

	// resource limits
	TimeLimit   time.Duration // wall clock, 0 for no limit
	OutputLimit Size          // per stream (stdout / stderr)
}

// Result defines the running result for a single Cmd
type Result struct {
	Status     Status
	ExitStatus int
	Error      string // potential detailed error message (for program start / exit failure)

	Time    time.Duration // user + system cpu time
	RunTime time.Duration // wall clock

	Stdout []byte
	Stderr []byte
}

func (r Result) String() string {
	return fmt.Sprintf("Result[%v exit=%d time=%v runTime=%v stdout=(len:%d) stderr=(len:%d) error=%q]",
		r.Status, r.ExitStatus, r.Time, r.RunTime, len(r.Stdout), len(r.Stderr), r.Error)
}
