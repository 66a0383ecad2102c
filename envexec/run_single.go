package envexec

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/criyle/go-sandbox/runner"
)

// waitDelay bounds the time spent draining pipes after the process exits or is killed
const waitDelay = time.Second

var errOutputLimitExceeded = errors.New("output limit exceeded")

// RunSingle starts the cmd as a fresh process group, waits for it to exit or to be
// killed (time limit, output limit, context done) and returns the collected result.
// The error is only returned when the cmd could not be set up at all.
func RunSingle(pc context.Context, c *Cmd) (Result, error) {
	if len(c.Args) == 0 {
		return Result{}, errEmptyArgs
	}
	outputLimit := c.OutputLimit
	if outputLimit == 0 {
		outputLimit = DefaultOutputLimit
	}

	ctx, cancel := context.WithCancelCause(pc)
	defer cancel(nil)
	exceeded := func() { cancel(errOutputLimitExceeded) }

	stdout, err := newPipeBuffer(outputLimit, exceeded)
	if err != nil {
		return Result{}, err
	}
	stderr, err := newPipeBuffer(outputLimit, exceeded)
	if err != nil {
		closeFiles(stdout.W, stdout.R)
		return Result{}, err
	}

	// run cmd and wait for result
	rt, interrupted := runSingleWait(ctx, c, stdout.W, stderr.W)

	// collect output
	stdout.wait(waitDelay)
	stderr.wait(waitDelay)

	result := Result{
		Status:     convertStatus(rt.Status),
		ExitStatus: rt.ExitStatus,
		Error:      rt.Error,
		Time:       rt.Time,
		RunTime:    rt.RunningTime,
		Stdout:     stdout.Bytes(),
		Stderr:     stderr.Bytes(),
	}
	switch {
	case stdout.Exceeded() || stderr.Exceeded():
		result.Status = StatusOutputLimitExceeded
		result.Error = errOutputLimitExceeded.Error()
	case interrupted:
		result.Status = StatusCancelled
		result.Error = context.Cause(ctx).Error()
	}
	return result, nil
}

// runSingleWait runs the process and waits for it. interrupted reports the process
// was killed because ctx was done before it exited.
func runSingleWait(ctx context.Context, c *Cmd, stdout, stderr *os.File) (rt RunnerResult, interrupted bool) {
	cmd := exec.Command(c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = c.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	err := cmd.Start()
	// the child owns the write ends now
	closeFiles(stdout, stderr)
	if err != nil {
		return runner.Result{
			Status: runner.StatusRunnerError,
			Error:  err.Error(),
		}, false
	}

	// the group id is only safe to signal until Wait releases the leader pid
	var (
		mu     sync.Mutex
		reaped bool
	)
	kill := func() {
		mu.Lock()
		defer mu.Unlock()
		if !reaped {
			killProcessGroup(cmd.Process)
		}
	}

	done := make(chan error, 1)
	go func() {
		var err error
		if waitExited(cmd.Process) {
			mu.Lock()
			// reap whatever the program left behind in its group
			killProcessGroup(cmd.Process)
			err = cmd.Wait()
		} else {
			err = cmd.Wait()
			mu.Lock()
		}
		reaped = true
		mu.Unlock()
		done <- err
	}()

	var timeLimit <-chan time.Time
	if c.TimeLimit > 0 {
		timer := time.NewTimer(c.TimeLimit)
		defer timer.Stop()
		timeLimit = timer.C
	}

	var (
		waitErr error
		tle     bool
	)
	select {
	case waitErr = <-done:
	case <-timeLimit:
		kill()
		waitErr = <-done
		tle = true
	case <-ctx.Done():
		kill()
		waitErr = <-done
		interrupted = true
	}
	runTime := time.Since(start)

	rt.RunningTime = runTime
	if ps := cmd.ProcessState; ps != nil {
		rt.Time = ps.UserTime() + ps.SystemTime()
	}

	var exitErr *exec.ExitError
	switch {
	case tle:
		rt.Status = runner.StatusTimeLimitExceeded
	case waitErr == nil:
		rt.Status = runner.StatusNormal
	case errors.As(waitErr, &exitErr):
		if sig, ok := exitSignal(exitErr.ProcessState); ok {
			rt.Status = runner.StatusSignalled
			rt.ExitStatus = sig
		} else {
			rt.Status = runner.StatusNonzeroExitStatus
			rt.ExitStatus = exitErr.ExitCode()
		}
		rt.Error = exitErr.Error()
	case errors.Is(waitErr, exec.ErrWaitDelay):
		// exited but left stdin copying behind
		rt.Status = runner.StatusNormal
	default:
		rt.Status = runner.StatusRunnerError
		rt.Error = waitErr.Error()
	}
	return rt, interrupted
}
