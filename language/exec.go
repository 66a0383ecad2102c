package language

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/workspace"
)

// DefaultCompileTimeLimit bounds the compile step when Options does not set one
const DefaultCompileTimeLimit = 10 * time.Second

const compileTimeLimitExceeded = "Compile Time Limit Exceeded"

// Options defines limits shared by all adapters
type Options struct {
	CompileTimeLimit time.Duration
	OutputLimit      envexec.Size
}

// executor runs compile and run steps in a workspace
type executor struct {
	env              []string
	compileTimeLimit time.Duration
	outputLimit      envexec.Size
}

func newExecutor(env []string, opt Options) *executor {
	if opt.CompileTimeLimit <= 0 {
		opt.CompileTimeLimit = DefaultCompileTimeLimit
	}
	if opt.OutputLimit == 0 {
		opt.OutputLimit = envexec.DefaultOutputLimit
	}
	return &executor{
		env:              env,
		compileTimeLimit: opt.CompileTimeLimit,
		outputLimit:      opt.OutputLimit,
	}
}

func (e *executor) run(ctx context.Context, ws *workspace.Workspace, args []string, input string, timeLimit time.Duration) (RunOutcome, error) {
	rt, err := envexec.RunSingle(ctx, &envexec.Cmd{
		Args:        args,
		Env:         e.env,
		Dir:         ws.Dir(),
		Stdin:       strings.NewReader(input),
		TimeLimit:   timeLimit,
		OutputLimit: e.outputLimit,
	})
	if err != nil {
		return RunOutcome{}, fmt.Errorf("run %s: %w", args[0], err)
	}
	out := RunOutcome{
		Stdout:   string(rt.Stdout),
		Stderr:   string(rt.Stderr),
		TimedOut: rt.Status == envexec.StatusTimeLimitExceeded,
		Status:   rt.Status,
		Error:    rt.Error,
		Time:     rt.RunTime,
	}
	if rt.Status == envexec.StatusNonzeroExitStatus {
		out.ExitCode = rt.ExitStatus
	} else if rt.Status == envexec.StatusSignalled {
		out.ExitCode = -rt.ExitStatus
	}
	return out, nil
}

// compile runs the compiler and verifies every output file exists afterwards
func (e *executor) compile(ctx context.Context, ws *workspace.Workspace, args []string, outputs ...string) (CompileOutcome, error) {
	rt, err := envexec.RunSingle(ctx, &envexec.Cmd{
		Args:        args,
		Env:         e.env,
		Dir:         ws.Dir(),
		TimeLimit:   e.compileTimeLimit,
		OutputLimit: e.outputLimit,
	})
	if err != nil {
		return CompileOutcome{}, fmt.Errorf("compile %s: %w", args[0], err)
	}

	switch rt.Status {
	case envexec.StatusAccepted:
	case envexec.StatusCancelled:
		return CompileOutcome{}, fmt.Errorf("compile %s: %w", args[0], context.Cause(ctx))
	case envexec.StatusInternalError:
		return CompileOutcome{}, fmt.Errorf("compile %s: %s", args[0], rt.Error)
	case envexec.StatusTimeLimitExceeded:
		return CompileOutcome{Diagnostics: compileTimeLimitExceeded}, nil
	default:
		return CompileOutcome{Diagnostics: diagnostics(rt)}, nil
	}

	for _, o := range outputs {
		if !ws.Exists(o) {
			return CompileOutcome{Diagnostics: fmt.Sprintf("compiled file %s not found", o)}, nil
		}
	}
	return CompileOutcome{Succeeded: true}, nil
}

// diagnostics prefers compiler stderr, falling back to stdout and then the status
func diagnostics(rt envexec.Result) string {
	if len(rt.Stderr) > 0 {
		return string(rt.Stderr)
	}
	if len(rt.Stdout) > 0 {
		return string(rt.Stdout)
	}
	if rt.Error != "" {
		return rt.Status.String() + ": " + rt.Error
	}
	return rt.Status.String()
}
