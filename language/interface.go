// Package language defines how source code of a supported language is prepared,
// compiled and run inside a workspace.
//
// Every program follows the same contract: it reads the test input from stdin
// and writes its answer to stdout.
package language

import (
	"context"
	"time"

	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/workspace"
)

// JavaMainClass is the public class name java submissions must declare
const JavaMainClass = "Solution"

// Adapter prepares and runs programs of a single language
type Adapter interface {
	// Prepare writes the source artifacts into the workspace
	Prepare(ws *workspace.Workspace, code string) error
	// Run starts a fresh process fed with input and waits at most timeLimit.
	// The error is only returned when the process could not be set up.
	Run(ctx context.Context, ws *workspace.Workspace, input string, timeLimit time.Duration) (RunOutcome, error)
}

// Compiler is implemented by adapters of compiled languages
type Compiler interface {
	Compile(ctx context.Context, ws *workspace.Workspace) (CompileOutcome, error)
}

// CompileOutcome defines the result of the compile step
type CompileOutcome struct {
	Succeeded   bool
	Diagnostics string
}

// RunOutcome defines the raw result of running one input
type RunOutcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool

	Status envexec.Status
	Error  string
	Time   time.Duration
}
