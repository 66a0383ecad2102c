package types

import (
	"time"

	"github.com/codeprep/go-runner/envexec"
)

// TimeLimitExceededOutput replaces the actual output of a timed out case
const TimeLimitExceededOutput = "T_LIMIT_EXCEEDED"

// TimeoutError is the error of a timed out case
const TimeoutError = "Timeout"

// CaseResult contains the verdict for single test case
type CaseResult struct {
	Input    string
	Expected string // normalized
	Actual   string // normalized
	Passed   bool
	Error    string // runtime diagnostics, empty if none

	// detail stats
	Status envexec.Status
	Time   time.Duration
}

// Result is either a compile error with no results, or one result per test case in order
type Result struct {
	CompileError string
	Results      []CaseResult
}

// CompileFailed reports whether the request stopped at the compile step
func (r *Result) CompileFailed() bool {
	return r.CompileError != ""
}
