// Package judger drives a language adapter across all test cases of a request
package judger

import (
	"context"
	"fmt"
	"time"

	"github.com/codeprep/go-runner/envexec"
	"github.com/codeprep/go-runner/language"
	"github.com/codeprep/go-runner/pkg/diff"
	"github.com/codeprep/go-runner/types"
	"github.com/codeprep/go-runner/workspace"
	"go.uber.org/zap"
)

// CaseTimeLimit is the wall clock ceiling of every test case
const CaseTimeLimit = 5 * time.Second

const compileFailed = "Compile Failed"

// Languages resolves a language identifier to its adapter
type Languages interface {
	Get(string) (language.Adapter, error)
}

// Judger runs requests one at a time, it is safe to share across goroutines
type Judger struct {
	Languages Languages
	Workspace workspace.Manager
	Logger    *zap.Logger

	// TimeLimit overrides CaseTimeLimit when non zero
	TimeLimit time.Duration
}

// Judge compiles (when needed) and runs the code against every test case in order.
// Unsupported language is reported before any workspace is created.
// Failures of a single case are recorded into its result, the error is only
// returned for setup failures or when ctx is done.
func (j *Judger) Judge(ctx context.Context, req *types.Request) (*types.Result, error) {
	logger := j.logger().With(zap.String("requestId", req.RequestID), zap.String("language", req.Language))
	logger.Debug("created", zap.Int("cases", len(req.TestCases)))

	adapter, err := j.Languages.Get(req.Language)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws, err := j.Workspace.Acquire()
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	defer func() {
		j.Workspace.Release(ws)
		logger.Debug("workspace released")
	}()

	if err := adapter.Prepare(ws, req.Code); err != nil {
		return nil, fmt.Errorf("judge: prepare: %w", err)
	}

	if c, ok := adapter.(language.Compiler); ok {
		logger.Debug("compiling")
		co, err := c.Compile(ctx, ws)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("judge: %w", err)
		}
		if !co.Succeeded {
			logger.Debug("compile failed")
			diag := co.Diagnostics
			if diag == "" {
				diag = compileFailed
			}
			return &types.Result{CompileError: diag, Results: []types.CaseResult{}}, nil
		}
	}
	logger.Debug("ready")

	timeLimit := j.TimeLimit
	if timeLimit <= 0 {
		timeLimit = CaseTimeLimit
	}
	results := make([]types.CaseResult, 0, len(req.TestCases))
	for i, tc := range req.TestCases {
		if err := ctx.Err(); err != nil {
			logger.Debug("cancelled", zap.Int("case", i))
			return nil, err
		}
		logger.Debug("running case", zap.Int("case", i))
		r := j.runCase(ctx, logger, adapter, ws, tc, timeLimit)
		if err := ctx.Err(); err != nil {
			logger.Debug("cancelled", zap.Int("case", i))
			return nil, err
		}
		logger.Debug("case done", zap.Int("case", i), zap.Bool("passed", r.Passed), zap.Stringer("status", r.Status))
		results = append(results, r)
	}
	logger.Debug("aggregated", zap.Int("cases", len(results)))
	return &types.Result{Results: results}, nil
}

func (j *Judger) runCase(ctx context.Context, logger *zap.Logger, adapter language.Adapter, ws *workspace.Workspace, tc types.TestCase, timeLimit time.Duration) types.CaseResult {
	res := types.CaseResult{
		Input:    tc.Input,
		Expected: diff.Normalize(tc.ExpectedOutput),
	}

	out, err := adapter.Run(ctx, ws, tc.Input, timeLimit)
	if err != nil {
		logger.Warn("case failed to run", zap.Error(err))
		res.Status = envexec.StatusInternalError
		res.Error = err.Error()
		return res
	}
	res.Status = out.Status
	res.Time = out.Time

	if out.TimedOut {
		res.Status = envexec.StatusTimeLimitExceeded
		res.Actual = types.TimeLimitExceededOutput
		res.Error = types.TimeoutError
		return res
	}

	res.Actual = diff.Normalize(out.Stdout)
	if err := diff.Compare(tc.ExpectedOutput, out.Stdout); err != nil {
		logger.Debug("output differs", zap.Error(err))
		if out.Status == envexec.StatusAccepted {
			res.Status = envexec.StatusWrongAnswer
		}
	} else {
		res.Passed = true
	}
	res.Error = caseError(out)
	return res
}

// caseError prefers the program stderr, then the executor message for abnormal exits
func caseError(out language.RunOutcome) string {
	if out.Stderr != "" {
		return out.Stderr
	}
	if out.Status == envexec.StatusAccepted {
		return ""
	}
	if out.Error != "" {
		return out.Error
	}
	return out.Status.String()
}

func (j *Judger) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}
