package language

import (
	"context"
	"path/filepath"
	"time"

	"github.com/codeprep/go-runner/workspace"
)

const (
	cppSource = "solution.cpp"
	cppBinary = "solution"
)

type cpp struct {
	*executor
	compileArgs []string
}

func newCPP(e *executor, tc CPPToolchain) (*cpp, error) {
	args, err := command(tc.Compiler, tc.Flags, cppSource, "-o", cppBinary)
	if err != nil {
		return nil, err
	}
	return &cpp{executor: e, compileArgs: args}, nil
}

func (c *cpp) Prepare(ws *workspace.Workspace, code string) error {
	return ws.WriteFile(cppSource, []byte(code))
}

func (c *cpp) Compile(ctx context.Context, ws *workspace.Workspace) (CompileOutcome, error) {
	return c.compile(ctx, ws, c.compileArgs, cppBinary)
}

func (c *cpp) Run(ctx context.Context, ws *workspace.Workspace, input string, timeLimit time.Duration) (RunOutcome, error) {
	return c.run(ctx, ws, []string{filepath.Join(ws.Dir(), cppBinary)}, input, timeLimit)
}
