package language

import (
	"context"
	"time"

	"github.com/codeprep/go-runner/workspace"
)

const python3Source = "solution.py"

type python3 struct {
	*executor
	args []string
}

func newPython3(e *executor, tc Python3Toolchain) (*python3, error) {
	args, err := command(tc.Interpreter, tc.Flags, python3Source)
	if err != nil {
		return nil, err
	}
	return &python3{executor: e, args: args}, nil
}

func (p *python3) Prepare(ws *workspace.Workspace, code string) error {
	return ws.WriteFile(python3Source, []byte(code))
}

func (p *python3) Run(ctx context.Context, ws *workspace.Workspace, input string, timeLimit time.Duration) (RunOutcome, error) {
	return p.run(ctx, ws, p.args, input, timeLimit)
}
