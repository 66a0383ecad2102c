package language

import (
	"context"
	"time"

	"github.com/codeprep/go-runner/workspace"
)

const (
	javaSource = JavaMainClass + ".java"
	javaClass  = JavaMainClass + ".class"
)

type java struct {
	*executor
	compileArgs []string
	runtime     string
	runFlags    string
}

func newJava(e *executor, tc JavaToolchain) (*java, error) {
	compileArgs, err := command(tc.Compiler, tc.CompileFlags, javaSource)
	if err != nil {
		return nil, err
	}
	// validate the run flags once, the class path depends on the workspace
	if _, err := command(tc.Runtime, tc.RunFlags); err != nil {
		return nil, err
	}
	return &java{
		executor:    e,
		compileArgs: compileArgs,
		runtime:     tc.Runtime,
		runFlags:    tc.RunFlags,
	}, nil
}

func (j *java) Prepare(ws *workspace.Workspace, code string) error {
	return ws.WriteFile(javaSource, []byte(code))
}

func (j *java) Compile(ctx context.Context, ws *workspace.Workspace) (CompileOutcome, error) {
	return j.compile(ctx, ws, j.compileArgs, javaClass)
}

func (j *java) Run(ctx context.Context, ws *workspace.Workspace, input string, timeLimit time.Duration) (RunOutcome, error) {
	args, err := command(j.runtime, j.runFlags, "-cp", ws.Dir(), JavaMainClass)
	if err != nil {
		return RunOutcome{}, err
	}
	return j.run(ctx, ws, args, input, timeLimit)
}
