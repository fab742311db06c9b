package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/echolabs/echokernel/tool"
)

// Executor runs a snippet of code and returns its standard output and
// standard error. Implementations decide the language and the sandboxing
// strategy.
type Executor interface {
	Execute(ctx context.Context, code string) (stdout, stderr string, err error)
}

// SubprocessExecutorOptions configure the subprocess executor.
type SubprocessExecutorOptions struct {
	// Interpreter is the binary used to run scripts. Defaults to
	// "python3".
	Interpreter string

	// Timeout bounds a single execution. Defaults to 30 seconds.
	Timeout time.Duration
}

// SubprocessExecutor runs code as a child process in a throwaway working
// directory with a hard timeout. It offers process-level isolation only;
// do not feed it untrusted code outside a sandboxed host.
type SubprocessExecutor struct {
	interpreter string
	timeout     time.Duration
}

var _ Executor = (*SubprocessExecutor)(nil)

// NewSubprocessExecutor creates a subprocess-based executor.
func NewSubprocessExecutor(optFns ...func(o *SubprocessExecutorOptions)) *SubprocessExecutor {
	opts := SubprocessExecutorOptions{
		Interpreter: "python3",
		Timeout:     30 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SubprocessExecutor{
		interpreter: opts.Interpreter,
		timeout:     opts.Timeout,
	}
}

// Execute writes the code to a script in a fresh temporary directory and
// runs it with the configured interpreter.
func (e *SubprocessExecutor) Execute(ctx context.Context, code string) (string, string, error) {
	dir, err := os.MkdirTemp("", "code_sandbox_")
	if err != nil {
		return "", "", fmt.Errorf("create sandbox dir: %w", err)
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, "script.py")
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return "", "", fmt.Errorf("write script: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.interpreter, script)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return stdout.String(), "", fmt.Errorf("execution timed out after %s", e.timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The script itself failed; its stderr is the answer.
			return stdout.String(), stderr.String(), nil
		}

		return "", "", fmt.Errorf("run script: %w", err)
	}

	return stdout.String(), stderr.String(), nil
}

type codeInterpreterParams struct {
	Code string `json:"code" description:"The Python code to execute."`
}

// NewCodeInterpreterTool returns a tool that executes code through the
// given executor and reports stdout/stderr as JSON.
func NewCodeInterpreterTool(executor Executor) (*tool.Tool, error) {
	handler := func(ctx context.Context, args map[string]any) (any, error) {
		code, _ := args["code"].(string)

		stdout, stderr, err := executor.Execute(ctx, code)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(map[string]string{
			"stdout": stdout,
			"stderr": stderr,
		})
		if err != nil {
			return nil, err
		}

		return string(payload), nil
	}

	return tool.FromStruct(
		"execute_python_code",
		"Executes Python code in a sandboxed environment.",
		codeInterpreterParams{},
		handler,
	)
}
