package compiler

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hipify-batch/internal/compdb"
	"github.com/Norgate-AV/hipify-batch/internal/config"
)

// mockCommander implements Commander interface for testing
type mockCommander struct {
	runFunc func() error
}

func (m *mockCommander) Run() error {
	return m.runFunc()
}

func testConfig() *config.Config {
	return &config.Config{
		WorkDir:     cwd,
		ToolPath:    "/opt/HIPIFY/bin/hipify-clang",
		CudaPath:    "/usr/local/cuda",
		RewriteMode: config.RewriteLiteral,
	}
}

func TestCommandBuilder_Build(t *testing.T) {
	tests := []struct {
		name     string
		task     compdb.Task
		wantArgs []string
	}{
		{
			name: "nvcc compile of a single kernel",
			task: compdb.Task{
				Command: "/usr/local/cuda/bin/nvcc -c " + cwd + "/foo.cu -o foo.cu.o -gencode arch=compute_70,code=sm_70 -isystem=/opt/inc",
				File:    cwd + "/foo.cu",
			},
			wantArgs: []string{
				"--cuda-path=/usr/local/cuda",
				"--skip-excluded-preprocessor-conditional-blocks",
				cwd + "/foo.cu",
				"--",
				"-I/opt/inc",
			},
		},
		{
			name: "full cmake command",
			task: compdb.Task{Command: cmakeCommand, File: kernel},
			wantArgs: append([]string{
				"--cuda-path=/usr/local/cuda",
				"--skip-excluded-preprocessor-conditional-blocks",
				kernel,
				"--",
			}, cmakeFlags...),
		},
		{
			name: "nothing left after rewrite",
			task: compdb.Task{Command: "/usr/local/cuda/bin/nvcc -c k.cu", File: "k.cu"},
			wantArgs: []string{
				"--cuda-path=/usr/local/cuda",
				"--skip-excluded-preprocessor-conditional-blocks",
				"k.cu",
				"--",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewCommandBuilder(testConfig())
			sc := cb.Build(tt.task)

			assert.Equal(t, "/opt/HIPIFY/bin/hipify-clang", sc.Path)
			assert.Equal(t, tt.wantArgs, sc.Args)
		})
	}
}

func TestShellCommand_String(t *testing.T) {
	sc := &ShellCommand{Path: "/bin/hipify-clang", Args: []string{"--cuda-path=/usr/local/cuda", "a.cu", "--", "-DX"}}

	assert.Equal(t, "/bin/hipify-clang --cuda-path=/usr/local/cuda a.cu -- -DX", sc.String())
	assert.Equal(t, []string{"/bin/hipify-clang", "--cuda-path=/usr/local/cuda", "a.cu", "--", "-DX"}, sc.Argv())
}

func TestGetTranslateCommand_DoesNotShareToolFlags(t *testing.T) {
	cfg := testConfig()
	rw := NewRewriter(cfg)

	a := GetTranslateCommand(cfg, rw, compdb.Task{Command: "-DA", File: "a.cu"})
	b := GetTranslateCommand(cfg, rw, compdb.Task{Command: "-DB", File: "b.cu"})

	assert.Equal(t, "a.cu", a.Args[2])
	assert.Equal(t, "b.cu", b.Args[2])
	assert.Equal(t, []string{"-DA"}, a.Args[4:])
}

func TestCommandBuilder_ExecuteCommand_Success(t *testing.T) {
	cb := NewCommandBuilder(testConfig())

	cb.execCommand = func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) Commander {
		return &mockCommander{
			runFunc: func() error {
				fmt.Fprint(stdout, "converted")
				return nil
			},
		}
	}

	res, err := cb.ExecuteCommand(context.Background(), &ShellCommand{Path: "hipify-clang"})
	require.NoError(t, err)
	assert.Equal(t, "converted", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.False(t, res.Failed())
}

func TestCommandBuilder_ExecuteCommand_StderrIsFailure(t *testing.T) {
	cb := NewCommandBuilder(testConfig())

	var gotName string
	var gotArgs []string
	cb.execCommand = func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) Commander {
		gotName, gotArgs = name, args
		return &mockCommander{
			runFunc: func() error {
				fmt.Fprint(stderr, "error: unknown type name '__nv_bfloat16'")
				return nil
			},
		}
	}

	sc := &ShellCommand{Path: "hipify-clang", Args: []string{"a.cu", "--"}}
	res, err := cb.ExecuteCommand(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, "error: unknown type name '__nv_bfloat16'", res.Stderr)
	assert.Equal(t, "hipify-clang", gotName)
	assert.Equal(t, []string{"a.cu", "--"}, gotArgs)
}

func TestCommandBuilder_ExecuteCommand_ExitCodeNotAnError(t *testing.T) {
	cb := NewCommandBuilder(testConfig())

	sc := &ShellCommand{Path: "/bin/sh", Args: []string{"-c", "echo out; echo bad >&2; exit 3"}}
	res, err := cb.ExecuteCommand(context.Background(), sc)

	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "bad\n", res.Stderr)
	assert.True(t, res.Failed())
}

func TestCommandBuilder_ExecuteCommand_NonZeroExitWithoutStderr(t *testing.T) {
	cb := NewCommandBuilder(testConfig())

	res, err := cb.ExecuteCommand(context.Background(), &ShellCommand{Path: "/bin/sh", Args: []string{"-c", "exit 1"}})

	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.False(t, res.Failed(), "only stderr output marks a translation as failed")
}

func TestCommandBuilder_ExecuteCommand_StartError(t *testing.T) {
	cb := NewCommandBuilder(testConfig())

	missing := filepath.Join(t.TempDir(), "hipify-clang")
	_, err := cb.ExecuteCommand(context.Background(), &ShellCommand{Path: missing})
	assert.Error(t, err)
}

func TestCommandBuilder_ExecuteCommand_NonExitError(t *testing.T) {
	cb := NewCommandBuilder(testConfig())

	cb.execCommand = func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) Commander {
		return &mockCommander{
			runFunc: func() error {
				return fmt.Errorf("command not found")
			},
		}
	}

	_, err := cb.ExecuteCommand(context.Background(), &ShellCommand{Path: "nonexistent"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")
}

func TestNewCommandBuilder(t *testing.T) {
	cb := NewCommandBuilder(testConfig())
	assert.NotNil(t, cb)
	assert.NotNil(t, cb.execCommand)
	assert.NotNil(t, cb.rewriter)
}
