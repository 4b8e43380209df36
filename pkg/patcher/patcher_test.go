package patcher_test

import (
	"context"
	stderrors "errors"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/patcher"
)

func shellPatcher(t *testing.T, script string, cancelCode int) *patcher.ExecPatcher {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	// extra flags end up as positional parameters of the script
	return patcher.NewExecPatcher("sh", []string{"-c", script, "patcher"}, cancelCode)
}

func testInvocation() patcher.Invocation {
	return patcher.Invocation{
		ExtensionRoot:  "/ext/modules/harmony-patcher/dist",
		TargetAssembly: "/stage/Game_Data/Managed/Assembly-CSharp.dll",
		EntryPoint:     "Game.Main::Start",
		ModsPath:       "/games/Game/Mods",
		Context:        "skyrim",
		RuntimeDir:     "/games/Game/Game_Data/Managed",
	}
}

func TestArgs(t *testing.T) {
	p := patcher.NewExecPatcher("harmony-patcher", []string{"patch"}, 130)

	t.Run("required_flags", func(t *testing.T) {
		inv := testInvocation()
		assert.Equal(t, []string{
			"patch",
			"--modules", inv.ExtensionRoot,
			"--target", inv.TargetAssembly,
			"--entry-point", inv.EntryPoint,
			"--mods", inv.ModsPath,
			"--context", "skyrim",
			"--runtime-dir", inv.RuntimeDir,
		}, p.Args(inv))
	})

	t.Run("boolean_flags", func(t *testing.T) {
		inv := testInvocation()
		inv.Context = ""
		inv.RuntimeDir = ""
		inv.InjectRuntime = true
		inv.DryRun = true
		args := p.Args(inv)
		assert.Contains(t, args, "--inject-runtime")
		assert.Contains(t, args, "--dry-run")
		assert.NotContains(t, args, "--context")
		assert.NotContains(t, args, "--runtime-dir")
	})
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		cancelCode int
		check      func(t *testing.T, err error)
	}{
		{
			name:   "success",
			script: `echo "patched $4"`,
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:       "cancel_exit_code_maps_to_user_canceled",
			script:     "exit 130",
			cancelCode: 130,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, patcher.ErrUserCanceled)
			},
		},
		{
			name:       "other_exit_code_is_failure",
			script:     "echo broken >&2; exit 3",
			cancelCode: 130,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.False(t, stderrors.Is(err, patcher.ErrUserCanceled))
				assert.True(t, errors.IsErrorCode(err, errors.ErrPatcherExec))
				assert.Equal(t, 3, errors.GetErrorDetails(err)["exitCode"])
			},
		},
		{
			name:       "cancel_mapping_disabled",
			script:     "exit 130",
			cancelCode: 0,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.False(t, stderrors.Is(err, patcher.ErrUserCanceled))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := shellPatcher(t, tt.script, tt.cancelCode)
			tt.check(t, p.Run(context.Background(), testInvocation()))
		})
	}
}

func TestRun_MissingCommand(t *testing.T) {
	p := patcher.NewExecPatcher("harmony-patcher-does-not-exist", nil, 130)
	err := p.Run(context.Background(), testInvocation())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatcherExec))
}

func TestRun_ContextCanceled(t *testing.T) {
	p := shellPatcher(t, "sleep 5", 130)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, testInvocation())
	require.Error(t, err)
}

func TestFunc(t *testing.T) {
	var got patcher.Invocation
	var p patcher.Patcher = patcher.Func(func(_ context.Context, inv patcher.Invocation) error {
		got = inv
		return patcher.ErrUserCanceled
	})

	err := p.Run(context.Background(), testInvocation())
	assert.ErrorIs(t, err, patcher.ErrUserCanceled)
	assert.Equal(t, testInvocation(), got)
}

func TestRun_LongOutputLine(t *testing.T) {
	// more than one scanner buffer without a newline
	p := shellPatcher(t, "head -c 400000 /dev/zero | tr '\\0' a", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	assert.NoError(t, p.Run(ctx, testInvocation()))
}

func TestRun_BackgroundChildHoldsOutput(t *testing.T) {
	p := shellPatcher(t, "sleep 30 & echo started", 0).WithWaitDelay(200 * time.Millisecond)

	start := time.Now()
	err := p.Run(context.Background(), testInvocation())

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRun_DeadlineWithBackgroundChild(t *testing.T) {
	p := shellPatcher(t, "sleep 30 | cat", 0).WithWaitDelay(200 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Run(ctx, testInvocation())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
