package runtime

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProc(t *testing.T, procs map[int]string) *ExecRuntime {
	t.Helper()
	root := t.TempDir()
	for pid, cmdline := range procs {
		pidDir := filepath.Join(root, strconv.Itoa(pid))
		require.NoError(t, os.MkdirAll(pidDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(pidDir, "cmdline"), []byte(cmdline), 0o644))
	}
	return &ExecRuntime{ProcRoot: root}
}

func TestAvailable(t *testing.T) {
	rt := &ExecRuntime{ProcRoot: t.TempDir()}
	assert.True(t, rt.Available())

	rt = &ExecRuntime{ProcRoot: filepath.Join(t.TempDir(), "missing")}
	assert.False(t, rt.Available())
}

func TestIsRunning(t *testing.T) {
	rt := fakeProc(t, map[int]string{
		101: "/usr/bin/gateway\x00--port\x009000",
		102: "/bin/sh\x00-c\x00helmsman run",
	})
	assert.True(t, rt.IsRunning("gateway"))
	assert.True(t, rt.IsRunning("helmsman run"))
	assert.False(t, rt.IsRunning("absent-process"))
	assert.False(t, rt.IsRunning(""))
}

func TestIsRunningSkipsSelf(t *testing.T) {
	rt := fakeProc(t, map[int]string{os.Getpid(): "helmsman supervise"})
	assert.False(t, rt.IsRunning("helmsman supervise"))
}

func TestStartCapturesOutputOnFastExit(t *testing.T) {
	rt := NewExecRuntime()
	p, err := rt.Start("echo startup failed; exit 3")
	require.NoError(t, err)
	exited, output := p.ExitedWithin(5 * time.Second)
	assert.True(t, exited)
	assert.Contains(t, output, "startup failed")
}

func TestStartLongLivedProcessSurvivesGrace(t *testing.T) {
	rt := NewExecRuntime()
	p, err := rt.Start("sleep 2")
	require.NoError(t, err)
	exited, _ := p.ExitedWithin(100 * time.Millisecond)
	assert.False(t, exited)
	p.cmd.Process.Kill()
}

func TestStartRejectsEmptyCommand(t *testing.T) {
	rt := NewExecRuntime()
	_, err := rt.Start("  ")
	assert.Error(t, err)
}

func TestStopRejectsEmptyName(t *testing.T) {
	rt := NewExecRuntime()
	assert.Error(t, rt.Stop(""))
}
