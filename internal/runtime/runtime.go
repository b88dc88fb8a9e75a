package runtime

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"helmsman/internal/logger"
)

// ExecRuntime starts and inspects external processes on the host. Process
// detection scans /proc rather than an in-memory flag so the answer survives
// supervisor restarts.
type ExecRuntime struct {
	ProcRoot string
}

func NewExecRuntime() *ExecRuntime {
	return &ExecRuntime{ProcRoot: "/proc"}
}

// Available reports whether the process runtime is reachable. This is an
// environment precondition, not a transient fault.
func (r *ExecRuntime) Available() bool {
	info, err := os.Stat(r.ProcRoot)
	return err == nil && info.IsDir()
}

// IsRunning scans process command lines for name. Matching is by substring so
// both bare binaries and wrapped invocations are found.
func (r *ExecRuntime) IsRunning(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	entries, err := os.ReadDir(r.ProcRoot)
	if err != nil {
		return false
	}
	self := os.Getpid()
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid == self {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(r.ProcRoot, e.Name(), "cmdline"))
		if err != nil || len(raw) == 0 {
			continue
		}
		cmdline := strings.ReplaceAll(string(raw), "\x00", " ")
		if strings.Contains(cmdline, name) {
			return true
		}
	}
	return false
}

// Start launches command through the shell and returns a handle for liveness
// checks. Output is captured for fault reporting.
func (r *ExecRuntime) Start(command string) (*Process, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, fmt.Errorf("start command cannot be empty")
	}
	cmd := exec.Command("/bin/sh", "-c", command)
	p := &Process{done: make(chan struct{})}
	cmd.Stdout = &p.output
	cmd.Stderr = &p.output
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %q failed: %w", command, err)
	}
	p.cmd = cmd
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	logger.Infof("started process pid=%d command=%q", cmd.Process.Pid, command)
	return p, nil
}

// Stop terminates every process whose command line matches name.
func (r *ExecRuntime) Stop(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("process name cannot be empty")
	}
	out, err := exec.Command("pkill", "-f", name).CombinedOutput()
	if err != nil {
		// pkill exits 1 when nothing matched; that is not a failure here.
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
			return nil
		}
		return fmt.Errorf("stopping %q failed: %w (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Process is a handle on a launched external process.
type Process struct {
	cmd    *exec.Cmd
	err    error
	done   chan struct{}
	output lockedBuffer
}

// ExitedWithin waits up to grace and reports whether the process exited in
// that window, along with its captured output.
func (p *Process) ExitedWithin(grace time.Duration) (bool, string) {
	select {
	case <-p.done:
		return true, p.output.String()
	case <-time.After(grace):
		return false, ""
	}
}

// lockedBuffer serializes writes from the process's stdout and stderr pipes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
