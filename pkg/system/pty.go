//go:build !windows

package system

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"replcheck/pkg/model"

	"github.com/creack/pty"
	"github.com/google/uuid"
)

// PTYInteractor runs programs attached to a pseudo-terminal, for REPLs
// that refuse to start without one. The terminal merges stdout and stderr,
// and echoes the scripted input back into the capture.
type PTYInteractor struct {
	Rows      uint16
	Cols      uint16
	WaitDelay time.Duration
}

func (r *PTYInteractor) Interact(ctx context.Context, inv model.Invocation) (*model.Capture, error) {
	if err := checkTimeout(inv); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, inv.Timeout)
	defer cancel()

	cmd := exec.Command(inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)

	start := time.Now()
	ptmx, err := pty.StartWithSize(cmd, r.size())
	if err != nil {
		return nil, &model.CheckError{Kind: model.KindLaunchFailure, Op: "start " + inv.CommandLine(), Err: err}
	}
	defer func() { _ = ptmx.Close() }()

	var out bytes.Buffer
	copied := make(chan struct{})
	go func() {
		defer close(copied)
		_, _ = io.Copy(&out, ptmx)
	}()

	// The terminal buffer is small; a REPL that never reads must not block
	// the timeout, so the input is written from its own goroutine.
	go func() {
		_, _ = io.WriteString(ptmx, inv.Input)
	}()

	waited := make(chan error, 1)
	go func() {
		waited <- cmd.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-waited:
	case <-ctx.Done():
		_ = killProcessGroup(cmd.Process)
		waitErr = <-waited
	}

	select {
	case <-copied:
	case <-time.After(waitDelayOrDefault(r.WaitDelay)):
		_ = ptmx.Close()
		<-copied
	}

	capture := &model.Capture{
		RunID:    uuid.NewString(),
		Stdout:   out.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
		Merged:   true,
	}
	return capture, classifyWait(ctx, inv, waitErr)
}

func (r *PTYInteractor) size() *pty.Winsize {
	ws := &pty.Winsize{Rows: r.Rows, Cols: r.Cols}
	if ws.Rows == 0 {
		ws.Rows = 24
	}
	if ws.Cols == 0 {
		ws.Cols = 120
	}
	return ws
}
