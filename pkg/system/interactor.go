package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"replcheck/pkg/model"
	"replcheck/pkg/runner"

	"github.com/google/uuid"
)

// Interactor defines an interface for driving a program.
// Re-exported from pkg/runner to maintain backward compatibility.
type Interactor = runner.Interactor

const defaultWaitDelay = 2 * time.Second

// LiveInteractor runs programs on the live system with stdin, stdout and
// stderr connected to pipes.
type LiveInteractor struct {
	// WaitDelay bounds how long Interact keeps waiting for the output pipes
	// once the process is gone. Zero means two seconds.
	WaitDelay time.Duration
}

// Interact writes the whole scripted input at once, closes stdin and waits
// until the program exits or the invocation timeout elapses. On timeout the
// process group is killed and the partial capture is returned together with
// a timeout error.
func (r *LiveInteractor) Interact(ctx context.Context, inv model.Invocation) (*model.Capture, error) {
	if err := checkTimeout(inv); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, inv.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdin = strings.NewReader(inv.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd.Process)
	}
	cmd.WaitDelay = waitDelayOrDefault(r.WaitDelay)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &model.CheckError{Kind: model.KindLaunchFailure, Op: "start " + inv.CommandLine(), Err: err}
	}
	waitErr := cmd.Wait()

	capture := &model.Capture{
		RunID:    uuid.NewString(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	return capture, classifyWait(ctx, inv, waitErr)
}

// Dispatcher routes each invocation to the interactor of its transport.
type Dispatcher struct {
	interactors map[model.Transport]Interactor
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{interactors: make(map[model.Transport]Interactor, len(model.ValidTransports))}
	for transport := range model.ValidTransports {
		i, err := NewInteractor(transport)
		if err != nil {
			panic(err)
		}
		d.interactors[transport] = i
	}
	return d
}

// NewInteractor returns the live interactor for a single transport.
func NewInteractor(transport model.Transport) (Interactor, error) {
	switch transport {
	case model.TransportPipe, "":
		return &LiveInteractor{}, nil
	case model.TransportPTY:
		return &PTYInteractor{}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func (d *Dispatcher) Interact(ctx context.Context, inv model.Invocation) (*model.Capture, error) {
	transport := inv.Transport
	if transport == "" {
		transport = model.TransportPipe
	}
	i, ok := d.interactors[transport]
	if !ok {
		return nil, &model.CheckError{Kind: model.KindUnexpected, Op: "dispatch", Err: fmt.Errorf("unknown transport %q", transport)}
	}
	return i.Interact(ctx, inv)
}

func checkTimeout(inv model.Invocation) error {
	if inv.Timeout > 0 {
		return nil
	}
	return &model.CheckError{
		Kind: model.KindUnexpected,
		Op:   "interact " + inv.CommandLine(),
		Err:  fmt.Errorf("timeout must be positive, got %s", inv.Timeout),
	}
}

// classifyWait turns the error returned by Wait into the check error
// taxonomy. A non-zero exit status is not an error; it is part of the capture.
func classifyWait(ctx context.Context, inv model.Invocation, waitErr error) error {
	if waitErr == nil {
		return nil
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &model.CheckError{
			Kind: model.KindTimeoutExceeded,
			Op:   inv.CommandLine(),
			Err:  fmt.Errorf("process did not exit within %s", inv.Timeout),
		}
	case ctx.Err() != nil:
		return &model.CheckError{Kind: model.KindUnexpected, Op: inv.CommandLine(), Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return nil
	}
	// The program exited but a descendant kept the output pipes open.
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		return nil
	}
	return &model.CheckError{Kind: model.KindUnexpected, Op: "wait " + inv.CommandLine(), Err: waitErr}
}

func waitDelayOrDefault(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return defaultWaitDelay
}
