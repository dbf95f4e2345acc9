//go:build windows

package system

import (
	"context"
	"errors"
	"time"

	"replcheck/pkg/model"
)

type PTYInteractor struct {
	Rows      uint16
	Cols      uint16
	WaitDelay time.Duration
}

func (r *PTYInteractor) Interact(ctx context.Context, inv model.Invocation) (*model.Capture, error) {
	return nil, &model.CheckError{
		Kind: model.KindLaunchFailure,
		Op:   "start " + inv.CommandLine(),
		Err:  errors.New("pty transport is not supported on windows"),
	}
}
