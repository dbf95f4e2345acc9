// Package runner defines the interface for driving an external program.
// This package exists to break import cycles between testing and system packages.
package runner

import (
	"context"

	"replcheck/pkg/model"
)

// Interactor feeds an invocation's scripted input to a program and
// captures what it emits. This allows for mocking in tests.
type Interactor interface {
	Interact(ctx context.Context, inv model.Invocation) (*model.Capture, error)
}
