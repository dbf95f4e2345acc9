package test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"replcheck/pkg/log"
	"replcheck/pkg/model"
)

type mockResponse struct {
	capture *model.Capture
	err     error
}

// MockInteractor is a shared mock implementation of runner.Interactor for testing.
// It tracks invocations and replays configured captures and errors, keyed by
// the invocation's command line.
type MockInteractor struct {
	mu          sync.Mutex
	Invocations []model.Invocation
	responses   map[string]mockResponse
	// Default is returned for command lines without a configured response.
	Default *model.Capture
}

// NewMockInteractor creates a MockInteractor whose default capture is a
// clean exit with empty output.
func NewMockInteractor() *MockInteractor {
	return &MockInteractor{
		responses: make(map[string]mockResponse),
		Default:   &model.Capture{RunID: "mock-run"},
	}
}

func (m *MockInteractor) Interact(ctx context.Context, inv model.Invocation) (*model.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Invocations = append(m.Invocations, inv)
	if resp, ok := m.responses[inv.CommandLine()]; ok {
		return copyCapture(resp.capture), resp.err
	}
	return copyCapture(m.Default), nil
}

// SetCapture configures the capture returned for a command line.
func (m *MockInteractor) SetCapture(commandLine string, capture *model.Capture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[commandLine] = mockResponse{capture: capture}
}

// SetError configures an error, and an optional partial capture, for a command line.
func (m *MockInteractor) SetError(commandLine string, capture *model.Capture, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[commandLine] = mockResponse{capture: capture, err: err}
}

// Calls returns how many times Interact was called.
func (m *MockInteractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Invocations)
}

func copyCapture(c *model.Capture) *model.Capture {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// MockLogger is a shared mock implementation of Logger for testing.
// It captures logged messages for verification.
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
	Level    slog.Level
}

// NewMockLogger creates a new MockLogger with the specified level.
func NewMockLogger(level slog.Level) *MockLogger {
	return &MockLogger{
		Messages: []string{},
		Level:    level,
	}
}

func (l *MockLogger) Debug(msg string, args ...any) {
	if l.Level <= slog.LevelDebug {
		l.captureMessage("DEBUG", msg, args...)
	}
}

func (l *MockLogger) Info(msg string, args ...any) {
	if l.Level <= slog.LevelInfo {
		l.captureMessage("INFO", msg, args...)
	}
}

func (l *MockLogger) Warn(msg string, args ...any) {
	if l.Level <= slog.LevelWarn {
		l.captureMessage("WARN", msg, args...)
	}
}

func (l *MockLogger) Error(msg string, args ...any) {
	if l.Level <= slog.LevelError {
		l.captureMessage("ERROR", msg, args...)
	}
}

func (l *MockLogger) captureMessage(level, msg string, args ...any) {
	buf := &bytes.Buffer{}
	buf.WriteString(level)
	buf.WriteString(": ")
	buf.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(buf, " %v=%v", args[i], args[i+1])
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, buf.String())
}

// HasMessage checks if any captured message contains the given substring.
func (l *MockLogger) HasMessage(substring string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, msg := range l.Messages {
		if bytes.Contains([]byte(msg), []byte(substring)) {
			return true
		}
	}
	return false
}

// SlogLogger creates a real slog logger for testing (alternative to mock).
func SlogLogger(level slog.Level) log.Logger {
	return log.NewSlogLogger(level, &bytes.Buffer{})
}
