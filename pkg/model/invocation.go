package model

import (
	"strings"
	"time"
)

type Transport string

const (
	// TransportPipe connects stdin, stdout and stderr to separate pipes.
	TransportPipe Transport = "pipe"
	// TransportPTY attaches the program to a pseudo-terminal. Both output
	// streams arrive merged.
	TransportPTY Transport = "pty"
)

var ValidTransports = map[Transport]bool{
	TransportPipe: true,
	TransportPTY:  true,
}

// Invocation describes a single scripted run of an external program.
// It is built once per check and never modified afterwards.
type Invocation struct {
	Command   string
	Args      []string
	Dir       string
	Env       []string
	Input     string
	Timeout   time.Duration
	Transport Transport
}

// CommandLine renders the command and its arguments for logs and reports.
func (i Invocation) CommandLine() string {
	return strings.Join(append([]string{i.Command}, i.Args...), " ")
}

// Payload joins the scripted input lines, terminating each with a newline.
func Payload(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
