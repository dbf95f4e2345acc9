package model

import "time"

type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

var ValidStreams = map[Stream]bool{
	StreamStdout: true,
	StreamStderr: true,
}

// Capture holds everything a finished (or killed) invocation emitted.
type Capture struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Stdout   string        `json:"stdout" yaml:"stdout"`
	Stderr   string        `json:"stderr" yaml:"stderr"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	// Merged is set when the transport cannot tell the two output streams
	// apart. The combined output is then stored in Stdout.
	Merged bool `json:"merged,omitempty" yaml:"merged,omitempty"`
}

// Text returns the captured text of the requested stream.
func (c *Capture) Text(s Stream) string {
	if c == nil {
		return ""
	}
	if c.Merged {
		return c.Stdout
	}
	if s == StreamStderr {
		return c.Stderr
	}
	return c.Stdout
}
