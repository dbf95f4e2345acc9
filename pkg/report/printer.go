package report

import (
	"fmt"
	"io"
	"strings"

	"replcheck/pkg/model"

	"github.com/fatih/color"
)

// Printer writes human readable check results.
type Printer struct {
	Out io.Writer
	// ShowOutput prints the captured streams before the verdict.
	ShowOutput bool
	NoColor    bool
}

func (p *Printer) PrintOutcome(o model.Outcome) {
	fmt.Fprintf(p.Out, "Testing %s...\n", o.Description)

	if p.ShowOutput && o.Capture != nil {
		if o.Capture.Merged {
			fmt.Fprintln(p.Out, "TERMINAL output:")
			fmt.Fprintln(p.Out, o.Capture.Stdout)
		} else {
			fmt.Fprintln(p.Out, "STDERR output:")
			fmt.Fprintln(p.Out, o.Capture.Stderr)
			fmt.Fprintln(p.Out, "\nSTDOUT output:")
			fmt.Fprintln(p.Out, o.Capture.Stdout)
		}
	}

	if o.Passed {
		p.color(color.FgGreen).Fprintf(p.Out, "✓ %s works!\n", o.Description)
		return
	}

	p.color(color.FgRed).Fprintf(p.Out, "✗ %s failed!\n", o.Description)
	for _, failure := range o.Failures {
		fmt.Fprintf(p.Out, "   - %s\n", failure)
	}
	if o.Diff != "" {
		fmt.Fprintln(p.Out, "   --- diff ---")
		fmt.Fprint(p.Out, indent(o.Diff, "   "))
		fmt.Fprintln(p.Out, "   --- end diff ---")
	}
}

// PrintSummary is only useful for suites with more than one check.
func (p *Printer) PrintSummary(outcomes []model.Outcome) {
	passed := 0
	for _, o := range outcomes {
		if o.Passed {
			passed++
		}
	}
	c := p.color(color.FgGreen)
	if passed != len(outcomes) {
		c = p.color(color.FgRed)
	}
	c.Fprintf(p.Out, "%d/%d checks passed\n", passed, len(outcomes))
}

func (p *Printer) color(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if p.NoColor {
		c.DisableColor()
	}
	return c
}

func indent(text, prefix string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(line)
	}
	if !strings.HasSuffix(text, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}
