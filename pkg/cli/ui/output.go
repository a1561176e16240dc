// Package ui renders command output for the insightiq CLI.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jinzhu/inflection"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// Printer writes data to Out and status messages to Err, so piped output
// stays machine readable.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut}
}

func (p *Printer) Success(format string, args ...any) {
	successColor.Fprintf(p.Err, "✓ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	errorColor.Fprintf(p.Err, "✗ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Warning(format string, args ...any) {
	warningColor.Fprintf(p.Err, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...any) {
	infoColor.Fprintf(p.Err, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Bold prints a heading to Out.
func (p *Printer) Bold(format string, args ...any) {
	boldColor.Fprintln(p.Out, fmt.Sprintf(format, args...))
}

// Println writes a plain line to Out.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.Out, a...)
}

func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

// Count formats n with noun pluralized to match, e.g. "1 table", "3 data sources".
func Count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
