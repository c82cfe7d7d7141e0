// Package log provides the user-facing status lines printed by kplay.
// Output is colorized when the stream it goes to is a terminal.
//
// Debug tracing goes through logrus and is only shown with --verbose.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// ANSI escape codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	cyan   = "\033[36m"
	green  = "\033[32m"
	yellow = "\033[33m"
	red    = "\033[31m"
)

// Output streams. Tests may replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// colorize wraps msg in an ANSI color sequence only when w is a TTY.
func colorize(w io.Writer, color, msg string) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return color + bold + msg + reset
	}
	return msg
}

func Info(msg string)  { fmt.Fprintf(Stdout, "%s %s\n", colorize(Stdout, cyan, "[+]"), msg) }
func Ok(msg string)    { fmt.Fprintf(Stdout, "%s %s\n", colorize(Stdout, green, "[✓]"), msg) }
func Skip(msg string)  { fmt.Fprintf(Stdout, "%s %s\n", colorize(Stdout, yellow, "[=]"), msg) }
func Error(msg string) { fmt.Fprintf(Stderr, "%s %s\n", colorize(Stderr, red, "[!]"), msg) }

// Highlight returns msg in yellow when stdout is a TTY.
func Highlight(msg string) string { return colorize(Stdout, yellow, msg) }

// Setup configures debug logging. With verbose set, logrus debug messages
// are written to stderr; otherwise only warnings and errors are.
func Setup(verbose bool) {
	logrus.SetOutput(Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.WarnLevel)
}
