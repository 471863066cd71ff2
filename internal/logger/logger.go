package logger

import (
	"io"
	"os"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// out is where every level writes. It defaults to stdout and is swapped by SetOutput.
var out io.Writer = os.Stdout

// debugEnabled is toggled by Init from the --debug flag.
var debugEnabled bool

// Colorized printers for each log level. They behave like fmt.Fprintf
// with the text colored for the level.
var (
	infoPrinter  = color.New(color.FgGreen).FprintfFunc()
	warnPrinter  = color.New(color.FgHiMagenta).FprintfFunc()
	errorPrinter = color.New(color.FgRed).FprintfFunc()
	debugPrinter = color.New(color.FgCyan).FprintfFunc()
)

// Info logs informational messages in green.
func Info(format string, a ...any) { infoPrinter(out, format, a...) }

// Warn logs warning messages in bright magenta.
func Warn(format string, a ...any) { warnPrinter(out, format, a...) }

// Error logs error messages in red.
func Error(format string, a ...any) { errorPrinter(out, format, a...) }

// Debug logs debug messages in cyan if enabled, otherwise it is a no-op.
func Debug(format string, a ...any) {
	if debugEnabled {
		debugPrinter(out, format, a...)
	}
}

// Init enables or disables debug logging.
func Init(enableDebug bool) {
	debugEnabled = enableDebug
}

// SetOutput redirects all levels to w and returns the previous writer,
// so callers (mostly tests) can restore it.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Writer returns the current output writer. Command output that should be
// interleaved with log lines (verbose pip runs) is streamed here.
func Writer() io.Writer {
	return out
}
