package shell

import (
	"io"
	"strings"
)

// Fake is a scripted Runner for tests. Every invocation is recorded as a
// joined command line; Fail maps a command-line prefix to the error it
// should return.
type Fake struct {
	Calls   []string
	Outputs map[string]string
	Fail    map[string]error
}

// Output records the call and returns the scripted output and error.
func (f *Fake) Output(name string, args ...string) ([]byte, error) {
	line := f.record(name, args...)
	return []byte(f.lookupOutput(line)), f.lookupErr(line)
}

// Stream records the call and writes the scripted output to w.
func (f *Fake) Stream(w io.Writer, name string, args ...string) error {
	line := f.record(name, args...)
	if out := f.lookupOutput(line); out != "" {
		_, _ = io.WriteString(w, out)
	}
	return f.lookupErr(line)
}

func (f *Fake) record(name string, args ...string) string {
	line := Join(name, args...)
	f.Calls = append(f.Calls, line)
	return line
}

func (f *Fake) lookupOutput(line string) string {
	for prefix, out := range f.Outputs {
		if strings.HasPrefix(line, prefix) {
			return out
		}
	}
	return ""
}

func (f *Fake) lookupErr(line string) error {
	for prefix, err := range f.Fail {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}
