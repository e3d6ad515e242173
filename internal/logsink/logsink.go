// Package logsink provides the two writers the simulator's stages and
// driver log through, mirroring the original simulator's sout/serr split:
// per-cycle retirement lines go to Out, fatal diagnostics go to Err
// prefixed with "ERROR: " so callers can match on it.
package logsink

import (
	"fmt"
	"io"
)

// Sink bundles the simulator's two output streams.
type Sink struct {
	Out io.Writer
	Err io.Writer
}

// New wraps an explicit out/err writer pair.
func New(out, err io.Writer) Sink {
	return Sink{Out: out, Err: err}
}

// Logf writes one retirement-log line to Out, per spec.md's
// "<stage>  cycle <dec>: <payload>" format. Callers supply the already
// formatted line.
func (s Sink) Logf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// Errorf writes a fatal diagnostic to Err, prefixed "ERROR: ".
func (s Sink) Errorf(format string, args ...any) {
	fmt.Fprintf(s.Err, "ERROR: "+format+"\n", args...)
}
