// Package diag provides the driver's diagnostic logger and --time phase
// instrumentation: a stdlib log.Logger writing to stderr, plus an ad hoc
// Stopwatch that reports elapsed per-phase durations via fmt.Fprintf.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger is the driver's diagnostic sink.
type Logger struct {
	*log.Logger
}

// New creates a Logger writing to os.Stderr with no date/time prefix — the
// driver's own --time output already carries timing information.
func New() *Logger {
	return &Logger{Logger: log.New(os.Stderr, "grdfs: ", 0)}
}

// Stopwatch accumulates named phase timings for the --time flag.
type Stopwatch struct {
	w      io.Writer
	start  time.Time
	phases []phaseTiming
}

type phaseTiming struct {
	name     string
	duration time.Duration
}

// NewStopwatch creates a Stopwatch that reports to w when Report is called.
func NewStopwatch(w io.Writer) *Stopwatch {
	return &Stopwatch{w: w}
}

// Phase times fn, recording its elapsed duration under name.
func (s *Stopwatch) Phase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.phases = append(s.phases, phaseTiming{name: name, duration: time.Since(start)})
	return err
}

// Report prints every recorded phase's elapsed time, one per line.
func (s *Stopwatch) Report() {
	for _, p := range s.phases {
		fmt.Fprintf(s.w, "grdfs: %-12s %v\n", p.name, p.duration)
	}
}
