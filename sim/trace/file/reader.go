package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace"
)

// ReadStats counts what the last Jobs call saw.
type ReadStats struct {
	TraceLines int // trace lines scanned, including those outside the window
	Produced   int // jobs returned
	Skipped    int // in-window trace lines the format could not translate
}

// Reader produces the jobs of one trace file, limited to a window.
// The file is opened and closed within every Jobs call.
//
// Thread-safety: NOT thread-safe.
type Reader[J any] struct {
	label   string
	path    string
	window  trace.Window
	format  Format[J]
	factory sim.Factory[J]

	metadata Metadata
	stats    ReadStats
}

// NewReader creates a reader for the file at path. label names the format
// in diagnostics. Fails if the factory or format is missing or the window
// is invalid; the file itself is not touched until Jobs is called.
func NewReader[J any](label, path string, w trace.Window, f Format[J], factory sim.Factory[J]) (*Reader[J], error) {
	if err := trace.CheckFactory(factory); err != nil {
		return nil, fmt.Errorf("%s reader: %w", label, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%s reader: format is nil", label)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%s reader: %w", label, err)
	}
	return &Reader[J]{
		label:   label,
		path:    path,
		window:  w,
		format:  f,
		factory: factory,
	}, nil
}

// Jobs reads the file top to bottom and returns the jobs of the trace lines
// inside the window, in file order. Only trace lines advance the window
// index; every other line goes to the format's metadata collector.
// Reading stops at the window's upper bound unless reading further is allowed.
func (r *Reader[J]) Jobs() ([]J, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s trace: %w", r.label, err)
	}
	defer func() { _ = file.Close() }()

	md := Metadata{}
	stats := ReadStats{}
	var jobs []J

	br := bufio.NewReader(file)
	lineNo := 0
	for {
		line, readErr := readLine(br)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading %s trace %s: %w", r.label, r.path, readErr)
		}
		lineNo++
		if !r.format.IsTraceLine(line) {
			r.format.CollectMetadata(line, &md)
			md.MetadataLines++
			continue
		}

		idx := stats.TraceLines
		if r.window.Done(idx) {
			break
		}
		stats.TraceLines++
		if !r.window.Contains(idx) {
			continue
		}

		job, ok, err := r.format.JobFromLine(line, r.factory)
		if err != nil {
			return nil, &trace.GenerationError{Producer: r.label, Line: lineNo, Err: err}
		}
		if !ok {
			logrus.Debugf("%s: skipping untranslatable trace line %d: %q", r.label, lineNo, line)
			stats.Skipped++
			continue
		}
		jobs = append(jobs, job)
	}

	stats.Produced = len(jobs)
	r.metadata = md
	r.stats = stats
	logrus.Infof("%s: read %d jobs from %s (window %s, %d trace lines scanned, %d skipped)",
		r.label, stats.Produced, r.path, r.window, stats.TraceLines, stats.Skipped)
	return jobs, nil
}

// Metadata returns the metadata collected by the last Jobs call.
func (r *Reader[J]) Metadata() Metadata {
	return r.metadata
}

// MaxProcCount returns the processor ceiling declared by the file, or 0.
func (r *Reader[J]) MaxProcCount() int64 {
	return r.metadata.MaxProcCount
}

// Stats returns the counters of the last Jobs call.
func (r *Reader[J]) Stats() ReadStats {
	return r.stats
}

func (r *Reader[J]) Label() string { return r.label }

func (r *Reader[J]) Path() string { return r.path }

func (r *Reader[J]) Window() trace.Window { return r.window }

// readLine returns the next line of br without its line terminator ("\n" or
// "\r\n"). Lines have no length limit. A final line without a terminator is
// returned as is; io.EOF is returned only once nothing is left.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
