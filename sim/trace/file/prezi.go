package file

import (
	"math"
	"strconv"
	"strings"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace"
)

// PreziLabel is the diagnostic label of the Prezi format.
const PreziLabel = "Prezi format"

// Prezi job defaults for fields the format does not carry.
const (
	preziProcessors    = int32(1)
	preziPerProcMemory = int64(512)
	preziTokens        = 4
)

// validPreziExecutables lists the executable tags a Prezi job line may carry.
var validPreziExecutables = map[string]bool{
	"url": true, "default": true, "export": true,
}

// PreziFormat reads the Prezi request log format. Each job line has four
// whitespace-separated tokens:
//
//	<arrival seconds:int> <duration seconds:float> <job id> <url|default|export>
//
// Any other line is metadata. A metadata line mentioning "Processors"
// declares the processor ceiling in its last token.
type PreziFormat[J any] struct{}

// NewPreziReader creates a Reader for a Prezi trace file.
func NewPreziReader[J any](path string, w trace.Window, factory sim.Factory[J]) (*Reader[J], error) {
	return NewReader[J](PreziLabel, path, w, PreziFormat[J]{}, factory)
}

// IsTraceLine splits on any run of whitespace, so spaces and tabs are
// interchangeable separators.
func (PreziFormat[J]) IsTraceLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != preziTokens {
		return false
	}
	if _, err := strconv.ParseInt(fields[0], 10, 64); err != nil {
		return false
	}
	if _, ok := parsePreziDuration(fields[1]); !ok {
		return false
	}
	return validPreziExecutables[fields[3]]
}

func (PreziFormat[J]) CollectMetadata(line string, md *Metadata) {
	if !strings.Contains(line, "Processors") {
		return
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	procs, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if err != nil {
		// no usable processor count on this line
		return
	}
	md.MaxProcCount = procs
}

func (PreziFormat[J]) JobFromLine(line string, factory sim.Factory[J]) (J, bool, error) {
	var zero J
	fields := strings.Fields(line)
	if len(fields) < preziTokens {
		return zero, false, nil
	}
	submit, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return zero, false, nil
	}
	duration, ok := parsePreziDuration(fields[1])
	if !ok {
		return zero, false, nil
	}

	job, err := factory(sim.JobAttributes[J]{
		ID:            strings.TrimSpace(fields[2]),
		SubmitTime:    submit,
		QueueTime:     0,
		ExecTime:      int64(duration), // truncates toward zero
		Processors:    preziProcessors,
		PerProcCPU:    sim.UnspecifiedCPU,
		PerProcMemory: preziPerProcMemory,
		Executable:    fields[3],
		DelayAfter:    0,
	})
	if err != nil {
		return zero, false, err
	}
	return job, true, nil
}

// parsePreziDuration parses a job duration at single precision, the
// precision Prezi logs are written with, so "0.99999999" rounds to 1.
// Durations must be finite, non-negative and fit into an int64 number of seconds.
func parsePreziDuration(s string) (float64, bool) {
	d, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsNaN(d) || d < 0 || d >= math.MaxInt64 {
		return 0, false
	}
	return d, true
}
