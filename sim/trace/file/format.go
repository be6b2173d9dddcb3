// Package file reads line-oriented workload trace files into job sequences.
//
// A Reader handles the streaming, windowing and error policy shared by all
// formats; a Format decides which lines carry jobs and how to translate them.
package file

import (
	"fmt"
	"sort"
	"strings"

	"github.com/distsys-helpers/jobtrace/sim"
)

// Metadata aggregates what a format learns from non-trace lines.
type Metadata struct {
	MaxProcCount  int64 // declared processor ceiling; 0 when the file declares none
	MetadataLines int   // number of lines routed to the metadata collector
}

// Format recognizes and translates the lines of one trace file format.
// Implementations must not panic on arbitrary input.
type Format[J any] interface {
	// IsTraceLine reports whether line is a job record. Malformed lines are
	// not errors; they are reported as non-trace lines.
	IsTraceLine(line string) bool

	// CollectMetadata is called for every line IsTraceLine rejects.
	// Lines that carry nothing of interest are ignored.
	CollectMetadata(line string, md *Metadata)

	// JobFromLine translates a line that passed IsTraceLine. ok is false when
	// the line cannot be translated after all; err reports a factory failure.
	JobFromLine(line string, factory sim.Factory[J]) (job J, ok bool, err error)
}

// Valid format registry.
var validFormats = map[string]bool{
	"prezi": true,
}

// IsValidFormat reports whether name is a registered format name.
func IsValidFormat(name string) bool {
	return validFormats[strings.ToLower(name)]
}

// FormatNames returns the registered format names in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(validFormats))
	for name := range validFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFormat returns the registered format with the given name, together
// with its diagnostic label.
func NewFormat[J any](name string) (Format[J], string, error) {
	switch strings.ToLower(name) {
	case "prezi":
		return PreziFormat[J]{}, PreziLabel, nil
	default:
		return nil, "", fmt.Errorf("unknown trace format %q; valid: %s", name, strings.Join(FormatNames(), ", "))
	}
}
