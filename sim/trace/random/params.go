// Package random synthesizes job traces from a small set of numeric ranges.
package random

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Unset marks a parameter that has not been configured yet.
const Unset = -1

// Params characterizes a repetitive random trace. Every int field must be
// set to a non-negative value before a trace can be generated.
// Times are in seconds.
type Params struct {
	Parallel       int `yaml:"parallel"`         // jobs per parallel section
	MaxStartSpread int `yaml:"max_start_spread"` // submit times spread over [0, MaxStartSpread) within a section
	ExecMin        int `yaml:"exec_min"`
	ExecMax        int `yaml:"exec_max"`
	MinGap         int `yaml:"min_gap"` // idle time between the end of a section and the next one
	MaxGap         int `yaml:"max_gap"`
	MinNodeProcs   int `yaml:"min_node_procs"` // processors per job
	MaxNodeProcs   int `yaml:"max_node_procs"`
	JobNum         int `yaml:"job_num"`         // requested number of jobs
	MaxTotalProcs  int `yaml:"max_total_procs"` // processors available to one section

	SubmitStart int64 `yaml:"submit_start"` // submit time of the first section
}

// NewParams returns a parameter set with every required field unset.
func NewParams() Params {
	return Params{
		Parallel:       Unset,
		MaxStartSpread: Unset,
		ExecMin:        Unset,
		ExecMax:        Unset,
		MinGap:         Unset,
		MaxGap:         Unset,
		MinNodeProcs:   Unset,
		MaxNodeProcs:   Unset,
		JobNum:         Unset,
		MaxTotalProcs:  Unset,
	}
}

type namedParam struct {
	name  string
	value int
}

func (p Params) required() []namedParam {
	return []namedParam{
		{"parallel", p.Parallel},
		{"max_start_spread", p.MaxStartSpread},
		{"exec_min", p.ExecMin},
		{"exec_max", p.ExecMax},
		{"min_gap", p.MinGap},
		{"max_gap", p.MaxGap},
		{"min_node_procs", p.MinNodeProcs},
		{"max_node_procs", p.MaxNodeProcs},
		{"job_num", p.JobNum},
		{"max_total_procs", p.MaxTotalProcs},
	}
}

// Missing reports every required parameter that is still unset, or nil.
func (p Params) Missing() error {
	var result *multierror.Error
	for _, f := range p.required() {
		if f.value < 0 {
			result = multierror.Append(result, fmt.Errorf("%s is unset", f.name))
		}
	}
	return result.ErrorOrNil()
}

// IsPrepared reports whether every required parameter is set.
func (p Params) IsPrepared() bool {
	return p.Missing() == nil
}

// LoadParams reads generator parameters from a YAML file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Parameters absent from the file stay unset.
func LoadParams(path string) (Params, error) {
	params := NewParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("reading generator params: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		return NewParams(), fmt.Errorf("parsing generator params: %w", err)
	}
	return params, nil
}
