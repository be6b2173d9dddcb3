// Defines the Job struct that models a single job descriptor in a workload trace,
// and the factory contract trace producers use to instantiate job descriptors.

package sim

import (
	"fmt"
)

// Sentinel values for fields a trace source does not specify.
const (
	// UnspecifiedCPU marks a job that runs at full speed on each processor.
	UnspecifiedCPU = -1.0
	// UnspecifiedMemory marks a job without a per-processor memory demand.
	UnspecifiedMemory = int64(-1)
)

// Job models one unit of work as seen by a scheduler under test.
// Times are in seconds. Identifier uniqueness is not enforced.
type Job struct {
	ID string // Job identifier; empty when the source carries none

	SubmitTime int64 // Arrival time of the job
	QueueTime  int64 // Time the job spent waiting before it started
	ExecTime   int64 // Time the job occupies its processors

	Processors    int32   // Number of processors requested (>= 1)
	PerProcCPU    float64 // Compute factor per processor; UnspecifiedCPU = full speed
	PerProcMemory int64   // Memory per processor; UnspecifiedMemory when unknown

	User       string // Submitting user (empty if unknown)
	Group      string // Submitting group (empty if unknown)
	Executable string // Executable name or job category

	Preceding  *Job  // Job that must finish before this one; nil for none
	DelayAfter int64 // Delay after the preceding job completes
}

// JobAttributes carries the fixed parameter list used to instantiate a job
// descriptor. J is the concrete job type produced by the factory; the zero
// value of Preceding means the job has no predecessor.
type JobAttributes[J any] struct {
	ID            string
	SubmitTime    int64
	QueueTime     int64
	ExecTime      int64
	Processors    int32
	PerProcCPU    float64
	PerProcMemory int64
	User          string
	Group         string
	Executable    string
	Preceding     J
	DelayAfter    int64
}

// Factory instantiates one job descriptor of type J from its attributes.
// Trace producers take a Factory at construction time, so any job
// representation can be produced by the same reading and generation code.
type Factory[J any] func(a JobAttributes[J]) (J, error)

// NewJob is the Factory for *Job. It rejects negative execution times and
// processor counts below one.
func NewJob(a JobAttributes[*Job]) (*Job, error) {
	if a.ExecTime < 0 {
		return nil, fmt.Errorf("job %q: execution time must be non-negative, got %d", a.ID, a.ExecTime)
	}
	if a.Processors < 1 {
		return nil, fmt.Errorf("job %q: processor count must be at least 1, got %d", a.ID, a.Processors)
	}
	return &Job{
		ID:            a.ID,
		SubmitTime:    a.SubmitTime,
		QueueTime:     a.QueueTime,
		ExecTime:      a.ExecTime,
		Processors:    a.Processors,
		PerProcCPU:    a.PerProcCPU,
		PerProcMemory: a.PerProcMemory,
		User:          a.User,
		Group:         a.Group,
		Executable:    a.Executable,
		Preceding:     a.Preceding,
		DelayAfter:    a.DelayAfter,
	}, nil
}

// StopTime returns the time the job finishes if it starts right after queueing.
func (j Job) StopTime() int64 {
	return j.SubmitTime + j.QueueTime + j.ExecTime
}

// This method returns a human-readable string representation of a Job.
func (j Job) String() string {
	return fmt.Sprintf("Job: (ID: %s, Submit: %d, Exec: %d, Procs: %d, Executable: %s)",
		j.ID, j.SubmitTime, j.ExecTime, j.Processors, j.Executable)
}
