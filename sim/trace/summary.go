package trace

import (
	"sort"

	"github.com/distsys-helpers/jobtrace/sim"
)

// TraceSummary aggregates statistics from a produced job sequence.
type TraceSummary struct {
	TotalJobs       int
	TotalProcessors int64 // sum of requested processors over all jobs
	MaxProcessors   int32 // largest single-job request
	PeakProcessors  int64 // most processors busy at once, assuming no queueing
	FirstSubmit     int64
	LastSubmit      int64
	Makespan        int64 // latest stop time minus first submit time
	MeanExecTime    float64

	ExecutableDistribution map[string]int // executable → count of jobs
}

// Summarize computes aggregate statistics from a job sequence.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(jobs []*sim.Job) *TraceSummary {
	summary := &TraceSummary{
		ExecutableDistribution: make(map[string]int),
	}
	if len(jobs) == 0 {
		return summary
	}

	summary.TotalJobs = len(jobs)
	summary.FirstSubmit = jobs[0].SubmitTime
	summary.LastSubmit = jobs[0].SubmitTime
	lastStop := jobs[0].StopTime()
	totalExec := int64(0)
	for _, j := range jobs {
		summary.TotalProcessors += int64(j.Processors)
		if j.Processors > summary.MaxProcessors {
			summary.MaxProcessors = j.Processors
		}
		summary.FirstSubmit = min(summary.FirstSubmit, j.SubmitTime)
		summary.LastSubmit = max(summary.LastSubmit, j.SubmitTime)
		lastStop = max(lastStop, j.StopTime())
		totalExec += j.ExecTime
		summary.ExecutableDistribution[j.Executable]++
	}
	summary.Makespan = lastStop - summary.FirstSubmit
	summary.MeanExecTime = float64(totalExec) / float64(len(jobs))
	summary.PeakProcessors = peakProcessors(jobs)

	return summary
}

// peakProcessors sweeps job start and stop events in time order.
// A job stopping at t frees its processors before a job starting at t takes them.
func peakProcessors(jobs []*sim.Job) int64 {
	type event struct {
		at    int64
		delta int64
	}
	events := make([]event, 0, 2*len(jobs))
	for _, j := range jobs {
		if j.ExecTime == 0 {
			continue
		}
		start := j.SubmitTime + j.QueueTime
		events = append(events,
			event{at: start, delta: int64(j.Processors)},
			event{at: start + j.ExecTime, delta: -int64(j.Processors)})
	}
	sort.Slice(events, func(a, b int) bool {
		if events[a].at != events[b].at {
			return events[a].at < events[b].at
		}
		return events[a].delta < events[b].delta
	})

	busy, peak := int64(0), int64(0)
	for _, e := range events {
		busy += e.delta
		peak = max(peak, busy)
	}
	return peak
}
