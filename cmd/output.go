package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace"
)

const (
	outputCSV     = "csv"
	outputSummary = "summary"
)

var validOutputFormats = map[string]bool{
	outputCSV:     true,
	outputSummary: true,
}

func isValidOutputFormat(name string) bool {
	return validOutputFormats[name]
}

// CSV column headers for job listings.
var jobColumns = []string{
	"id", "submit_time", "queue_time", "exec_time", "processors",
	"per_proc_cpu", "per_proc_memory", "user", "group", "executable",
	"preceding_id", "delay_after",
}

// writeJobs writes jobs in the requested output format.
func writeJobs(w io.Writer, format string, jobs []*sim.Job) error {
	switch format {
	case outputSummary:
		return writeSummary(w, trace.Summarize(jobs))
	default:
		return writeJobsCSV(w, jobs)
	}
}

// writeJobsCSV writes one CSV row per job, preceded by a header row.
func writeJobsCSV(w io.Writer, jobs []*sim.Job) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(jobColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, j := range jobs {
		preceding := ""
		if j.Preceding != nil {
			preceding = j.Preceding.ID
		}
		row := []string{
			j.ID,
			strconv.FormatInt(j.SubmitTime, 10),
			strconv.FormatInt(j.QueueTime, 10),
			strconv.FormatInt(j.ExecTime, 10),
			strconv.FormatInt(int64(j.Processors), 10),
			strconv.FormatFloat(j.PerProcCPU, 'f', -1, 64),
			strconv.FormatInt(j.PerProcMemory, 10),
			j.User,
			j.Group,
			j.Executable,
			preceding,
			strconv.FormatInt(j.DelayAfter, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeSummary prints aggregate trace statistics.
func writeSummary(w io.Writer, s *trace.TraceSummary) error {
	if _, err := fmt.Fprintf(w, "=== Trace Summary ===\n"+
		"Jobs               : %d\n"+
		"Submit range       : %d - %d\n"+
		"Makespan           : %d\n"+
		"Mean exec time     : %.2f\n"+
		"Total processors   : %d\n"+
		"Max job processors : %d\n"+
		"Peak processors    : %d\n",
		s.TotalJobs, s.FirstSubmit, s.LastSubmit, s.Makespan, s.MeanExecTime,
		s.TotalProcessors, s.MaxProcessors, s.PeakProcessors); err != nil {
		return err
	}

	executables := make([]string, 0, len(s.ExecutableDistribution))
	for name := range s.ExecutableDistribution {
		executables = append(executables, name)
	}
	sort.Strings(executables)
	for _, name := range executables {
		label := name
		if label == "" {
			label = "(none)"
		}
		if _, err := fmt.Fprintf(w, "  %-16s : %d\n", label, s.ExecutableDistribution[name]); err != nil {
			return err
		}
	}
	return nil
}
