package cmd

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace"
	"github.com/distsys-helpers/jobtrace/sim/trace/file"
)

var (
	traceFilePath string // Trace file to read
	traceFormat   string // Trace file format name
	traceFrom     int    // First trace line index to produce
	traceTo       int    // Trace line index to stop at (exclusive)
	readFurther   bool   // Ignore traceTo and read until EOF
)

// readCmd reads a trace file and lists the jobs inside the window
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read jobs from a workload trace file",
	Run: func(cmd *cobra.Command, args []string) {
		w := trace.NewWindow(traceFrom, traceTo, readFurther)
		jobs, md, err := readTrace(traceFormat, traceFilePath, w)
		if err != nil {
			logrus.Fatalf("Reading trace failed: %v", err)
		}
		if md.MaxProcCount > 0 {
			logrus.Infof("Trace declares %d processors", md.MaxProcCount)
		}
		if err := writeJobs(cmd.OutOrStdout(), outputFormat, jobs); err != nil {
			logrus.Fatalf("Writing jobs failed: %v", err)
		}
	},
}

// readTrace reads the jobs of a trace file inside window w.
func readTrace(format, path string, w trace.Window) ([]*sim.Job, file.Metadata, error) {
	f, label, err := file.NewFormat[*sim.Job](format)
	if err != nil {
		return nil, file.Metadata{}, err
	}
	reader, err := file.NewReader(label, path, w, f, sim.NewJob)
	if err != nil {
		return nil, file.Metadata{}, err
	}
	var producer trace.Producer[*sim.Job] = reader
	jobs, err := producer.Jobs()
	if err != nil {
		return nil, file.Metadata{}, err
	}
	return jobs, reader.Metadata(), nil
}

func init() {
	readCmd.Flags().StringVar(&traceFilePath, "file", "", "Path to the trace file")
	readCmd.Flags().StringVar(&traceFormat, "format", "prezi", "Trace file format")
	readCmd.Flags().IntVar(&traceFrom, "from", 0, "Index of the first trace line to produce")
	readCmd.Flags().IntVar(&traceTo, "to", math.MaxInt32, "Index of the trace line to stop at (exclusive)")
	readCmd.Flags().BoolVar(&readFurther, "read-further", false, "Ignore --to and read until the end of the file")
	_ = readCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(readCmd)
}
