package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace/random"
)

var (
	seed       int64         // Seed for random trace generation
	paramsPath string        // YAML file with generator parameters
	flagParams random.Params // Generator parameters given on the command line
)

// generateCmd synthesizes a repetitive random trace
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random trace of parallel job sections",
	Run: func(cmd *cobra.Command, args []string) {
		params, err := resolveParams(cmd.Flags(), paramsPath, flagParams)
		if err != nil {
			logrus.Fatalf("Loading generator parameters failed: %v", err)
		}
		jobs, err := generateTrace(params, seed)
		if err != nil {
			logrus.Fatalf("Trace generation failed: %v", err)
		}
		if err := writeJobs(cmd.OutOrStdout(), outputFormat, jobs); err != nil {
			logrus.Fatalf("Writing jobs failed: %v", err)
		}
	},
}

// generateTrace runs the repetitive random generator with the given parameters.
func generateTrace(params random.Params, seed int64) ([]*sim.Job, error) {
	g, err := random.NewRepetitiveGenerator(sim.NewJob, seed)
	if err != nil {
		return nil, err
	}
	g.SetParams(params)
	return g.Jobs()
}

// paramFlag binds a CLI flag name to a generator parameter.
type paramFlag struct {
	name  string
	usage string
	field func(p *random.Params) *int
}

var paramFlags = []paramFlag{
	{"parallel", "Jobs per parallel section", func(p *random.Params) *int { return &p.Parallel }},
	{"max-start-spread", "Seconds over which submit times in a section are spread", func(p *random.Params) *int { return &p.MaxStartSpread }},
	{"exec-min", "Minimum job execution time in seconds", func(p *random.Params) *int { return &p.ExecMin }},
	{"exec-max", "Maximum job execution time in seconds", func(p *random.Params) *int { return &p.ExecMax }},
	{"min-gap", "Minimum idle seconds between sections", func(p *random.Params) *int { return &p.MinGap }},
	{"max-gap", "Maximum idle seconds between sections", func(p *random.Params) *int { return &p.MaxGap }},
	{"min-node-procs", "Minimum processors per job", func(p *random.Params) *int { return &p.MinNodeProcs }},
	{"max-node-procs", "Maximum processors per job", func(p *random.Params) *int { return &p.MaxNodeProcs }},
	{"jobs", "Number of jobs to generate", func(p *random.Params) *int { return &p.JobNum }},
	{"total-procs", "Processors available to one section", func(p *random.Params) *int { return &p.MaxTotalProcs }},
}

// resolveParams loads parameters from path (when given) and overrides them
// with every flag set explicitly on the command line.
func resolveParams(flags *pflag.FlagSet, path string, fromFlags random.Params) (random.Params, error) {
	params := random.NewParams()
	if path != "" {
		loaded, err := random.LoadParams(path)
		if err != nil {
			return params, err
		}
		params = loaded
		logrus.Infof("Loaded generator parameters from %s", path)
	}
	for _, pf := range paramFlags {
		if flags.Changed(pf.name) {
			*pf.field(&params) = *pf.field(&fromFlags)
		}
	}
	if flags.Changed("submit-start") {
		params.SubmitStart = fromFlags.SubmitStart
	}
	return params, nil
}

// registerParamFlags defines one flag per generator parameter, writing into p.
func registerParamFlags(flags *pflag.FlagSet, p *random.Params) {
	for _, pf := range paramFlags {
		flags.IntVar(pf.field(p), pf.name, random.Unset, pf.usage)
	}
	flags.Int64Var(&p.SubmitStart, "submit-start", 0, "Submit time of the first section")
}

func init() {
	generateCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random trace generation")
	generateCmd.Flags().StringVar(&paramsPath, "config", "", "YAML file with generator parameters; flags override its values")
	registerParamFlags(generateCmd.Flags(), &flagParams)

	rootCmd.AddCommand(generateCmd)
}
