package random

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace"
)

// RepetitiveLabel is the diagnostic label of the repetitive random generator.
const RepetitiveLabel = "Repetitive random trace"

// RepetitiveGenerator produces a trace of parallel sections. Each section
// holds Parallel jobs submitted within MaxStartSpread seconds of the section
// start; the next section starts a random gap after the last job of the
// previous one finishes.
//
// Any parameter change invalidates the generated trace; it is regenerated on
// the next Jobs call. All sections draw from one random source seeded at
// construction, so regenerating continues its stream.
//
// Processor budget: within a section, a job whose request would exceed the
// remaining MaxTotalProcs budget is clamped to the remainder. When nothing
// is left the job still gets one processor, so a section can oversubscribe
// MaxTotalProcs by one processor per such job.
//
// Thread-safety: NOT thread-safe.
type RepetitiveGenerator[J any] struct {
	params  Params
	factory sim.Factory[J]
	seed    int64
	rng     *rand.Rand

	generated []J
	dirty     bool
}

// NewRepetitiveGenerator creates a generator with every parameter unset.
// Set all parameters before calling Jobs.
func NewRepetitiveGenerator[J any](factory sim.Factory[J], seed int64) (*RepetitiveGenerator[J], error) {
	if err := trace.CheckFactory(factory); err != nil {
		return nil, fmt.Errorf("%s generator: %w", RepetitiveLabel, err)
	}
	return &RepetitiveGenerator[J]{
		params:  NewParams(),
		factory: factory,
		seed:    seed,
		rng:     sim.NewTraceRand(seed),
		dirty:   true,
	}, nil
}

// Jobs returns the generated trace, generating it first if any parameter
// changed since the last call. Returns an error wrapping
// trace.ErrNotPrepared while parameters are missing, and a
// *trace.GenerationError if generation fails; no jobs are returned with
// either error.
//
// Each call returns a fresh slice, but the jobs in it are the cached ones:
// for pointer job types, mutating a returned job changes what later calls
// return until a parameter change triggers regeneration. Callers that
// modify jobs must copy them first.
func (g *RepetitiveGenerator[J]) Jobs() ([]J, error) {
	if !g.dirty {
		return slices.Clone(g.generated), nil
	}
	if missing := g.params.Missing(); missing != nil {
		return nil, fmt.Errorf("%s: %w: %w", RepetitiveLabel, trace.ErrNotPrepared, missing)
	}
	jobs, err := g.generate()
	if err != nil {
		return nil, &trace.GenerationError{Producer: RepetitiveLabel, Err: err}
	}
	g.generated = jobs
	g.dirty = false
	return slices.Clone(jobs), nil
}

// IsPrepared reports whether every parameter is set.
func (g *RepetitiveGenerator[J]) IsPrepared() bool {
	return g.params.IsPrepared()
}

func (g *RepetitiveGenerator[J]) generate() ([]J, error) {
	p := g.params
	if p.Parallel == 0 {
		return nil, fmt.Errorf("parallel must be positive to form sections")
	}
	execSpace, err := width("exec", p.ExecMin, p.ExecMax)
	if err != nil {
		return nil, err
	}
	gapSpace, err := width("gap", p.MinGap, p.MaxGap)
	if err != nil {
		return nil, err
	}
	nodeSpace, err := width("node_procs", p.MinNodeProcs, p.MaxNodeProcs)
	if err != nil {
		return nil, err
	}
	if p.MaxNodeProcs > math.MaxInt32 {
		return nil, fmt.Errorf("max_node_procs %d exceeds the processor count range", p.MaxNodeProcs)
	}
	if p.MaxNodeProcs > p.MaxTotalProcs {
		logrus.Warnf("%s: max_node_procs %d exceeds max_total_procs %d; jobs will be clamped to the section budget",
			RepetitiveLabel, p.MaxNodeProcs, p.MaxTotalProcs)
	}

	logrus.Infof("%s generator starts with parameters (jobs: %d, parallel: %d, startSpread: %d, exec: %d-%d, gap: %d-%d, nodeprocs: %d-%d, totalProcs: %d, submitStart: %d, seed: %d)",
		RepetitiveLabel, p.JobNum, p.Parallel, p.MaxStartSpread, p.ExecMin, p.ExecMax,
		p.MinGap, p.MaxGap, p.MinNodeProcs, p.MaxNodeProcs, p.MaxTotalProcs, p.SubmitStart, g.seed)

	// Integer division: a remainder of JobNum that cannot fill a section is dropped.
	sections := p.JobNum / p.Parallel
	jobs := make([]J, 0, sections*p.Parallel)
	submitStart := p.SubmitStart
	for i := 0; i < sections; i++ {
		usedProcs := 0
		currentMaxTime := submitStart
		for j := 0; j < p.Parallel; j++ {
			submitTime := submitStart + int64(g.draw(p.MaxStartSpread))
			nprocs := p.MinNodeProcs + g.draw(nodeSpace)
			nprocs = min(p.MaxTotalProcs-usedProcs, nprocs)
			if nprocs <= 0 {
				nprocs = 1
			}
			execTime := int64(p.ExecMin + g.draw(execSpace))

			job, err := g.factory(sim.JobAttributes[J]{
				SubmitTime:    submitTime,
				QueueTime:     0,
				ExecTime:      execTime,
				Processors:    int32(nprocs),
				PerProcCPU:    sim.UnspecifiedCPU,
				PerProcMemory: sim.UnspecifiedMemory,
				DelayAfter:    0,
			})
			if err != nil {
				return nil, fmt.Errorf("section %d job %d: %w", i, j, err)
			}
			jobs = append(jobs, job)

			usedProcs += nprocs
			currentMaxTime = max(currentMaxTime, submitTime+execTime)
		}
		submitStart = currentMaxTime + int64(p.MinGap) + int64(g.draw(gapSpace))
	}
	logrus.Debugf("%s: generated %d jobs in %d sections; next section would start at %d",
		RepetitiveLabel, len(jobs), sections, submitStart)
	return jobs, nil
}

// draw returns a uniform integer in [0, space). A zero-width space yields 0
// without consuming randomness.
func (g *RepetitiveGenerator[J]) draw(space int) int {
	if space == 0 {
		return 0
	}
	return g.rng.Intn(space)
}

// width returns max - min, failing on an inverted range.
func width(name string, lo, hi int) (int, error) {
	if hi < lo {
		return 0, fmt.Errorf("%s range is inverted: min %d > max %d", name, lo, hi)
	}
	return hi - lo, nil
}

func (g *RepetitiveGenerator[J]) invalidate() {
	g.dirty = true
	g.generated = nil
}

// Seed returns the seed of the generator's random source.
func (g *RepetitiveGenerator[J]) Seed() int64 { return g.seed }

// Params returns a copy of the current parameters.
func (g *RepetitiveGenerator[J]) Params() Params { return g.params }

// SetParams replaces every parameter at once.
func (g *RepetitiveGenerator[J]) SetParams(p Params) {
	g.params = p
	g.invalidate()
}

// Parallel is the maximum number of jobs in a parallel section.
func (g *RepetitiveGenerator[J]) Parallel() int { return g.params.Parallel }

func (g *RepetitiveGenerator[J]) SetParallel(v int) {
	g.params.Parallel = v
	g.invalidate()
}

// MaxStartSpread is the period over which submit times in a section are dispersed.
func (g *RepetitiveGenerator[J]) MaxStartSpread() int { return g.params.MaxStartSpread }

func (g *RepetitiveGenerator[J]) SetMaxStartSpread(v int) {
	g.params.MaxStartSpread = v
	g.invalidate()
}

// ExecMin is the shortest execution time of a job.
func (g *RepetitiveGenerator[J]) ExecMin() int { return g.params.ExecMin }

func (g *RepetitiveGenerator[J]) SetExecMin(v int) {
	g.params.ExecMin = v
	g.invalidate()
}

// ExecMax bounds the execution time of a job (exclusive unless equal to ExecMin).
func (g *RepetitiveGenerator[J]) ExecMax() int { return g.params.ExecMax }

func (g *RepetitiveGenerator[J]) SetExecMax(v int) {
	g.params.ExecMax = v
	g.invalidate()
}

// MinGap is the shortest jobless period between two sections.
func (g *RepetitiveGenerator[J]) MinGap() int { return g.params.MinGap }

func (g *RepetitiveGenerator[J]) SetMinGap(v int) {
	g.params.MinGap = v
	g.invalidate()
}

// MaxGap bounds the jobless period between two sections.
func (g *RepetitiveGenerator[J]) MaxGap() int { return g.params.MaxGap }

func (g *RepetitiveGenerator[J]) SetMaxGap(v int) {
	g.params.MaxGap = v
	g.invalidate()
}

// MinNodeProcs is the smallest processor count of a job. Once a section's
// budget is used up, remaining jobs get a single processor.
func (g *RepetitiveGenerator[J]) MinNodeProcs() int { return g.params.MinNodeProcs }

func (g *RepetitiveGenerator[J]) SetMinNodeProcs(v int) {
	g.params.MinNodeProcs = v
	g.invalidate()
}

// MaxNodeProcs bounds the processor count of a job.
func (g *RepetitiveGenerator[J]) MaxNodeProcs() int { return g.params.MaxNodeProcs }

func (g *RepetitiveGenerator[J]) SetMaxNodeProcs(v int) {
	g.params.MaxNodeProcs = v
	g.invalidate()
}

// JobNum is the requested number of jobs.
func (g *RepetitiveGenerator[J]) JobNum() int { return g.params.JobNum }

func (g *RepetitiveGenerator[J]) SetJobNum(v int) {
	g.params.JobNum = v
	g.invalidate()
}

// MaxTotalProcs is the processor budget of one section.
func (g *RepetitiveGenerator[J]) MaxTotalProcs() int { return g.params.MaxTotalProcs }

func (g *RepetitiveGenerator[J]) SetMaxTotalProcs(v int) {
	g.params.MaxTotalProcs = v
	g.invalidate()
}

// SubmitStart is the submit time of the first section.
func (g *RepetitiveGenerator[J]) SubmitStart() int64 { return g.params.SubmitStart }

func (g *RepetitiveGenerator[J]) SetSubmitStart(v int64) {
	g.params.SubmitStart = v
	g.invalidate()
}
