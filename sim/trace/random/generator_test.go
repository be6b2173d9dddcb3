package random

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distsys-helpers/jobtrace/sim"
	"github.com/distsys-helpers/jobtrace/sim/trace"
)

// burstParams returns a fully prepared parameter set with wide ranges.
func burstParams() Params {
	return Params{
		Parallel: 4, MaxStartSpread: 30,
		ExecMin: 10, ExecMax: 100,
		MinGap: 5, MaxGap: 50,
		MinNodeProcs: 1, MaxNodeProcs: 8,
		JobNum: 40, MaxTotalProcs: 16,
	}
}

func newTestGenerator(t *testing.T, p Params, seed int64) *RepetitiveGenerator[*sim.Job] {
	t.Helper()
	g, err := NewRepetitiveGenerator(sim.NewJob, seed)
	require.NoError(t, err)
	g.SetParams(p)
	return g
}

func TestRepetitiveGenerator_ConcreteScenario(t *testing.T) {
	// GIVEN fixed ranges with zero width everywhere
	g, err := NewRepetitiveGenerator(sim.NewJob, 42)
	require.NoError(t, err)
	g.SetParallel(2)
	g.SetExecMin(10)
	g.SetExecMax(10)
	g.SetMinGap(5)
	g.SetMaxGap(5)
	g.SetMinNodeProcs(1)
	g.SetMaxNodeProcs(1)
	g.SetMaxTotalProcs(10)
	g.SetJobNum(4)
	g.SetMaxStartSpread(0)
	g.SetSubmitStart(0)

	// WHEN jobs are requested
	jobs, err := g.Jobs()
	require.NoError(t, err)

	// THEN two sections of two jobs; the second starts at 10 (last stop) + 5 (gap)
	require.Len(t, jobs, 4)
	wantSubmits := []int64{0, 0, 15, 15}
	for i, job := range jobs {
		assert.Equal(t, wantSubmits[i], job.SubmitTime, "job %d submit", i)
		assert.Equal(t, int64(10), job.ExecTime, "job %d exec", i)
		assert.Equal(t, int32(1), job.Processors, "job %d procs", i)
		assert.Equal(t, int64(0), job.QueueTime)
		assert.Equal(t, sim.UnspecifiedCPU, job.PerProcCPU)
		assert.Equal(t, sim.UnspecifiedMemory, job.PerProcMemory)
		assert.Empty(t, job.ID)
		assert.Empty(t, job.User)
		assert.Empty(t, job.Group)
		assert.Empty(t, job.Executable)
		assert.Nil(t, job.Preceding)
		assert.Equal(t, int64(0), job.DelayAfter)
	}
}

func TestRepetitiveGenerator_SubmitStart_OffsetsTrace(t *testing.T) {
	p := Params{
		Parallel: 1, MaxStartSpread: 0, ExecMin: 3, ExecMax: 3, MinGap: 2, MaxGap: 2,
		MinNodeProcs: 1, MaxNodeProcs: 1, JobNum: 3, MaxTotalProcs: 1, SubmitStart: 1000,
	}
	jobs, err := newTestGenerator(t, p, 1).Jobs()
	require.NoError(t, err)

	require.Len(t, jobs, 3)
	assert.Equal(t, int64(1000), jobs[0].SubmitTime)
	assert.Equal(t, int64(1005), jobs[1].SubmitTime)
	assert.Equal(t, int64(1010), jobs[2].SubmitTime)
}

func TestRepetitiveGenerator_OutputSize_TruncatesToWholeSections(t *testing.T) {
	tests := []struct {
		parallel, jobNum, want int
	}{
		{1, 10, 10},
		{2, 10, 10},
		{3, 10, 9},
		{4, 10, 8},
		{7, 10, 7},
		{11, 10, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		p := burstParams()
		p.Parallel = tt.parallel
		p.JobNum = tt.jobNum
		jobs, err := newTestGenerator(t, p, 7).Jobs()
		require.NoError(t, err)
		assert.Len(t, jobs, tt.want, "parallel=%d jobNum=%d", tt.parallel, tt.jobNum)
		assert.Equal(t, (tt.jobNum/tt.parallel)*tt.parallel, len(jobs))
	}
}

func TestRepetitiveGenerator_DrawsStayInRanges(t *testing.T) {
	p := burstParams()
	jobs, err := newTestGenerator(t, p, 99).Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, p.JobNum)

	for s := 0; s < len(jobs)/p.Parallel; s++ {
		section := jobs[s*p.Parallel : (s+1)*p.Parallel]
		first := section[0].SubmitTime
		for _, job := range section {
			assert.GreaterOrEqual(t, job.ExecTime, int64(p.ExecMin))
			assert.Less(t, job.ExecTime, int64(p.ExecMax))
			assert.GreaterOrEqual(t, job.Processors, int32(1))
			assert.Less(t, job.Processors, int32(p.MaxNodeProcs))
			// jobs of one section are submitted within the start spread of each other
			assert.Less(t, job.SubmitTime-first, int64(p.MaxStartSpread))
			assert.Greater(t, job.SubmitTime-first, -int64(p.MaxStartSpread))
		}
	}
}

func TestRepetitiveGenerator_SectionsDoNotOverlap(t *testing.T) {
	p := burstParams()
	p.MaxStartSpread = 0 // every job of a section shares the section start
	jobs, err := newTestGenerator(t, p, 5).Jobs()
	require.NoError(t, err)

	for s := 1; s < len(jobs)/p.Parallel; s++ {
		prev := jobs[(s-1)*p.Parallel : s*p.Parallel]
		lastStop := int64(0)
		for _, job := range prev {
			lastStop = max(lastStop, job.SubmitTime+job.ExecTime)
		}
		gap := jobs[s*p.Parallel].SubmitTime - lastStop
		assert.GreaterOrEqual(t, gap, int64(p.MinGap), "section %d", s)
		assert.Less(t, gap, int64(p.MaxGap), "section %d", s)
	}
}

func TestRepetitiveGenerator_ProcessorBudget_OversubscribesOnlyByForcedMinimum(t *testing.T) {
	// GIVEN a budget too small for the section
	p := burstParams()
	p.Parallel = 6
	p.MinNodeProcs = 3
	p.MaxNodeProcs = 6
	p.MaxTotalProcs = 10
	p.JobNum = 60

	jobs, err := newTestGenerator(t, p, 11).Jobs()
	require.NoError(t, err)

	// THEN jobs are clamped to the remaining budget and get exactly one
	// processor once it is exhausted
	forced := 0
	for s := 0; s < len(jobs)/p.Parallel; s++ {
		used := int64(0)
		for _, job := range jobs[s*p.Parallel : (s+1)*p.Parallel] {
			if used >= int64(p.MaxTotalProcs) {
				assert.Equal(t, int32(1), job.Processors)
				forced++
			} else {
				assert.LessOrEqual(t, used+int64(job.Processors), int64(p.MaxTotalProcs))
			}
			used += int64(job.Processors)
		}
	}
	assert.Positive(t, forced, "scenario should exhaust the budget at least once")
}

func TestRepetitiveGenerator_ZeroBudget_ForcesSingleProcessor(t *testing.T) {
	p := burstParams()
	p.MaxTotalProcs = 0
	jobs, err := newTestGenerator(t, p, 3).Jobs()
	require.NoError(t, err)
	for _, job := range jobs {
		assert.Equal(t, int32(1), job.Processors)
	}
}

func TestRepetitiveGenerator_Deterministic_SameSeedSameOutput(t *testing.T) {
	j1, err := newTestGenerator(t, burstParams(), 42).Jobs()
	require.NoError(t, err)
	j2, err := newTestGenerator(t, burstParams(), 42).Jobs()
	require.NoError(t, err)

	require.Len(t, j2, len(j1))
	for i := range j1 {
		assert.Equal(t, *j1[i], *j2[i], "job %d", i)
	}
}

func TestRepetitiveGenerator_DifferentSeeds_DifferentOutput(t *testing.T) {
	j1, err := newTestGenerator(t, burstParams(), 1).Jobs()
	require.NoError(t, err)
	j2, err := newTestGenerator(t, burstParams(), 2).Jobs()
	require.NoError(t, err)

	anyDifferent := false
	for i := range j1 {
		if *j1[i] != *j2[i] {
			anyDifferent = true
			break
		}
	}
	assert.True(t, anyDifferent, "different seeds produced identical traces")
}

func TestRepetitiveGenerator_NotPrepared_ReturnsError(t *testing.T) {
	// GIVEN a generator with only some parameters set
	g, err := NewRepetitiveGenerator(sim.NewJob, 42)
	require.NoError(t, err)
	g.SetParallel(2)
	g.SetExecMin(1)
	g.SetExecMax(5)
	assert.False(t, g.IsPrepared())

	// WHEN jobs are requested
	jobs, err := g.Jobs()

	// THEN the not-prepared error names what is missing
	assert.Nil(t, jobs)
	assert.ErrorIs(t, err, trace.ErrNotPrepared)
	assert.Contains(t, err.Error(), "max_total_procs")
	assert.NotContains(t, err.Error(), "exec_min")

	// AND completing the configuration makes the call succeed
	g.SetMaxStartSpread(0)
	g.SetMinGap(0)
	g.SetMaxGap(0)
	g.SetMinNodeProcs(1)
	g.SetMaxNodeProcs(1)
	g.SetJobNum(4)
	g.SetMaxTotalProcs(4)
	assert.True(t, g.IsPrepared())
	jobs, err = g.Jobs()
	require.NoError(t, err)
	assert.Len(t, jobs, 4)
}

func TestRepetitiveGenerator_NegativeValue_MarksUnset(t *testing.T) {
	g := newTestGenerator(t, burstParams(), 42)
	require.True(t, g.IsPrepared())

	g.SetMaxGap(-5)
	assert.False(t, g.IsPrepared())
	_, err := g.Jobs()
	assert.ErrorIs(t, err, trace.ErrNotPrepared)
}

func TestRepetitiveGenerator_CachesUntilParameterChanges(t *testing.T) {
	g := newTestGenerator(t, burstParams(), 42)

	first, err := g.Jobs()
	require.NoError(t, err)
	second, err := g.Jobs()
	require.NoError(t, err)

	// Unchanged parameters serve the cached trace.
	require.Len(t, second, len(first))
	assert.Same(t, first[0], second[0])

	// Any setter invalidates it, even when the value is the same.
	g.SetExecMin(g.ExecMin())
	third, err := g.Jobs()
	require.NoError(t, err)
	require.Len(t, third, len(first))
	assert.NotSame(t, first[0], third[0])
}

func TestRepetitiveGenerator_ReturnedSliceIsACopy(t *testing.T) {
	g := newTestGenerator(t, burstParams(), 42)
	first, err := g.Jobs()
	require.NoError(t, err)
	original := first[0]
	first[0] = nil

	second, err := g.Jobs()
	require.NoError(t, err)
	assert.Same(t, original, second[0])
}

func TestRepetitiveGenerator_CachedJobsAreShared(t *testing.T) {
	// GIVEN a generated trace of pointer jobs
	g := newTestGenerator(t, burstParams(), 42)
	first, err := g.Jobs()
	require.NoError(t, err)
	exec := first[0].ExecTime

	// WHEN a caller mutates a returned job
	first[0].ExecTime = exec + 1000

	// THEN the next cached call sees the mutation
	second, err := g.Jobs()
	require.NoError(t, err)
	assert.Equal(t, exec+1000, second[0].ExecTime)

	// AND a parameter change regenerates fresh jobs
	g.SetParams(burstParams())
	third, err := g.Jobs()
	require.NoError(t, err)
	assert.NotSame(t, first[0], third[0])
}

func TestRepetitiveGenerator_InvalidRanges_GenerationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero parallel", func(p *Params) { p.Parallel = 0 }},
		{"inverted exec", func(p *Params) { p.ExecMin, p.ExecMax = 10, 5 }},
		{"inverted gap", func(p *Params) { p.MinGap, p.MaxGap = 10, 5 }},
		{"inverted node procs", func(p *Params) { p.MinNodeProcs, p.MaxNodeProcs = 4, 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := burstParams()
			tt.mutate(&p)
			jobs, err := newTestGenerator(t, p, 42).Jobs()

			assert.Nil(t, jobs)
			var genErr *trace.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, RepetitiveLabel, genErr.Producer)
			assert.NotErrorIs(t, err, trace.ErrNotPrepared)
		})
	}
}

func TestRepetitiveGenerator_FactoryFailure_AllOrNothing(t *testing.T) {
	// GIVEN a factory that fails halfway through the trace
	boom := errors.New("boom")
	calls := 0
	factory := func(a sim.JobAttributes[*sim.Job]) (*sim.Job, error) {
		calls++
		if calls == 5 {
			return nil, boom
		}
		return sim.NewJob(a)
	}
	g, err := NewRepetitiveGenerator(factory, 42)
	require.NoError(t, err)
	g.SetParams(burstParams())

	// WHEN jobs are requested
	jobs, err := g.Jobs()

	// THEN no partial trace is returned and the cause is preserved
	assert.Nil(t, jobs)
	assert.ErrorIs(t, err, boom)
	var genErr *trace.GenerationError
	assert.ErrorAs(t, err, &genErr)

	// AND a retry regenerates from scratch
	jobs, err = g.Jobs()
	require.NoError(t, err)
	assert.Len(t, jobs, burstParams().JobNum)
}

func TestNewRepetitiveGenerator_NilFactory_Fails(t *testing.T) {
	g, err := NewRepetitiveGenerator[*sim.Job](nil, 42)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, trace.ErrNilFactory)
}

func TestRepetitiveGenerator_GettersReflectSetters(t *testing.T) {
	g, err := NewRepetitiveGenerator(sim.NewJob, 9)
	require.NoError(t, err)
	assert.Equal(t, NewParams(), g.Params())
	assert.Equal(t, int64(9), g.Seed())

	g.SetParallel(1)
	g.SetMaxStartSpread(2)
	g.SetExecMin(3)
	g.SetExecMax(4)
	g.SetMinGap(5)
	g.SetMaxGap(6)
	g.SetMinNodeProcs(7)
	g.SetMaxNodeProcs(8)
	g.SetJobNum(9)
	g.SetMaxTotalProcs(10)
	g.SetSubmitStart(11)

	assert.Equal(t, 1, g.Parallel())
	assert.Equal(t, 2, g.MaxStartSpread())
	assert.Equal(t, 3, g.ExecMin())
	assert.Equal(t, 4, g.ExecMax())
	assert.Equal(t, 5, g.MinGap())
	assert.Equal(t, 6, g.MaxGap())
	assert.Equal(t, 7, g.MinNodeProcs())
	assert.Equal(t, 8, g.MaxNodeProcs())
	assert.Equal(t, 9, g.JobNum())
	assert.Equal(t, 10, g.MaxTotalProcs())
	assert.Equal(t, int64(11), g.SubmitStart())
}

func TestRepetitiveGenerator_SatisfiesProducer(t *testing.T) {
	var _ trace.Producer[*sim.Job] = newTestGenerator(t, burstParams(), 1)
}
