// Package sim provides the job model shared by all trace producers.
//
// # Reading Guide
//
//   - job.go: the Job descriptor, its attributes and the Factory contract
//   - rng.go: the seeded random source of generated traces
//
// # Architecture
//
// The sim package defines the job model; producers live in sub-packages:
//   - sim/trace/: the Producer contract, trace windows and error taxonomy
//   - sim/trace/file/: line-oriented trace file readers and their formats
//   - sim/trace/random/: synthetic trace generators
//
// Producers are generic over the job type. They never construct jobs
// directly; every job is built through a Factory supplied by the caller,
// so a scheduler under test can receive its own job representation.
// NewJob is the Factory for the Job type defined here.
package sim
