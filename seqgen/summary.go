package main

// RunSummary is storing seqgen run summary information.
type RunSummary struct {
	// Version stores seqgen version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Trees is the number of trees processed.
	Trees int `json:"trees"`
	// Replicates is the number of replicates per tree.
	Replicates int `json:"replicates"`
	// Resumed is the number of replicates restored from the checkpoint.
	Resumed int `json:"resumed,omitempty"`
	// Sequences is the number of sequences written.
	Sequences int `json:"sequences"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
}
