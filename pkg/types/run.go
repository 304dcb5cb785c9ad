// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage names a pipeline stage.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageProcess  Stage = "process"
	StagePortrait Stage = "portrait"
)

// RunStatus is the outcome of a stage run for one person.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunSucceeded RunStatus = "succeeded"
	RunSkipped   RunStatus = "skipped"
	RunFailed    RunStatus = "failed"
)

// StageRun is one ledger entry: a single stage executed for a single person.
type StageRun struct {
	ID         string    `json:"id" yaml:"id"`
	Person     string    `json:"person" yaml:"person"`
	Stage      Stage     `json:"stage" yaml:"stage"`
	Status     RunStatus `json:"status" yaml:"status"`
	OutputPath string    `json:"output_path,omitempty" yaml:"output_path,omitempty"`

	// Detail carries the error message for failed runs or the skip reason.
	Detail     string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// BatchSummary holds counts from a multi-person stage run.
type BatchSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Total returns the number of persons processed.
func (s BatchSummary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// HasFailures reports whether any person failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}
