// Package ingest holds the types shared by the workout importers.
package ingest

import (
	"context"
	"io"
)

// Result holds the outcome of an import.
type Result struct {
	Sessions         int      `json:"sessions"`
	SetsReceived     int      `json:"sets_received"`
	SetsImported     int      `json:"sets_imported"`
	SetsSkipped      int      `json:"sets_skipped"`
	SetsRejected     int      `json:"sets_rejected"`
	WarmupsSkipped   int      `json:"warmups_skipped"`
	RecordsAchieved  int      `json:"records_achieved"`
	ExercisesCreated []string `json:"exercises_created,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	DryRun           bool     `json:"dry_run,omitempty"`

	Message string `json:"message,omitempty"`
}

// Importer turns an export file into stored workout sets.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (*Result, error)
}
