package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusware/regpos/internal/database"
	"github.com/campusware/regpos/internal/database/repository"
)

// Journal records operation runs and their per-record decisions in the local
// database, so past syncs and exports can be reviewed after the fact.
type Journal struct {
	runs *repository.RunRepo
}

func NewJournal(runs *repository.RunRepo) *Journal {
	return &Journal{runs: runs}
}

// Begin opens a run of the given kind and returns a sink that persists log
// lines under it.
func (j *Journal) Begin(ctx context.Context, kind string) (*RunSink, error) {
	run := repository.Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: database.Now(),
	}
	if err := j.runs.Insert(ctx, run); err != nil {
		return nil, err
	}
	return &RunSink{journal: j, runID: run.ID, ctx: ctx}, nil
}

// Finish closes a run with its outcome summary.
func (j *Journal) Finish(ctx context.Context, runID, summary string) error {
	return j.runs.Finish(ctx, runID, summary)
}

// RunSink persists log lines as run events. Progress updates are ephemeral
// and not journaled. Write failures are dropped; journaling never interrupts
// the operation it describes.
type RunSink struct {
	journal *Journal
	runID   string
	ctx     context.Context
}

func (s *RunSink) RunID() string { return s.runID }

func (s *RunSink) Notify(int) {}

func (s *RunSink) Log(level Level, msg string) {
	if level == LevelDebug {
		return
	}
	_ = s.journal.runs.AddEvent(s.ctx, s.runID, string(level), msg)
}
