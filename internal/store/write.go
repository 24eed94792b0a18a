package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Run is one persisted analysis result.
type Run struct {
	ID            string
	Model         string
	CreatedAt     string
	LimitOrder    int
	MissionTime   float64
	Approximation string
	PTotal        float64
	PRare         float64
	AnalysisUS    int64 // Microseconds.
	ProbUS        int64
	ImpUS         int64
	Warnings      []string

	CutSets    []CutSet
	Importance []Importance
}

// CutSet is one persisted minimal cut set.
type CutSet struct {
	Rank        int
	Events      []string
	Probability float64
}

// Importance is one persisted set of importance factors.
type Importance struct {
	EventID string
	MIF     float64
	CIF     float64
	DIF     float64
	RAW     float64
	RRW     float64
}

// SaveRun inserts a run with its cut sets and importance rows in one
// transaction. Run ids are unique; saving the same id twice is an error.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, model, limit_order, mission_time, approximation,
		 p_total, p_rare, analysis_us, prob_us, imp_us, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Model,
		run.LimitOrder,
		run.MissionTime,
		run.Approximation,
		run.PTotal,
		run.PRare,
		run.AnalysisUS,
		run.ProbUS,
		run.ImpUS,
		strings.Join(run.Warnings, "\n"),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	for _, cs := range run.CutSets {
		events, err := json.Marshal(cs.Events)
		if err != nil {
			return fmt.Errorf("save run %s: encoding cut set %d: %w", run.ID, cs.Rank, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cut_sets (run_id, rank, events, probability)
			VALUES (?, ?, ?, ?)
		`, run.ID, cs.Rank, string(events), cs.Probability)
		if err != nil {
			return fmt.Errorf("save run %s: cut set %d: %w", run.ID, cs.Rank, err)
		}
	}

	for _, imp := range run.Importance {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO importance (run_id, event_id, mif, cif, dif, raw, rrw)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, imp.EventID, imp.MIF, imp.CIF, imp.DIF, imp.RAW, imp.RRW)
		if err != nil {
			return fmt.Errorf("save run %s: importance %s: %w", run.ID, imp.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}
