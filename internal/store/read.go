package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates a run id with no stored result.
var ErrNotFound = errors.New("store: run not found")

// ListRuns returns run summaries newest-first. Cut sets and importance
// rows are not populated; use LoadRun for the full record.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, created_at, limit_order, mission_time, approximation,
		       p_total, p_rare, analysis_us, prob_us, imp_us, warnings
		FROM runs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// LoadRun returns one run with its cut sets and importance rows.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, model, created_at, limit_order, mission_time, approximation,
		       p_total, p_rare, analysis_us, prob_us, imp_us, warnings
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, events, probability
		FROM cut_sets
		WHERE run_id = ?
		ORDER BY rank
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load run %s: cut sets: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var cs CutSet
		var events string
		if err := rows.Scan(&cs.Rank, &events, &cs.Probability); err != nil {
			return nil, fmt.Errorf("load run %s: cut sets: %w", id, err)
		}
		if err := json.Unmarshal([]byte(events), &cs.Events); err != nil {
			return nil, fmt.Errorf("load run %s: decoding cut set %d: %w", id, cs.Rank, err)
		}
		run.CutSets = append(run.CutSets, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load run %s: cut sets: %w", id, err)
	}

	impRows, err := s.db.QueryContext(ctx, `
		SELECT event_id, mif, cif, dif, raw, rrw
		FROM importance
		WHERE run_id = ?
		ORDER BY event_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load run %s: importance: %w", id, err)
	}
	defer impRows.Close()
	for impRows.Next() {
		var imp Importance
		if err := impRows.Scan(&imp.EventID, &imp.MIF, &imp.CIF, &imp.DIF, &imp.RAW, &imp.RRW); err != nil {
			return nil, fmt.Errorf("load run %s: importance: %w", id, err)
		}
		run.Importance = append(run.Importance, imp)
	}
	if err := impRows.Err(); err != nil {
		return nil, fmt.Errorf("load run %s: importance: %w", id, err)
	}
	return &run, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var warnings string
	err := row.Scan(
		&run.ID, &run.Model, &run.CreatedAt, &run.LimitOrder, &run.MissionTime,
		&run.Approximation, &run.PTotal, &run.PRare,
		&run.AnalysisUS, &run.ProbUS, &run.ImpUS, &warnings,
	)
	if err != nil {
		return Run{}, err
	}
	if warnings != "" {
		run.Warnings = strings.Split(warnings, "\n")
	}
	return run, nil
}
