package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/autotile/internal/autotile"
	"github.com/lawnchairsociety/autotile/internal/logger"
)

var ErrRunNotFound = errors.New("store: run not found")

// Run is a persisted resolution run
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time

	Source string // where the layout came from, e.g. "maze 10x10"
	Rules  string
	Seed   int64
	Width  int
	Height int

	Passes          int
	Stalls          int
	Commits         int
	Verified        int
	ForcedCollapses int
	DurationMS      int64

	// Tiles holds tile ids row by row. ListRuns leaves it nil.
	Tiles        [][]int
	Unresolvable []autotile.Point

	unresolvableCount int
}

// UnresolvableCount returns the number of cells left on the fallback tile
func (r *Run) UnresolvableCount() int {
	if r.Unresolvable != nil {
		return len(r.Unresolvable)
	}
	return r.unresolvableCount
}

// NewRun captures a finished solver run over g
func NewRun(source, rules string, g *autotile.MapGrid, result *autotile.Result) *Run {
	return &Run{
		Source:          source,
		Rules:           rules,
		Seed:            result.Seed,
		Width:           g.Width(),
		Height:          g.Height(),
		Passes:          result.Passes,
		Stalls:          result.Stalls,
		Commits:         result.Commits,
		Verified:        result.Verified,
		ForcedCollapses: result.ForcedCollapses,
		DurationMS:      result.Duration.Milliseconds(),
		Tiles:           g.Rows(),
		Unresolvable:    append([]autotile.Point{}, result.Unresolvable...),
	}
}

// SaveRun inserts run and its tiles in one transaction. A nil ID is replaced
// with a new random UUID and CreatedAt defaults to now.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.qb.Build(`
		INSERT INTO runs (id, created_at, source, rules, seed, width, height,
			passes, stalls, commits, verified, forced_collapses, unresolvable, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), run.ID, run.CreatedAt, run.Source, run.Rules, run.Seed, run.Width, run.Height,
		run.Passes, run.Stalls, run.Commits, run.Verified, run.ForcedCollapses,
		run.UnresolvableCount(), run.DurationMS)
	if err != nil {
		if s.dialect.IsDuplicateKeyError(err) {
			return fmt.Errorf("run %s already saved: %w", run.ID, err)
		}
		return err
	}

	stmt, err := tx.PrepareContext(ctx, s.qb.Build(`
		INSERT INTO run_tiles (run_id, x, y, tile_id, unresolvable) VALUES (?, ?, ?, ?, ?)
	`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	flagged := make(autotile.PointSet, len(run.Unresolvable))
	for _, p := range run.Unresolvable {
		flagged[p] = struct{}{}
	}
	for y, row := range run.Tiles {
		for x, id := range row {
			if _, err := stmt.ExecContext(ctx, run.ID, x, y, id, flagged.Has(autotile.Point{X: x, Y: y})); err != nil {
				return fmt.Errorf("failed to save tile (%d,%d): %w", x, y, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Debug("Run saved", "run_id", run.ID.String(), "width", run.Width, "height", run.Height)
	return nil
}

const runColumns = `id, created_at, source, rules, seed, width, height,
	passes, stalls, commits, verified, forced_collapses, unresolvable, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	err := row.Scan(&run.ID, &run.CreatedAt, &run.Source, &run.Rules, &run.Seed, &run.Width, &run.Height,
		&run.Passes, &run.Stalls, &run.Commits, &run.Verified, &run.ForcedCollapses,
		&run.unresolvableCount, &run.DurationMS)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LoadRun returns the run with its tiles, or ErrRunNotFound
func (s *Store) LoadRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx, s.qb.Build(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.qb.Build(`
		SELECT x, y, tile_id, unresolvable FROM run_tiles WHERE run_id = ? ORDER BY y, x
	`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Tiles = make([][]int, run.Height)
	for y := range run.Tiles {
		run.Tiles[y] = make([]int, run.Width)
	}
	run.Unresolvable = []autotile.Point{}
	for rows.Next() {
		var x, y, tileID int
		var unresolvable bool
		if err := rows.Scan(&x, &y, &tileID, &unresolvable); err != nil {
			return nil, err
		}
		if y < 0 || y >= run.Height || x < 0 || x >= run.Width {
			return nil, fmt.Errorf("run %s has tile (%d,%d) outside %dx%d", id, x, y, run.Width, run.Height)
		}
		run.Tiles[y][x] = tileID
		if unresolvable {
			run.Unresolvable = append(run.Unresolvable, autotile.Point{X: x, Y: y})
		}
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs without their tiles. limit <= 0 means
// no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.qb.Build(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its tiles
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.qb.Build(`DELETE FROM runs WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}
