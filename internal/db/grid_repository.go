package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

// ErrGridNotFound is returned when no grid is stored under a name.
var ErrGridNotFound = errors.New("db: grid not found")

// GridInfo describes a stored grid.
type GridInfo struct {
	Name      string
	Step      gridmap.Step
	Cells     int
	UpdatedAt time.Time
}

// GridRepository stores static tile grids.
type GridRepository struct {
	pool *pgxpool.Pool
}

// NewGridRepository creates a new GridRepository.
func NewGridRepository(pool *pgxpool.Pool) *GridRepository {
	return &GridRepository{pool: pool}
}

// Save stores the static grid of g under name, replacing any previous cells.
func (r *GridRepository) Save(ctx context.Context, name string, g *gridmap.Graph) error {
	snapshot := g.Snapshot()
	step := g.Step()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "grid", name, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx,
		`INSERT INTO tile_grids (name, step_x, step_y, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (name) DO UPDATE
		 SET step_x = EXCLUDED.step_x, step_y = EXCLUDED.step_y, updated_at = now()`,
		name, step.X, step.Y,
	); err != nil {
		return fmt.Errorf("upserting grid %q: %w", name, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tile_grid_cells WHERE grid_name = $1`, name); err != nil {
		return fmt.Errorf("deleting old cells of grid %q: %w", name, err)
	}

	rows := make([][]any, 0, snapshot.UsedCellCount())
	snapshot.Each(func(x, y int, kind pathfinding.TileKind) {
		if kind == pathfinding.Air {
			return
		}
		rows = append(rows, []any{name, int32(x), int32(y), int16(kind)})
	})

	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"tile_grid_cells"},
			[]string{"grid_name", "x", "y", "kind"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("inserting cells of grid %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Debug("saved grid", "grid", name, "cells", len(rows))
	return nil
}

// Load rebuilds the graph stored under name.
func (r *GridRepository) Load(ctx context.Context, name string) (*gridmap.Graph, error) {
	var step gridmap.Step
	err := r.pool.QueryRow(ctx,
		`SELECT step_x, step_y FROM tile_grids WHERE name = $1`, name,
	).Scan(&step.X, &step.Y)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("grid %q: %w", name, ErrGridNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying grid %q: %w", name, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT x, y, kind FROM tile_grid_cells WHERE grid_name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("querying cells of grid %q: %w", name, err)
	}
	defer rows.Close()

	g := gridmap.New(step)
	var scanErr error
	count := 0
	g.Update(func(grid *pathfinding.Grid) {
		for rows.Next() {
			var x, y int32
			var kind int16
			if err := rows.Scan(&x, &y, &kind); err != nil {
				scanErr = err
				return
			}
			grid.Set(int(x), int(y), pathfinding.TileKind(kind))
			count++
		}
	})
	if scanErr != nil {
		return nil, fmt.Errorf("scanning cells of grid %q: %w", name, scanErr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cells of grid %q: %w", name, err)
	}

	slog.Info("grid loaded from database", "grid", name, "cells", count)
	return g, nil
}

// List returns every stored grid ordered by name.
func (r *GridRepository) List(ctx context.Context) ([]GridInfo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.name, g.step_x, g.step_y, g.updated_at, COUNT(c.grid_name)
		 FROM tile_grids g
		 LEFT JOIN tile_grid_cells c ON c.grid_name = g.name
		 GROUP BY g.name
		 ORDER BY g.name`)
	if err != nil {
		return nil, fmt.Errorf("querying grids: %w", err)
	}
	defer rows.Close()

	var grids []GridInfo
	for rows.Next() {
		var info GridInfo
		var cells int64
		if err := rows.Scan(&info.Name, &info.Step.X, &info.Step.Y, &info.UpdatedAt, &cells); err != nil {
			return nil, fmt.Errorf("scanning grid: %w", err)
		}
		info.Cells = int(cells)
		grids = append(grids, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grids: %w", err)
	}
	return grids, nil
}

// Delete removes the grid stored under name with all its cells.
func (r *GridRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tile_grids WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting grid %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("grid %q: %w", name, ErrGridNotFound)
	}
	return nil
}
