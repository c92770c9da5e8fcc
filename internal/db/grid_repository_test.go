package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinding"
	"github.com/udisondev/jumppath/internal/testutil"
)

// GridRepositorySuite runs against a real PostgreSQL.
type GridRepositorySuite struct {
	suite.Suite
	ctx  context.Context
	db   *DB
	repo *GridRepository
}

func (s *GridRepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	dsn := testutil.PostgresDSN(s.T())

	version, err := RunMigrations(s.ctx, dsn)
	s.Require().NoError(err)
	s.Equal(int64(1), version)

	// A second run applies nothing.
	version, err = RunMigrations(s.ctx, dsn)
	s.Require().NoError(err)
	s.Equal(int64(1), version)

	s.db, err = New(s.ctx, dsn)
	s.Require().NoError(err)
	s.repo = NewGridRepository(s.db.Pool())
}

func (s *GridRepositorySuite) SetupTest() {
	_, err := s.db.Pool().Exec(s.ctx, "TRUNCATE TABLE tile_grids, tile_grid_cells CASCADE")
	s.Require().NoError(err)
}

func (s *GridRepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func testGraph() *gridmap.Graph {
	g := gridmap.New(gridmap.Step{X: 16, Y: 8})
	g.Update(func(grid *pathfinding.Grid) {
		for x := -2; x < 3; x++ {
			grid.Set(x, 4, pathfinding.Floor)
		}
		grid.Set(-2, 3, pathfinding.Untraversable)
		grid.Set(1, 1, pathfinding.CharacterOccupied)
		grid.Set(5, 5, pathfinding.Air)
	})
	return g
}

func (s *GridRepositorySuite) TestSaveLoad() {
	s.Require().NoError(s.repo.Save(s.ctx, "arena", testGraph()))

	g, err := s.repo.Load(s.ctx, "arena")
	s.Require().NoError(err)

	s.Equal(gridmap.Step{X: 16, Y: 8}, g.Step())
	snap := g.Snapshot()
	s.Equal(7, snap.UsedCellCount(), "air cells are not stored")
	s.Equal(pathfinding.Floor, snap.Get(-2, 4))
	s.Equal(pathfinding.Untraversable, snap.Get(-2, 3))
	s.Equal(pathfinding.CharacterOccupied, snap.Get(1, 1))
}

func (s *GridRepositorySuite) TestSaveReplaces() {
	s.Require().NoError(s.repo.Save(s.ctx, "arena", testGraph()))

	small := gridmap.New(gridmap.Step{X: 32, Y: 32})
	small.Update(func(grid *pathfinding.Grid) {
		grid.Set(0, 0, pathfinding.Floor)
	})
	s.Require().NoError(s.repo.Save(s.ctx, "arena", small))

	g, err := s.repo.Load(s.ctx, "arena")
	s.Require().NoError(err)
	s.Equal(gridmap.Step{X: 32, Y: 32}, g.Step())
	s.Equal(1, g.Snapshot().UsedCellCount())
}

func (s *GridRepositorySuite) TestSaveEmpty() {
	s.Require().NoError(s.repo.Save(s.ctx, "void", gridmap.New(gridmap.Step{X: 1, Y: 1})))

	g, err := s.repo.Load(s.ctx, "void")
	s.Require().NoError(err)
	s.Equal(0, g.Snapshot().UsedCellCount())
}

func (s *GridRepositorySuite) TestLoadMissing() {
	_, err := s.repo.Load(s.ctx, "absent")
	s.ErrorIs(err, ErrGridNotFound)
}

func (s *GridRepositorySuite) TestListAndDelete() {
	s.Require().NoError(s.repo.Save(s.ctx, "b-level", testGraph()))
	s.Require().NoError(s.repo.Save(s.ctx, "a-level", gridmap.New(gridmap.Step{X: 4, Y: 4})))

	grids, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(grids, 2)
	s.Equal("a-level", grids[0].Name)
	s.Equal(0, grids[0].Cells)
	s.Equal("b-level", grids[1].Name)
	s.Equal(7, grids[1].Cells)
	s.Equal(gridmap.Step{X: 16, Y: 8}, grids[1].Step)
	s.False(grids[1].UpdatedAt.IsZero())

	s.Require().NoError(s.repo.Delete(s.ctx, "b-level"))
	s.ErrorIs(s.repo.Delete(s.ctx, "b-level"), ErrGridNotFound)

	_, err = s.repo.Load(s.ctx, "b-level")
	s.ErrorIs(err, ErrGridNotFound)

	var cells int
	s.Require().NoError(s.db.Pool().QueryRow(s.ctx, "SELECT COUNT(*) FROM tile_grid_cells").Scan(&cells))
	s.Equal(0, cells, "cells are deleted with their grid")
}

func TestGridRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	suite.Run(t, new(GridRepositorySuite))
}
