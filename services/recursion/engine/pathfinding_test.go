// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"errors"
	"reflect"
	"testing"
)

// =============================================================================
// Pathfinding Tests
// =============================================================================

func TestFindPathNaive_OpenGrid(t *testing.T) {
	eng := NewEngine()
	grid := make(Grid, 5)
	for i := range grid {
		grid[i] = make([]int, 5)
	}

	path, err := eng.FindPathNaive(grid, Cell{0, 0}, Cell{4, 4})
	if err != nil {
		t.Fatalf("FindPathNaive returned error: %v", err)
	}
	// 8 moves plus the start cell.
	if len(path) != 9 {
		t.Fatalf("path length = %d, want 9", len(path))
	}
	if path[0] != (Cell{0, 0}) || path[len(path)-1] != (Cell{4, 4}) {
		t.Errorf("path endpoints = %v ... %v, want (0,0) ... (4,4)", path[0], path[len(path)-1])
	}
	for i := 1; i < len(path); i++ {
		dx := path[i].X - path[i-1].X
		dy := path[i].Y - path[i-1].Y
		if dx*dx+dy*dy != 1 {
			t.Errorf("non-adjacent step %v -> %v", path[i-1], path[i])
		}
	}
}

func TestFindPathNaive_SoftFailures(t *testing.T) {
	eng := NewEngine()
	grid := GenerateGrid(5)

	tests := []struct {
		name   string
		start  Cell
		target Cell
	}{
		{"start out of bounds", Cell{-1, 0}, Cell{4, 4}},
		{"start on obstacle", Cell{1, 2}, Cell{4, 4}},
		{"target out of bounds", Cell{0, 0}, Cell{9, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := eng.FindPathNaive(grid, tt.start, tt.target)
			if err != nil {
				t.Fatalf("FindPathNaive returned error: %v", err)
			}
			if len(path) != 0 {
				t.Errorf("path = %v, want empty", path)
			}
		})
	}
}

func TestFindPathNaive_Deterministic(t *testing.T) {
	eng := NewEngine()
	grid := GenerateGrid(5)

	first, err := eng.FindPathNaive(grid, Cell{0, 0}, Cell{4, 4})
	if err != nil {
		t.Fatalf("FindPathNaive returned error: %v", err)
	}
	second, err := eng.FindPathNaive(grid, Cell{0, 0}, Cell{4, 4})
	if err != nil {
		t.Fatalf("FindPathNaive returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("tie-break not deterministic: %v vs %v", first, second)
	}
}

func TestFindPathNaive_DepthCeiling(t *testing.T) {
	// A tight ceiling forces the depth guard before exploration finishes.
	eng := NewEngine(WithPathfindingCeiling(3))
	grid := make(Grid, 5)
	for i := range grid {
		grid[i] = make([]int, 5)
	}

	_, err := eng.FindPathNaive(grid, Cell{0, 0}, Cell{4, 4})
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("error = %v, want ErrDepthExceeded", err)
	}
}

func TestFindPathBFS_ShortestPath(t *testing.T) {
	eng := NewEngine()

	t.Run("open grid", func(t *testing.T) {
		grid := make(Grid, 5)
		for i := range grid {
			grid[i] = make([]int, 5)
		}
		path := eng.FindPathBFS(grid, Cell{0, 0}, Cell{4, 4})
		if len(path) != 9 {
			t.Errorf("BFS path length = %d, want 9", len(path))
		}
	})

	t.Run("unreachable target", func(t *testing.T) {
		// Wall across the middle row.
		grid := make(Grid, 5)
		for i := range grid {
			grid[i] = make([]int, 5)
		}
		for y := 0; y < 5; y++ {
			grid[2][y] = ObstacleCell
		}
		path := eng.FindPathBFS(grid, Cell{0, 0}, Cell{4, 4})
		if len(path) != 0 {
			t.Errorf("path = %v, want empty", path)
		}
	})

	t.Run("never longer than naive", func(t *testing.T) {
		grid := GenerateGrid(5)
		naive, err := eng.FindPathNaive(grid, Cell{0, 0}, Cell{4, 4})
		if err != nil {
			t.Fatalf("FindPathNaive returned error: %v", err)
		}
		bfs := eng.FindPathBFS(grid, Cell{0, 0}, Cell{4, 4})
		if len(naive) > 0 && len(bfs) > len(naive) {
			t.Errorf("BFS path (%d) longer than naive path (%d)", len(bfs), len(naive))
		}
	})
}

func TestGenerateGrid_ObstacleStripe(t *testing.T) {
	grid := GenerateGrid(6)
	if len(grid) != 6 || len(grid[0]) != 6 {
		t.Fatalf("grid dimensions = %dx%d, want 6x6", len(grid), len(grid[0]))
	}

	mid := 3
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			expected := FreeCell
			if j == mid && i >= 1 && i < 5 && i%2 == 1 {
				expected = ObstacleCell
			}
			if grid[i][j] != expected {
				t.Errorf("grid[%d][%d] = %d, want %d", i, j, grid[i][j], expected)
			}
		}
	}
}

func TestGenerateGrid_Deterministic(t *testing.T) {
	if !reflect.DeepEqual(GenerateGrid(9), GenerateGrid(9)) {
		t.Error("GenerateGrid(9) not deterministic")
	}
	if len(GenerateGrid(0)) != 0 {
		t.Error("GenerateGrid(0) should be empty")
	}
}
