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

// Grid cell states.
const (
	FreeCell     = 0
	ObstacleCell = 1
)

// Grid is a fixed-size 2D matrix of cell states. Immutable once built;
// owned exclusively by the pathfinding request.
type Grid [][]int

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Neighbor exploration order: down, up, right, left. The order is the
// tie-break rule for equal-length paths and must not change.
var pathDirections = [4]Cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// =============================================================================
// Pathfinding Variants
// =============================================================================

// FindPathNaive searches grid for a path from start to target by exhaustive
// depth-first exploration.
//
// Description:
//
//	From each cell the four neighbors are explored in the fixed order down,
//	up, right, left. Cells already on the current path are skipped (cycle
//	detection), as are obstacles and out-of-bounds coordinates, all of which
//	fail softly by yielding no path. Among all complete paths discovered
//	below a cell the shortest by cell count wins; ties go to the
//	first-discovered path under the direction order.
//
// Outputs:
//   - []Cell: The winning path including the start cell, or an empty slice
//     when the target is unreachable (or start is blocked/out of bounds).
//   - error: DepthExceededError once the descent passes the pathfinding
//     ceiling (default 1000).
//
// Limitations:
//   - The result is NOT guaranteed globally shortest for all topologies;
//     the variant exists to demonstrate exponential path explosion.
//     Callers needing a true shortest path should use FindPathBFS.
func (e *Engine) FindPathNaive(grid Grid, start, target Cell) ([]Cell, error) {
	path, err := e.findPath(grid, start.X, start.Y, target.X, target.Y, nil, 0)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return []Cell{}, nil
	}
	return path, nil
}

func (e *Engine) findPath(grid Grid, x, y, tx, ty int, path []Cell, depth int) ([]Cell, error) {
	if depth > e.pathCeiling {
		return nil, &DepthExceededError{Op: "pathfinding_naive", Depth: depth, Limit: e.pathCeiling}
	}

	// Cycle detection: never revisit a cell on the current path.
	for _, c := range path {
		if c.X == x && c.Y == y {
			return nil, nil
		}
	}
	if x < 0 || x >= len(grid) || y < 0 || y >= len(grid[0]) || grid[x][y] == ObstacleCell {
		return nil, nil
	}

	current := make([]Cell, len(path), len(path)+1)
	copy(current, path)
	current = append(current, Cell{x, y})

	if x == tx && y == ty {
		return current, nil
	}

	var best []Cell
	for _, d := range pathDirections {
		candidate, err := e.findPath(grid, x+d.X, y+d.Y, tx, ty, current, depth+1)
		if err != nil {
			return nil, err
		}
		// Strict less-than keeps the first-discovered path on ties.
		if candidate != nil && (best == nil || len(candidate) < len(best)) {
			best = candidate
		}
	}
	return best, nil
}

// FindPathBFS is the optimized counterpart: breadth-first search that
// guarantees a true shortest path. Neighbors expand in the same down, up,
// right, left order, so among shortest paths the result is deterministic.
// Returns an empty slice when no path exists.
func (e *Engine) FindPathBFS(grid Grid, start, target Cell) []Cell {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return []Cell{}
	}
	inBounds := func(c Cell) bool {
		return c.X >= 0 && c.X < len(grid) && c.Y >= 0 && c.Y < len(grid[0])
	}
	if !inBounds(start) || grid[start.X][start.Y] == ObstacleCell {
		return []Cell{}
	}

	parent := map[Cell]Cell{start: start}
	queue := []Cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			// Walk parents back to start, then reverse.
			path := []Cell{cur}
			for cur != start {
				cur = parent[cur]
				path = append(path, cur)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, d := range pathDirections {
			next := Cell{cur.X + d.X, cur.Y + d.Y}
			if !inBounds(next) || grid[next.X][next.Y] == ObstacleCell {
				continue
			}
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	return []Cell{}
}
