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

import "fmt"

// GenerateTree builds a degenerate single-child chain of depth+1 nodes
// ending in a leaf, the worst case for traversal depth. Deterministic: the
// same depth always yields a deep-equal tree. Non-positive depths yield a
// lone leaf.
func GenerateTree(depth int) *Tree {
	node := &Tree{Value: "leaf", Children: []*Tree{}}
	for d := 1; d <= depth; d++ {
		node = &Tree{Value: fmt.Sprintf("node_%d", d), Children: []*Tree{node}}
	}
	return node
}

// GenerateGrid builds a size x size grid of free cells with obstacles along
// a vertical stripe at every other row in the middle column. Deterministic
// and reproducible from size alone.
func GenerateGrid(size int) Grid {
	if size <= 0 {
		return Grid{}
	}
	grid := make(Grid, size)
	for i := range grid {
		grid[i] = make([]int, size)
	}
	for i := 1; i < size-1; i += 2 {
		grid[i][size/2] = ObstacleCell
	}
	return grid
}
