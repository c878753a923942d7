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

// Tree is a labeled node with ordered children.
//
// Trees are owned exclusively by the request that generated them and must
// not be mutated after construction; the traversal routines only read.
type Tree struct {
	Value    string  `json:"value"`
	Children []*Tree `json:"children"`
}

// =============================================================================
// Tree Traversal Variants
// =============================================================================

// TraverseNaive returns the pre-order visit sequence via recursive descent.
//
// Visits the node, then recurses into each child in order. Fails with
// DepthExceededError once the descent passes the traversal ceiling (default
// 1000). The ceiling simulates stack-overflow risk; it is not a real
// platform limit.
func (e *Engine) TraverseNaive(root *Tree) ([]string, error) {
	if root == nil {
		return []string{}, nil
	}
	return e.traverseNaive(root, 0)
}

func (e *Engine) traverseNaive(node *Tree, depth int) ([]string, error) {
	if depth > e.traversalCeiling {
		return nil, &DepthExceededError{Op: "tree_traversal_naive", Depth: depth, Limit: e.traversalCeiling}
	}
	results := []string{node.Value}
	for _, child := range node.Children {
		sub, err := e.traverseNaive(child, depth+1)
		if err != nil {
			return nil, err
		}
		results = append(results, sub...)
	}
	return results, nil
}

// TraverseIterative returns the same pre-order sequence as TraverseNaive
// using an explicit stack, so arbitrarily deep trees never blow the call
// stack. Children are pushed in reverse so pop order matches the naive
// visit order exactly.
func (e *Engine) TraverseIterative(root *Tree) []string {
	if root == nil {
		return []string{}
	}
	stack := []*Tree{root}
	results := make([]string, 0)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		results = append(results, node.Value)
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return results
}
