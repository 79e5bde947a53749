// Package flow evaluates borrow workflows: it walks the step graph of a
// record and derives what a viewer sees and may do with it.
package flow

import "github.com/mohitkumar/bookflow/model"

// Visitor is called once per reached step. from is the index of the step the
// walk arrived from, -1 for the start step. Returning true stops the walk
// from descending below this step; siblings are still explored.
type Visitor func(step model.Step, index int, from int) bool

// EdgeFilter reports whether the edge from -> to may be followed.
type EdgeFilter func(from, to model.Step) bool

// SuppressRenewLoop refuses the edge from a confirmed renewal back into a
// renewal request.
func SuppressRenewLoop(from, to model.Step) bool {
	return !(from.Status == model.StatusRenewConfirmed && to.Status == model.StatusRenewRequested)
}

// Explore walks workflow depth first from start following next_step_index
// edges. Each index is visited at most once, whatever the shape of the
// graph. Edges pointing outside the workflow are ignored.
func Explore(workflow []model.Step, start int, filter EdgeFilter, visit Visitor) {
	if start < 0 || start >= len(workflow) {
		return
	}
	visited := make([]bool, len(workflow))
	var walk func(index, from int)
	walk = func(index, from int) {
		visited[index] = true
		step := workflow[index]
		if visit(step, index, from) {
			return
		}
		for _, next := range step.NextStepIndex {
			if next < 0 || next >= len(workflow) || visited[next] {
				continue
			}
			if filter != nil && !filter(step, workflow[next]) {
				continue
			}
			walk(next, index)
		}
	}
	walk(start, -1)
}

// Reachable returns the indices reachable from start, start excluded, in
// visitation order.
func Reachable(workflow []model.Step, start int, filter EdgeFilter) []int {
	var out []int
	Explore(workflow, start, filter, func(_ model.Step, index int, _ int) bool {
		if index != start {
			out = append(out, index)
		}
		return false
	})
	return out
}

// Ancestors follows last_step_index back from index and returns the chain,
// index included. The chain stops at the root or at the first repeat.
func Ancestors(workflow []model.Step, index int) map[int]bool {
	chain := make(map[int]bool)
	for index >= 0 && index < len(workflow) && !chain[index] {
		chain[index] = true
		if index == 0 {
			break
		}
		index = workflow[index].LastStepIndex
	}
	return chain
}
