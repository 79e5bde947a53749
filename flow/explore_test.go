package flow

import (
	"testing"

	"github.com/mohitkumar/bookflow/model"
	"github.com/stretchr/testify/require"
)

func TestExplore(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"visits each index once on a cycle":  testExploreCycle,
		"never follows the renew loop edge":  testExploreRenewLoop,
		"stops descending when told to":      testExploreStop,
		"skips edges outside the workflow":   testExploreOutOfRange,
		"reports the predecessor":            testExploreFrom,
		"start outside the workflow is noop": testExploreBadStart,
	} {
		t.Run(scenario, fn)
	}
}

func testExploreCycle(t *testing.T) {
	wf := []model.Step{
		step(model.StatusRequested, 1),
		step(model.StatusConfirmed, 2, 0),
		step(model.StatusDelivered, 0, 1, 2),
	}
	visits := map[int]int{}
	Explore(wf, 0, nil, func(_ model.Step, index int, _ int) bool {
		visits[index]++
		return false
	})
	require.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, visits)
}

func testExploreRenewLoop(t *testing.T) {
	// RR is only reachable through the RC -> RR edge
	wf := []model.Step{
		step(model.StatusRequested, 1),
		step(model.StatusRenewConfirmed, 2),
		step(model.StatusRenewRequested),
	}
	var seen []int
	Explore(wf, 0, SuppressRenewLoop, func(_ model.Step, index int, _ int) bool {
		seen = append(seen, index)
		return false
	})
	require.Equal(t, []int{0, 1}, seen)

	seen = nil
	Explore(wf, 0, nil, func(_ model.Step, index int, _ int) bool {
		seen = append(seen, index)
		return false
	})
	require.Equal(t, []int{0, 1, 2}, seen)
}

func testExploreStop(t *testing.T) {
	wf := []model.Step{
		step(model.StatusRequested, 1, 3),
		step(model.StatusConfirmed, 2),
		step(model.StatusDelivered),
		step(model.StatusReturnRequested),
	}
	var seen []int
	Explore(wf, 0, nil, func(s model.Step, index int, _ int) bool {
		seen = append(seen, index)
		return s.Status == model.StatusConfirmed
	})
	require.Equal(t, []int{0, 1, 3}, seen)
}

func testExploreOutOfRange(t *testing.T) {
	wf := []model.Step{
		step(model.StatusRequested, -1, 7, 1),
		step(model.StatusConfirmed),
	}
	var seen []int
	Explore(wf, 0, nil, func(_ model.Step, index int, _ int) bool {
		seen = append(seen, index)
		return false
	})
	require.Equal(t, []int{0, 1}, seen)
}

func testExploreFrom(t *testing.T) {
	wf := NewBorrowWorkflow(fixedNow)
	from := map[int]int{}
	Explore(wf, 0, SuppressRenewLoop, func(_ model.Step, index int, f int) bool {
		from[index] = f
		return false
	})
	require.Equal(t, map[int]int{0: -1, 1: 0, 2: 1, 3: 2, 4: 3, 5: 4, 6: 5, 7: 6}, from)
}

func testExploreBadStart(t *testing.T) {
	called := false
	Explore(NewBorrowWorkflow(fixedNow), 8, nil, func(model.Step, int, int) bool {
		called = true
		return false
	})
	require.False(t, called)
}

func TestReachableAndAncestors(t *testing.T) {
	wf := NewBorrowWorkflow(fixedNow)
	require.Equal(t, []int{4, 5, 6, 7}, Reachable(wf, 3, SuppressRenewLoop))
	require.Equal(t, []int{5, 6, 7}, Reachable(wf, 4, SuppressRenewLoop))
	require.Equal(t, []int{3, 5, 6, 7}, Reachable(wf, 4, nil))

	br := loan(fixedNow, 1, 2, 3, 4)
	require.Equal(t, map[int]bool{4: true, 3: true, 2: true, 1: true, 0: true}, Ancestors(br.Workflow, 4))

	// a renewal loop in the back links terminates
	br.Workflow[3].LastStepIndex = 4
	require.Equal(t, map[int]bool{4: true, 3: true}, Ancestors(br.Workflow, 4))
}
