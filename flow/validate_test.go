package flow

import (
	"testing"

	"github.com/mohitkumar/bookflow/model"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(NewBorrowWorkflow(fixedNow), 0))
	br := loan(fixedNow, 1, 2, 3, 4, 5)
	require.NoError(t, Validate(br.Workflow, br.StepIndex))

	for name, tc := range map[string]struct {
		mutate    func(wf []model.Step) []model.Step
		stepIndex int
	}{
		"empty": {
			mutate: func([]model.Step) []model.Step { return nil },
		},
		"step index out of range": {
			mutate:    func(wf []model.Step) []model.Step { return wf },
			stepIndex: 8,
		},
		"unknown status": {
			mutate: func(wf []model.Step) []model.Step {
				wf[3].Status = "X"
				return wf
			},
		},
		"status in the wrong sub workflow": {
			mutate: func(wf []model.Step) []model.Step {
				wf[3].WorkflowType = model.WorkflowReturn
				return wf
			},
		},
		"master cannot be the actor": {
			mutate: func(wf []model.Step) []model.Step {
				wf[1].ActorRole = model.RoleMaster
				return wf
			},
		},
		"dangling edge": {
			mutate: func(wf []model.Step) []model.Step {
				wf[2].NextStepIndex = append(wf[2].NextStepIndex, 9)
				return wf
			},
		},
		"dangling back link": {
			mutate: func(wf []model.Step) []model.Step {
				wf[2].LastStepIndex = -3
				return wf
			},
		},
		"root is not a request": {
			mutate: func(wf []model.Step) []model.Step {
				return wf[1:]
			},
		},
		"current step unreachable": {
			mutate: func(wf []model.Step) []model.Step {
				wf[1].NextStepIndex = nil
				return wf
			},
			stepIndex: 2,
		},
	} {
		t.Run(name, func(t *testing.T) {
			wf := tc.mutate(NewBorrowWorkflow(fixedNow))
			require.Error(t, Validate(wf, tc.stepIndex))
		})
	}
}

func TestNewBorrowWorkflow(t *testing.T) {
	wf := NewBorrowWorkflow(fixedNow)
	require.Len(t, wf, 8)
	require.True(t, wf[0].Completed)
	require.Equal(t, fixedNow.UnixMilli(), wf[0].ActionDate)
	for _, s := range wf[1:] {
		require.False(t, s.Completed)
		require.Zero(t, s.ActionDate)
	}
	require.Equal(t, []int{3, 5}, wf[2].NextStepIndex)
	require.Equal(t, []int{3, 5}, wf[4].NextStepIndex)
	require.Empty(t, wf[7].NextStepIndex)
}
