package flow

import (
	"fmt"

	"github.com/mohitkumar/bookflow/model"
)

// Validate checks that a workflow can be evaluated: every edge and the
// current index point into the array, and every step carries known codes.
func Validate(workflow []model.Step, stepIndex int) error {
	if len(workflow) == 0 {
		return fmt.Errorf("workflow is empty")
	}
	if stepIndex < 0 || stepIndex >= len(workflow) {
		return fmt.Errorf("step index %d out of range [0,%d)", stepIndex, len(workflow))
	}
	for i, step := range workflow {
		if !step.Status.Valid() {
			return fmt.Errorf("step %d: unknown status %q", i, step.Status)
		}
		if !step.WorkflowType.Valid() {
			return fmt.Errorf("step %d: unknown workflow type %q", i, step.WorkflowType)
		}
		if step.WorkflowType != step.Status.WorkflowType() {
			return fmt.Errorf("step %d: status %s does not belong to %s", i, step.Status, step.WorkflowType)
		}
		if step.ActorRole == model.RoleNone || step.ActorRole == model.RoleMaster {
			return fmt.Errorf("step %d: invalid actor role %q", i, step.ActorRole)
		}
		if step.LastStepIndex < 0 || step.LastStepIndex >= len(workflow) {
			return fmt.Errorf("step %d: last step index %d out of range", i, step.LastStepIndex)
		}
		for _, next := range step.NextStepIndex {
			if next < 0 || next >= len(workflow) {
				return fmt.Errorf("step %d: next step index %d out of range", i, next)
			}
		}
	}
	if workflow[0].Status != model.StatusRequested {
		return fmt.Errorf("root step must be %s, got %s", model.StatusRequested, workflow[0].Status)
	}
	reached := false
	Explore(workflow, 0, nil, func(_ model.Step, index int, _ int) bool {
		if index == stepIndex {
			reached = true
		}
		return reached
	})
	if !reached {
		return fmt.Errorf("step %d is not reachable from the root", stepIndex)
	}
	return nil
}
