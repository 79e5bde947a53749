package flow

import (
	"time"

	"github.com/mohitkumar/bookflow/model"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// loan builds a borrow that moved forward along path from the request step.
func loan(now time.Time, path ...int) *model.BorrowRequest {
	wf := NewBorrowWorkflow(now)
	cur := 0
	for _, next := range path {
		wf[next].Completed = true
		wf[next].ActionDate = now.UnixMilli()
		wf[next].LastStepIndex = cur
		cur = next
	}
	return &model.BorrowRequest{Workflow: wf, StepIndex: cur}
}

func step(status model.Status, next ...int) model.Step {
	return model.Step{
		WorkflowType:  status.WorkflowType(),
		Status:        status,
		ActorRole:     model.RoleLibworker,
		NextStepIndex: next,
	}
}
