package flow

import "github.com/mohitkumar/bookflow/model"

type DateEntry struct {
	Status     model.Status `json:"status"`
	ActionDate int64        `json:"action_date"`
}

// DateHistory lists the completed steps from the root. A branch ends at its
// first incomplete step.
func DateHistory(workflow []model.Step) []DateEntry {
	var dates []DateEntry
	Explore(workflow, 0, SuppressRenewLoop, func(step model.Step, _ int, _ int) bool {
		if !step.Completed {
			return true
		}
		dates = append(dates, DateEntry{Status: step.Status, ActionDate: step.ActionDate})
		return false
	})
	return dates
}

type LinearStep struct {
	Index       int          `json:"index"`
	Status      model.Status `json:"status"`
	Completed   bool         `json:"completed"`
	ActionDate  int64        `json:"action_date,omitempty"`
	CompletedBy model.Role   `json:"completed_by,omitempty"`
}

// LinearView is the stepper of the sub-workflow the current step belongs to.
type LinearView struct {
	WorkflowType model.WorkflowType `json:"workflow_type"`
	Steps        []LinearStep       `json:"steps"`
	ActiveIndex  int                `json:"active_index"`
}

// LinearWorkflow keeps the steps sharing the current step's workflow type in
// visitation order. ActiveIndex is the number of completed ones minus one.
func LinearWorkflow(workflow []model.Step, stepIndex int) LinearView {
	if stepIndex < 0 || stepIndex >= len(workflow) {
		return LinearView{ActiveIndex: -1}
	}
	wfType := workflow[stepIndex].WorkflowType
	view := LinearView{WorkflowType: wfType}
	completed := 0
	Explore(workflow, 0, SuppressRenewLoop, func(step model.Step, index int, from int) bool {
		if step.WorkflowType != wfType {
			return false
		}
		ls := LinearStep{
			Index:     index,
			Status:    step.Status,
			Completed: step.Completed,
		}
		if step.Completed {
			completed++
			ls.ActionDate = step.ActionDate
			// the step was completed by whoever acts on its predecessor
			if from >= 0 {
				ls.CompletedBy = workflow[from].ActorRole
			}
		}
		view.Steps = append(view.Steps, ls)
		return false
	})
	view.ActiveIndex = completed - 1
	return view
}
