package flow

import "github.com/mohitkumar/bookflow/model"

// Transition is one action a viewer can submit for the current step.
type Transition struct {
	NextStepIndex int          `json:"next_step_index"`
	Status        model.Status `json:"status"`
	Backward      bool         `json:"backward"`
}

// Request turns the transition into the request the workflow engine expects.
func (t Transition) Request(masterKey, actUser, etag string) model.WorkflowRequest {
	return model.WorkflowRequest{
		MasterKey:     masterKey,
		ActUser:       actUser,
		NextStepIndex: t.NextStepIndex,
		Backward:      t.Backward,
		Etag:          etag,
	}
}

// RenewAllowed reports whether another renewal may be requested. A negative
// maximum means renewals are unlimited.
func RenewAllowed(renewedTimes, maxRenewTimes int) bool {
	return maxRenewTimes < 0 || renewedTimes < maxRenewTimes
}

// CanReject reports whether the step offers a transition back to its
// predecessor.
func CanReject(step model.Step) bool {
	return step.ActorRole == model.RoleLibworker &&
		step.Status != model.StatusRequested &&
		step.Status != model.StatusReturned
}

// CanAct reports whether a viewer holding roles may act on step.
func CanAct(step model.Step, roles model.RoleSet) bool {
	return roles.Intersects(model.RolesOf(step.ActorRole, model.RoleMaster))
}

// Transitions lists every transition the current step offers, ignoring who
// is looking.
func Transitions(br *model.BorrowRequest, maxRenewTimes int) []Transition {
	cur := br.CurrentStep()
	if cur == nil {
		return nil
	}
	var out []Transition
	for _, next := range cur.NextStepIndex {
		if next < 0 || next >= len(br.Workflow) {
			continue
		}
		status := br.Workflow[next].Status
		if status == model.StatusRenewRequested && !RenewAllowed(br.RenewedTimes, maxRenewTimes) {
			continue
		}
		out = append(out, Transition{NextStepIndex: next, Status: status})
	}
	if CanReject(*cur) {
		last := cur.LastStepIndex
		if last >= 0 && last < len(br.Workflow) {
			out = append(out, Transition{NextStepIndex: last, Status: br.Workflow[last].Status, Backward: true})
		}
	}
	return out
}

// Actions is Transitions filtered by the visibility gate. A viewer who is
// neither the actor of the current step nor MASTER gets nothing.
func Actions(br *model.BorrowRequest, roles model.RoleSet, maxRenewTimes int) []Transition {
	cur := br.CurrentStep()
	if cur == nil || !CanAct(*cur, roles) {
		return nil
	}
	return Transitions(br, maxRenewTimes)
}

// DeleteRoles are the roles allowed to withdraw a record.
var DeleteRoles = model.RolesOf(model.RoleBorrower, model.RoleLibworker, model.RoleMaster)

// CanDelete reports whether a record at status may be withdrawn.
func CanDelete(status model.Status) bool {
	switch status {
	case model.StatusRequested, model.StatusConfirmed, model.StatusReturned:
		return true
	}
	return false
}
