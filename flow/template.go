package flow

import (
	"time"

	"github.com/mohitkumar/bookflow/model"
)

// NewBorrowWorkflow builds the workflow of a fresh loan. The request step is
// completed at creation.
//
//	R -> C -> D -> RR -> RC -> RR ...
//	          |           |
//	          +---> RTR <-+ -> RTC -> RT
func NewBorrowWorkflow(now time.Time) []model.Step {
	all := model.RolesOf(model.RoleBorrower, model.RoleLibworker, model.RoleKeeper, model.RoleMaster)
	borrowerSide := model.RolesOf(model.RoleBorrower, model.RoleLibworker, model.RoleMaster)
	step := func(wt model.WorkflowType, st model.Status, actor model.Role, last int, related model.RoleSet, next ...int) model.Step {
		return model.Step{
			WorkflowType:  wt,
			Status:        st,
			ActorRole:     actor,
			NextStepIndex: next,
			LastStepIndex: last,
			RelatedRoles:  related,
		}
	}
	wf := []model.Step{
		step(model.WorkflowBorrow, model.StatusRequested, model.RoleLibworker, 0, borrowerSide, 1),
		step(model.WorkflowBorrow, model.StatusConfirmed, model.RoleKeeper, 0, all, 2),
		step(model.WorkflowBorrow, model.StatusDelivered, model.RoleBorrower, 1, all, 3, 5),
		step(model.WorkflowRenew, model.StatusRenewRequested, model.RoleLibworker, 2, borrowerSide, 4),
		step(model.WorkflowRenew, model.StatusRenewConfirmed, model.RoleBorrower, 3, borrowerSide, 3, 5),
		step(model.WorkflowReturn, model.StatusReturnRequested, model.RoleLibworker, 2, borrowerSide, 6),
		step(model.WorkflowReturn, model.StatusReturnConfirmed, model.RoleKeeper, 5, all, 7),
		step(model.WorkflowReturn, model.StatusReturned, model.RoleLibworker, 6, all),
	}
	wf[0].Completed = true
	wf[0].ActionDate = now.UnixMilli()
	return wf
}
