package engine

import (
	"github.com/mohitkumar/bookflow/flow"
	"github.com/mohitkumar/bookflow/model"
)

// moveForward completes target coming from cur. Steps after target that do
// not lead to cur are cleared. cur itself keeps its date when it lies after
// target, so a pending re-renewal still knows the last due date.
func moveForward(wf []model.Step, cur, target int, now int64) {
	ancestors := flow.Ancestors(wf, cur)
	for _, d := range flow.Reachable(wf, target, flow.SuppressRenewLoop) {
		switch {
		case d == cur:
			wf[d].Completed = false
		case !ancestors[d]:
			wf[d].Reset()
		}
	}
	wf[target].Completed = true
	wf[target].ActionDate = now
	wf[target].LastStepIndex = cur
}

// moveBackward returns from cur to target, which becomes current again.
func moveBackward(wf []model.Step, cur, target int) {
	ancestors := flow.Ancestors(wf, target)
	if !ancestors[cur] {
		wf[cur].Reset()
	}
	for _, d := range flow.Reachable(wf, target, flow.SuppressRenewLoop) {
		if d != cur && !ancestors[d] {
			wf[d].Reset()
		}
	}
	wf[target].Completed = true
}
