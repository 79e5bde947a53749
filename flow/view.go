package flow

import (
	"time"

	"github.com/mohitkumar/bookflow/model"
)

// View is everything needed to render one borrow record for its viewer.
type View struct {
	Id           string              `json:"id"`
	Role         model.RoleSet       `json:"role"`
	Borrow       model.BorrowRequest `json:"borrow"`
	Current      model.Step          `json:"current"`
	Dates        []DateEntry         `json:"dates"`
	Linear       LinearView          `json:"linear"`
	Actions      []Transition        `json:"actions"`
	Deletable    bool                `json:"deletable"`
	Expiry       ExpiryInfo          `json:"expiry"`
	RenewAllowed bool                `json:"renew_allowed"`
}

// BuildView evaluates a stored record. It fails only when the workflow
// itself is malformed.
func BuildView(b *model.Borrow, cfg model.BookConfig, now time.Time) (*View, error) {
	br := &b.DataOrImage
	if err := Validate(br.Workflow, br.StepIndex); err != nil {
		return nil, err
	}
	cur := *br.CurrentStep()
	v := &View{
		Id:           b.Id,
		Role:         b.Role,
		Borrow:       *br,
		Current:      cur,
		Dates:        DateHistory(br.Workflow),
		Linear:       LinearWorkflow(br.Workflow, br.StepIndex),
		Actions:      Actions(br, b.Role, cfg.MaxRenewTimes),
		Expiry:       Expiry(br.Workflow, br.StepIndex, cfg.ExpireDays, now),
		RenewAllowed: RenewAllowed(br.RenewedTimes, cfg.MaxRenewTimes),
	}
	v.Deletable = CanDelete(cur.Status) && b.Role.Intersects(DeleteRoles)
	return v, nil
}
