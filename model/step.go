package model

type Status string

const (
	StatusRequested       Status = "R"
	StatusConfirmed       Status = "C"
	StatusDelivered       Status = "D"
	StatusRenewRequested  Status = "RR"
	StatusRenewConfirmed  Status = "RC"
	StatusReturnRequested Status = "RTR"
	StatusReturnConfirmed Status = "RTC"
	StatusReturned        Status = "RT"
)

var knownStatuses = map[Status]WorkflowType{
	StatusRequested:       WorkflowBorrow,
	StatusConfirmed:       WorkflowBorrow,
	StatusDelivered:       WorkflowBorrow,
	StatusRenewRequested:  WorkflowRenew,
	StatusRenewConfirmed:  WorkflowRenew,
	StatusReturnRequested: WorkflowReturn,
	StatusReturnConfirmed: WorkflowReturn,
	StatusReturned:        WorkflowReturn,
}

// Valid reports whether s is one of the eight lifecycle codes.
func (s Status) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// WorkflowType returns the sub-workflow a status belongs to.
func (s Status) WorkflowType() WorkflowType {
	return knownStatuses[s]
}

type WorkflowType string

const (
	WorkflowBorrow WorkflowType = "BORROW"
	WorkflowRenew  WorkflowType = "RENEW"
	WorkflowReturn WorkflowType = "RETURN"
)

func (w WorkflowType) Valid() bool {
	switch w {
	case WorkflowBorrow, WorkflowRenew, WorkflowReturn:
		return true
	}
	return false
}

// Step is one node of a borrow workflow. Edges are indices into the
// workflow slice that owns the step.
type Step struct {
	WorkflowType  WorkflowType `json:"workflow_type"`
	Status        Status       `json:"status"`
	ActorRole     Role         `json:"actor_role"`
	Completed     bool         `json:"completed"`
	ActionDate    int64        `json:"action_date"`
	NextStepIndex []int        `json:"next_step_index"`
	LastStepIndex int          `json:"last_step_index"`
	RelatedRoles  RoleSet      `json:"related_roles"`
}

// Reset marks the step as not executed.
func (s *Step) Reset() {
	s.Completed = false
	s.ActionDate = 0
}

// FindStatus returns the index of the first step with the given status, or -1.
func FindStatus(workflow []Step, status Status) int {
	for i := range workflow {
		if workflow[i].Status == status {
			return i
		}
	}
	return -1
}
