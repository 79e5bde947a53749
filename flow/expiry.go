package flow

import (
	"fmt"
	"math"
	"time"

	"github.com/mohitkumar/bookflow/model"
)

type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityOverdue Severity = "overdue"
)

// WarningDays is how close to the due date a loan turns into a warning.
const WarningDays = 7

func (s Severity) Color() string {
	switch s {
	case SeverityOverdue:
		return "red"
	case SeverityWarning:
		return "yellow"
	case SeverityNormal:
		return "green"
	}
	return ""
}

type ExpiryInfo struct {
	Active   bool     `json:"active"`
	Days     int      `json:"days"`
	Message  string   `json:"message,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Color    string   `json:"color,omitempty"`
	DueDate  int64    `json:"due_date,omitempty"`
}

// DueFrom returns the milestone the loan period runs from: the confirmed
// renewal if it has a date, the delivery otherwise. ok is false when neither
// has happened.
func DueFrom(workflow []model.Step) (model.Step, bool) {
	for _, status := range []model.Status{model.StatusRenewConfirmed, model.StatusDelivered} {
		if i := model.FindStatus(workflow, status); i >= 0 && workflow[i].ActionDate != 0 {
			return workflow[i], true
		}
	}
	return model.Step{}, false
}

// Expiry derives the due-date badge of a loan. It is inactive when
// expireDays is not configured (-1), when the book is already returned, or
// when the loan has not been delivered yet.
func Expiry(workflow []model.Step, stepIndex int, expireDays int, now time.Time) ExpiryInfo {
	if expireDays < 0 || stepIndex < 0 || stepIndex >= len(workflow) {
		return ExpiryInfo{}
	}
	if workflow[stepIndex].Status == model.StatusReturned {
		return ExpiryInfo{}
	}
	from, ok := DueFrom(workflow)
	if !ok {
		return ExpiryInfo{}
	}
	due := time.UnixMilli(from.ActionDate).Add(time.Duration(expireDays) * 24 * time.Hour)
	// action dates are stored in milliseconds
	now = time.UnixMilli(now.UnixMilli())
	days := int(math.Floor(due.Sub(now).Hours() / 24))

	info := ExpiryInfo{Active: true, Days: days, DueDate: due.UnixMilli()}
	switch {
	case days < 0:
		info.Severity = SeverityOverdue
		info.Message = fmt.Sprintf("overdue by %d days", -days)
	case days < WarningDays:
		info.Severity = SeverityWarning
		info.Message = fmt.Sprintf("due in %d days", days)
	default:
		info.Severity = SeverityNormal
		info.Message = fmt.Sprintf("due in %d days", days)
	}
	info.Color = info.Severity.Color()
	return info
}
