package service

import (
	"sync"
	"time"

	"github.com/mohitkumar/bookflow/flow"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

type Overdue struct {
	MasterId string
	Borrower string
	BookName string
	Expiry   flow.ExpiryInfo
}

// Reminder periodically looks for loans that are past or close to their
// due date.
type Reminder struct {
	storage    persistence.BorrowStorage
	bookConfig model.BookConfig
	interval   time.Duration
	worker     *util.TickWorker
	now        func() time.Time
}

func NewReminder(storage persistence.BorrowStorage, bookConfig model.BookConfig, interval time.Duration, wg *sync.WaitGroup) *Reminder {
	r := &Reminder{
		storage:    storage,
		bookConfig: bookConfig,
		interval:   interval,
		now:        time.Now,
	}
	r.worker = util.NewTickWorker("reminder", interval, func() { r.Scan() }, wg)
	return r
}

// Scan returns every loan whose badge is not normal.
func (r *Reminder) Scan() []Overdue {
	if r.bookConfig.ExpireDays < 0 {
		return nil
	}
	masters, err := r.storage.ListMasters()
	if err != nil {
		logger.Error("error in listing borrows for reminder", zap.Error(err))
		return nil
	}
	now := r.now()
	var out []Overdue
	for _, m := range masters {
		br := m.DataOrImage
		info := flow.Expiry(br.Workflow, br.StepIndex, r.bookConfig.ExpireDays, now)
		if !info.Active || info.Severity == flow.SeverityNormal {
			continue
		}
		logger.Info("loan due", zap.String("master", m.Id), zap.String("borrower", br.BorrowerUser),
			zap.String("book", br.BookName), zap.String("severity", string(info.Severity)), zap.Int("days", info.Days))
		out = append(out, Overdue{MasterId: m.Id, Borrower: br.BorrowerUser, BookName: br.BookName, Expiry: info})
	}
	return out
}

// Start runs Scan every interval. A non-positive interval disables the
// reminder.
func (r *Reminder) Start() {
	if r.interval <= 0 {
		logger.Info("reminder disabled")
		return
	}
	r.worker.Start()
}

func (r *Reminder) Stop() error {
	if !r.worker.IsRunning() {
		return nil
	}
	return r.worker.Stop()
}
