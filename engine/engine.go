// Package engine applies workflow requests to stored borrow records.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/bookflow/analytics"
	"github.com/mohitkumar/bookflow/cache"
	"github.com/mohitkumar/bookflow/flow"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

// Notification tells a participant that a record they follow moved.
type Notification struct {
	RecordId string
	User     string
	Roles    model.RoleSet
	Status   model.Status
	BookName string
}

type Notifier interface {
	Submit(task util.Task) bool
}

type Engine struct {
	storage    persistence.Storage
	locks      *cache.RecordLocks
	bookConfig model.BookConfig
	notifier   Notifier
	now        func() time.Time
}

func NewEngine(storage persistence.Storage, locks *cache.RecordLocks, bookConfig model.BookConfig, notifier Notifier) *Engine {
	return &Engine{
		storage:    storage,
		locks:      locks,
		bookConfig: bookConfig,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (e *Engine) getBorrow(id string) (*model.Borrow, error) {
	b, err := e.storage.GetBorrow(id)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	return b, err
}

// lockMaster resolves key to its master record and locks it together with
// its book. The returned master is read after the lock is taken.
func (e *Engine) lockMaster(key string) (*model.Borrow, func(), error) {
	rec, err := e.getBorrow(key)
	if err != nil {
		return nil, nil, err
	}
	if !rec.IsMaster() {
		key = rec.RelationsKeys.Master
	}
	keys := []string{cache.BorrowKey(key), cache.BookKey(rec.DataOrImage.BookPostId)}
	if !e.locks.TryLock(keys...) {
		return nil, nil, model.ErrLocked
	}
	unlock := func() { e.locks.Unlock(keys...) }
	master, err := e.getBorrow(key)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return master, unlock, nil
}

// Process applies req and returns the updated master record.
func (e *Engine) Process(req model.WorkflowRequest) (master *model.Borrow, err error) {
	tr := analytics.Transition{MasterKey: req.MasterKey, ActUser: req.ActUser, Backward: req.Backward, Delete: req.Delete}
	defer func() {
		if err != nil {
			logger.Error("error in processing workflow request", zap.String("master", req.MasterKey), zap.String("user", req.ActUser), zap.Error(err))
			analytics.RecordTransitionFailure(tr, err.Error())
			return
		}
		analytics.RecordTransitionSuccess(tr)
	}()

	if req.Delete {
		return nil, e.delete(req, &tr)
	}

	master, unlock, err := e.lockMaster(req.MasterKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	br := &master.DataOrImage
	if req.Etag != br.Etag {
		return nil, model.ErrStale
	}
	if err := flow.Validate(br.Workflow, br.StepIndex); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidTransition, err)
	}
	cur := br.StepIndex
	tr.From = string(br.Workflow[cur].Status)

	transition, err := e.authorize(br, req)
	if err != nil {
		return nil, err
	}
	tr.To = string(transition.Status)

	book, err := e.storage.GetBook(br.BookPostId)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	target := transition.NextStepIndex
	if transition.Backward {
		if err := applyInventory(book, br, br.Workflow[cur].Status, true, ""); err != nil {
			return nil, err
		}
		moveBackward(br.Workflow, cur, target)
	} else {
		if err := applyInventory(book, br, transition.Status, false, req.ChosenCopyId); err != nil {
			return nil, err
		}
		if transition.Status == model.StatusRenewConfirmed {
			br.RenewedTimes++
		}
		moveForward(br.Workflow, cur, target, e.now().UnixMilli())
	}
	br.StepIndex = target
	br.Etag = uuid.NewString()

	records, err := e.participantRecords(master)
	if err != nil {
		return nil, err
	}
	if err := e.storage.SaveAll(book, append([]*model.Borrow{master}, records...)...); err != nil {
		return nil, err
	}
	logger.Info("workflow moved", zap.String("master", master.Id), zap.String("from", tr.From), zap.String("to", tr.To), zap.Bool("backward", transition.Backward))
	e.notify(records, br.Workflow[target])
	return master, nil
}

// authorize finds the transition req asks for and checks the acting user may
// take it.
func (e *Engine) authorize(br *model.BorrowRequest, req model.WorkflowRequest) (flow.Transition, error) {
	cur := br.CurrentStep()
	if !req.Backward {
		for _, next := range cur.NextStepIndex {
			if next == req.NextStepIndex && br.Workflow[next].Status == model.StatusRenewRequested &&
				!flow.RenewAllowed(br.RenewedTimes, e.bookConfig.MaxRenewTimes) {
				return flow.Transition{}, model.ErrRenewLimited
			}
		}
	}
	var found *flow.Transition
	for _, t := range flow.Transitions(br, e.bookConfig.MaxRenewTimes) {
		if t.NextStepIndex == req.NextStepIndex && t.Backward == req.Backward {
			t := t
			found = &t
			break
		}
	}
	if found == nil {
		return flow.Transition{}, model.ErrInvalidTransition
	}
	roles := br.RolesOf(req.ActUser)
	if roles.Empty() || !flow.CanAct(*cur, roles) {
		return flow.Transition{}, model.ErrNotAllowed
	}
	return *found, nil
}

// participantRecords loads every participant record of master and copies the
// master data into them.
func (e *Engine) participantRecords(master *model.Borrow) ([]*model.Borrow, error) {
	var records []*model.Borrow
	for _, id := range master.RelationsKeys.RecordIds() {
		rec, err := e.storage.GetBorrow(id)
		if errors.Is(err, persistence.ErrNotFound) {
			logger.Warn("participant record missing", zap.String("master", master.Id), zap.String("record", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		rec.DataOrImage = master.DataOrImage
		rec.RelationsKeys = master.RelationsKeys
		records = append(records, rec)
	}
	return records, nil
}

func (e *Engine) notify(records []*model.Borrow, step model.Step) {
	if e.notifier == nil {
		return
	}
	for _, rec := range records {
		if !rec.Role.Intersects(step.RelatedRoles) {
			continue
		}
		e.notifier.Submit(Notification{
			RecordId: rec.Id,
			User:     rec.Owner,
			Roles:    rec.Role,
			Status:   step.Status,
			BookName: rec.DataOrImage.BookName,
		})
	}
}

func (e *Engine) delete(req model.WorkflowRequest, tr *analytics.Transition) error {
	master, unlock, err := e.lockMaster(req.MasterKey)
	if err != nil {
		return err
	}
	defer unlock()

	br := &master.DataOrImage
	if req.Etag != br.Etag {
		return model.ErrStale
	}
	cur := br.CurrentStep()
	if cur == nil {
		return model.ErrInvalidTransition
	}
	tr.From = string(cur.Status)
	if !flow.CanDelete(cur.Status) {
		return model.ErrNotDeletable
	}
	if !br.RolesOf(req.ActUser).Intersects(flow.DeleteRoles) {
		return model.ErrNotAllowed
	}

	if cur.Status == model.StatusConfirmed {
		book, err := e.storage.GetBook(br.BookPostId)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			logger.Warn("book of deleted borrow is gone", zap.String("book", br.BookPostId))
		case err != nil:
			return err
		default:
			if err := applyInventory(book, br, model.StatusConfirmed, true, ""); err != nil {
				return err
			}
			if err := e.storage.SaveBook(book); err != nil {
				return err
			}
		}
	}

	ids := append(master.RelationsKeys.RecordIds(), master.Id)
	if err := e.storage.DeleteBorrows(ids...); err != nil {
		return err
	}
	logger.Info("borrow deleted", zap.String("master", master.Id), zap.String("status", string(cur.Status)))
	return nil
}
