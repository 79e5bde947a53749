package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/bookflow/config"
	"github.com/mohitkumar/bookflow/flow"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

type BorrowService struct {
	storage     persistence.Storage
	conf        config.Config
	distributor *WorkerDistributor
	now         func() time.Time
}

func NewBorrowService(storage persistence.Storage, conf config.Config, distributor *WorkerDistributor) *BorrowService {
	return &BorrowService{
		storage:     storage,
		conf:        conf,
		distributor: distributor,
		now:         time.Now,
	}
}

// activeBorrows counts the loans of user that are not returned yet.
func (s *BorrowService) activeBorrows(user string) (int, error) {
	masters, err := s.storage.ListMasters()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range masters {
		br := m.DataOrImage
		if br.BorrowerUser != user {
			continue
		}
		if cur := br.CurrentStep(); cur != nil && cur.Status == model.StatusReturned {
			continue
		}
		count++
	}
	return count, nil
}

// Request creates the master record of a new loan and one record per
// participant.
func (s *BorrowService) Request(key model.BorrowRequestKey) (*model.Borrow, error) {
	if key.BookPostId == "" || key.BorrowerUser == "" {
		return nil, fmt.Errorf("%w: book and borrower are required", model.ErrInvalidTransition)
	}
	book, err := s.storage.GetBook(key.BookPostId)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !book.IsAllowedToBorrow {
		return nil, model.ErrBorrowingDisabled
	}
	if s.conf.BorrowLimit >= 0 {
		n, err := s.activeBorrows(key.BorrowerUser)
		if err != nil {
			return nil, err
		}
		if n >= s.conf.BorrowLimit {
			return nil, model.ErrBorrowingLimited
		}
	}
	workers := util.Remove(book.Libworkers, key.BorrowerUser)
	libworker := s.distributor.Pick(workers, key.BookPostId+":"+key.BorrowerUser)
	if libworker == "" {
		return nil, fmt.Errorf("%w: book %s has no library worker", model.ErrNotAllowed, key.BookPostId)
	}

	br := model.BorrowRequest{
		BookPostId:    book.PostId,
		BookId:        book.Id,
		BookName:      book.Name,
		Author:        book.Author,
		BorrowerUser:  key.BorrowerUser,
		BorrowerName:  s.conf.DisplayName(key.BorrowerUser),
		LibworkerUser: libworker,
		LibworkerName: s.conf.DisplayName(libworker),
		Workflow:      flow.NewBorrowWorkflow(s.now()),
		Etag:          uuid.NewString(),
		Tags:          book.Tags,
	}
	for _, k := range book.KeeperUsers {
		br.KeeperUsers = append(br.KeeperUsers, k)
		br.KeeperNames = append(br.KeeperNames, s.conf.DisplayName(k))
	}

	master := &model.Borrow{
		Id:          uuid.NewString(),
		DataOrImage: br,
		Role:        model.RolesOf(model.RoleMaster),
	}
	keys := model.RelationKeys{Book: book.PostId, Master: master.Id}
	records := make([]*model.Borrow, 0, 3)
	for _, user := range br.Participants() {
		rec := &model.Borrow{
			Id:          uuid.NewString(),
			Owner:       user,
			DataOrImage: br,
			Role:        br.RolesOf(user),
		}
		if rec.Role.Has(model.RoleBorrower) {
			keys.Borrower = rec.Id
		}
		if rec.Role.Has(model.RoleLibworker) {
			keys.Libworker = rec.Id
		}
		if rec.Role.Has(model.RoleKeeper) {
			if keys.Keepers == nil {
				keys.Keepers = make(map[string]string)
			}
			keys.Keepers[user] = rec.Id
		}
		records = append(records, rec)
	}
	master.RelationsKeys = keys
	for _, rec := range records {
		rec.RelationsKeys = keys
	}

	if err := s.storage.SaveBorrows(append([]*model.Borrow{master}, records...)...); err != nil {
		return nil, err
	}
	logger.Info("borrow requested", zap.String("master", master.Id), zap.String("book", book.PostId), zap.String("borrower", key.BorrowerUser), zap.String("libworker", libworker))
	return master, nil
}

// Get returns the stored record with id.
func (s *BorrowService) Get(id string) (*model.Borrow, error) {
	b, err := s.storage.GetBorrow(id)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	return b, err
}

// View evaluates the record with id for its viewer.
func (s *BorrowService) View(id string) (*flow.View, error) {
	b, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return flow.BuildView(b, s.conf.BookConfig, s.now())
}
