package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var _ persistence.Storage = new(redisStorage)

type redisStorage struct {
	*baseDao
	borrowEncDec util.EncoderDecoder[model.Borrow]
	bookEncDec   util.EncoderDecoder[model.Book]
}

func NewRedisStorage(conf Config) *redisStorage {
	return &redisStorage{
		baseDao:      newBaseDao(conf),
		borrowEncDec: util.NewJsonEncoderDecoder[model.Borrow](),
		bookEncDec:   util.NewJsonEncoderDecoder[model.Book](),
	}
}

func (r *redisStorage) queueBorrows(ctx context.Context, pipe rd.Pipeliner, borrows []*model.Borrow) error {
	borrowKey := r.getNamespaceKey(persistence.BORROW_KEY)
	masterKey := r.getNamespaceKey(persistence.MASTER_KEY)
	for _, b := range borrows {
		data, err := r.borrowEncDec.Encode(*b)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, borrowKey, b.Id, string(data))
		if b.IsMaster() {
			pipe.SAdd(ctx, masterKey, b.Id)
		}
	}
	return nil
}

func (r *redisStorage) SaveBorrows(borrows ...*model.Borrow) error {
	ctx := context.Background()
	_, err := r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		return r.queueBorrows(ctx, pipe, borrows)
	})
	if err != nil {
		logger.Error("error in saving borrows", zap.Int("count", len(borrows)), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) GetBorrow(id string) (*model.Borrow, error) {
	ctx := context.Background()
	val, err := r.redisClient.HGet(ctx, r.getNamespaceKey(persistence.BORROW_KEY), id).Result()
	if errors.Is(err, rd.Nil) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		logger.Error("error in getting borrow", zap.String("id", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return r.borrowEncDec.Decode([]byte(val))
}

func (r *redisStorage) DeleteBorrows(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx := context.Background()
	_, err := r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.HDel(ctx, r.getNamespaceKey(persistence.BORROW_KEY), ids...)
		members := make([]any, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		pipe.SRem(ctx, r.getNamespaceKey(persistence.MASTER_KEY), members...)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) ListMasters() ([]*model.Borrow, error) {
	ctx := context.Background()
	ids, err := r.redisClient.SMembers(ctx, r.getNamespaceKey(persistence.MASTER_KEY)).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	slices.Sort(ids)
	vals, err := r.redisClient.HMGet(ctx, r.getNamespaceKey(persistence.BORROW_KEY), ids...).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	masters := make([]*model.Borrow, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			logger.Warn("master index points to a missing borrow", zap.String("id", ids[i]))
			continue
		}
		b, err := r.borrowEncDec.Decode([]byte(s))
		if err != nil {
			return nil, err
		}
		masters = append(masters, b)
	}
	return masters, nil
}

func (r *redisStorage) SaveBook(book *model.Book) error {
	return r.SaveAll(book)
}

func (r *redisStorage) GetBook(postId string) (*model.Book, error) {
	ctx := context.Background()
	val, err := r.redisClient.HGet(ctx, r.getNamespaceKey(persistence.BOOK_KEY), postId).Result()
	if errors.Is(err, rd.Nil) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return r.bookEncDec.Decode([]byte(val))
}

func (r *redisStorage) DeleteBook(postId string) error {
	ctx := context.Background()
	if err := r.redisClient.HDel(ctx, r.getNamespaceKey(persistence.BOOK_KEY), postId).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisStorage) ListBooks() ([]*model.Book, error) {
	ctx := context.Background()
	all, err := r.redisClient.HGetAll(ctx, r.getNamespaceKey(persistence.BOOK_KEY)).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	books := make([]*model.Book, 0, len(all))
	for _, v := range all {
		b, err := r.bookEncDec.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	slices.SortFunc(books, func(a, b *model.Book) int {
		switch {
		case a.PostId < b.PostId:
			return -1
		case a.PostId > b.PostId:
			return 1
		}
		return 0
	})
	return books, nil
}

func (r *redisStorage) SaveAll(book *model.Book, borrows ...*model.Borrow) error {
	ctx := context.Background()
	_, err := r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		if book != nil {
			data, err := r.bookEncDec.Encode(*book)
			if err != nil {
				return err
			}
			pipe.HSet(ctx, r.getNamespaceKey(persistence.BOOK_KEY), book.PostId, string(data))
		}
		return r.queueBorrows(ctx, pipe, borrows)
	})
	if err != nil {
		logger.Error("error in saving book and borrows", zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
