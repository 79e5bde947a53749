package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/bookflow/logger"
	"go.uber.org/zap"
)

type Config struct {
	Addrs     []string
	Namespace string
	PoolSize  int
	Password  string
}

type baseDao struct {
	redisClient rd.UniversalClient
	namespace   string
}

func newBaseDao(conf Config) *baseDao {
	redisClient := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs:    conf.Addrs,
		Password: conf.Password,
		PoolSize: conf.PoolSize,
	})
	return &baseDao{
		redisClient: redisClient,
		namespace:   conf.Namespace,
	}
}

func (bs *baseDao) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", bs.namespace, strings.Join(args, ":"))
}

// WaitReady pings redis with exponential backoff until it answers or maxWait
// elapses.
func (bs *baseDao) WaitReady(maxWait time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = maxWait
	return backoff.RetryNotify(func() error {
		return bs.redisClient.Ping(context.Background()).Err()
	}, b, func(err error, next time.Duration) {
		logger.Warn("redis not ready", zap.Error(err), zap.Duration("retryIn", next))
	})
}

func (bs *baseDao) Close() error {
	return bs.redisClient.Close()
}
