package agent

import (
	"sync"
	"time"

	"github.com/mohitkumar/bookflow/analytics"
	"github.com/mohitkumar/bookflow/cache"
	"github.com/mohitkumar/bookflow/config"
	"github.com/mohitkumar/bookflow/engine"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/persistence/memory"
	"github.com/mohitkumar/bookflow/persistence/redis"
	"github.com/mohitkumar/bookflow/rest"
	"github.com/mohitkumar/bookflow/service"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

const redisReadyTimeout = 30 * time.Second

type Agent struct {
	Config        config.Config
	storage       persistence.Storage
	locks         *cache.RecordLocks
	closeStorage  func() error
	notifier      *util.Worker
	engine        *engine.Engine
	borrowService *service.BorrowService
	bookService   *service.BookService
	configService *service.ConfigService
	reminder      *service.Reminder
	httpServer    *rest.Server
	shutdown      bool
	shutdowns     chan struct{}
	shutdownLock  sync.Mutex
	wg            sync.WaitGroup
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config:    config,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupAnalytics,
		a.setupStorage,
		a.setupNotifier,
		a.setupEngine,
		a.setupServices,
		a.setupReminder,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupAnalytics() error {
	return analytics.InitDataCollector(a.Config.AnalyticsConfig)
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		rs := redis.NewRedisStorage(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
		if err := rs.WaitReady(redisReadyTimeout); err != nil {
			return err
		}
		a.storage = rs
		a.closeStorage = rs.Close
	default:
		a.storage = memory.NewMemoryStorage()
		a.closeStorage = func() error { return nil }
	}
	logger.Info("storage ready", zap.String("type", string(a.Config.StorageType)))
	return nil
}

func (a *Agent) setupNotifier() error {
	a.notifier = util.NewWorker("notifier", &a.wg, service.HandleNotification, a.Config.NotifyCapacity)
	a.notifier.Start()
	return nil
}

func (a *Agent) setupEngine() error {
	a.locks = cache.NewRecordLocks(a.Config.LockTimeout)
	a.engine = engine.NewEngine(a.storage, a.locks, a.Config.BookConfig, a.notifier)
	return nil
}

func (a *Agent) setupServices() error {
	a.borrowService = service.NewBorrowService(a.storage, a.Config, service.NewWorkerDistributor())
	a.bookService = service.NewBookService(a.storage, a.locks)
	a.configService = service.NewConfigService(a.Config.BookConfig)
	return nil
}

func (a *Agent) setupReminder() error {
	a.reminder = service.NewReminder(a.storage, a.Config.BookConfig, a.Config.ReminderInterval, &a.wg)
	a.reminder.Start()
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.Config.PluginId, a.engine, a.borrowService, a.bookService, a.configService)
	return err
}

func (a *Agent) Start() error {
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server failed", zap.Error(err))
			_ = a.Shutdown()
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		a.httpServer.Stop,
		a.reminder.Stop,
		a.notifier.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return a.closeStorage()
}
