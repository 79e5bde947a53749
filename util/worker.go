package util

import (
	"sync"

	"github.com/mohitkumar/bookflow/logger"
	"go.uber.org/zap"
)

type Task any

// Worker runs handler for every task sent to it on a single goroutine.
type Worker struct {
	name     string
	stop     chan struct{}
	wg       *sync.WaitGroup
	handler  func(Task) error
	taskChan chan Task
}

func NewWorker(name string, wg *sync.WaitGroup, handler func(Task) error, capacity int) *Worker {
	return &Worker{
		name:     name,
		stop:     make(chan struct{}),
		wg:       wg,
		handler:  handler,
		taskChan: make(chan Task, capacity),
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case task := <-w.taskChan:
				if err := w.handler(task); err != nil {
					logger.Error("error in executing task in worker", zap.String("worker", w.name), zap.Any("task", task), zap.Error(err))
				}
			case <-w.stop:
				logger.Info("stopping worker", zap.String("worker", w.name))
				return
			}
		}
	}()
}

// Submit queues task without blocking. It returns false when the queue is
// full and the task was dropped.
func (w *Worker) Submit(task Task) bool {
	select {
	case w.taskChan <- task:
		return true
	default:
		logger.Warn("worker queue full, dropping task", zap.String("worker", w.name))
		return false
	}
}

func (w *Worker) Stop() error {
	close(w.stop)
	return nil
}
