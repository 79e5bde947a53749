package analytics

import "sync"

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"
const NOOP_DATA_COLLECTOR DataCollectorType = "NOOP"

// Transition describes one applied or refused workflow request.
type Transition struct {
	MasterKey string
	ActUser   string
	From      string
	To        string
	Backward  bool
	Delete    bool
}

type WorkflowDataCollector interface {
	RecordTransitionSuccess(tr Transition)
	RecordTransitionFailure(tr Transition, reason string)
}

var (
	mu                sync.RWMutex
	workflowCollector WorkflowDataCollector = noopCollector{}
)

func InitDataCollector(config DataCollectorConfig) error {
	var c WorkflowDataCollector = noopCollector{}
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		lc, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		c = lc
	}
	mu.Lock()
	workflowCollector = c
	mu.Unlock()
	return nil
}

func collector() WorkflowDataCollector {
	mu.RLock()
	defer mu.RUnlock()
	return workflowCollector
}

func RecordTransitionSuccess(tr Transition) {
	collector().RecordTransitionSuccess(tr)
}

func RecordTransitionFailure(tr Transition, reason string) {
	collector().RecordTransitionFailure(tr, reason)
}

type noopCollector struct{}

func (noopCollector) RecordTransitionSuccess(Transition)         {}
func (noopCollector) RecordTransitionFailure(Transition, string) {}
