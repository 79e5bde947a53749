package service

import (
	"fmt"

	"github.com/mohitkumar/bookflow/engine"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

// HandleNotification logs an engine notification for its recipient.
func HandleNotification(task util.Task) error {
	n, ok := task.(engine.Notification)
	if !ok {
		return fmt.Errorf("unexpected notification %T", task)
	}
	logger.Info("borrow updated", zap.String("user", n.User), zap.String("record", n.RecordId),
		zap.String("status", string(n.Status)), zap.String("book", n.BookName), zap.Stringer("roles", n.Roles))
	return nil
}
