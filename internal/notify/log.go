// Package notify delivers domain events to downstream consumers. The log
// notifier is the only sink today; email and push would implement the same
// app.Notifier contract.
package notify

import (
	"context"
	"log"

	"github.com/encorehq/stagehold/internal/domain"
)

// LogNotifier writes each event to a logger. Delivery is fire and forget.
type LogNotifier struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(_ context.Context, ev domain.Event) {
	n.logger.Printf("event %s %+v", ev.EventName(), ev)
}
