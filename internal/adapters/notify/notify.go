// Package notify delivers user-facing notices through the logger.
package notify

import (
	"sync"

	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/estatedesk/internal/ui/style"
	"go.trai.ch/zerr"
)

// Notifier implements ports.Notifier on top of a ports.Logger.
type Notifier struct {
	log ports.Logger

	mu     sync.Mutex
	counts map[domain.NoticeLevel]int
}

var _ ports.Notifier = (*Notifier)(nil)

// New creates a Notifier writing to log.
func New(log ports.Logger) *Notifier {
	return &Notifier{log: log, counts: make(map[domain.NoticeLevel]int)}
}

// Notify writes n at the log level matching its notice level.
func (n *Notifier) Notify(notice domain.Notice) {
	n.mu.Lock()
	n.counts[notice.Level]++
	n.mu.Unlock()

	switch notice.Level {
	case domain.NoticeSuccess:
		n.log.Info(style.Check + " " + notice.Message)
	case domain.NoticeWarning:
		n.log.Warn(notice.Message)
	case domain.NoticeError:
		if notice.Err == nil {
			n.log.Error(zerr.New(notice.Message))
			return
		}
		n.log.Error(zerr.Wrap(notice.Err, notice.Message))
	default:
		n.log.Info(notice.Message)
	}
}

// Count returns how many notices of a level were delivered.
func (n *Notifier) Count(level domain.NoticeLevel) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counts[level]
}
