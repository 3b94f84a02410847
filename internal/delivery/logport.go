package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ablomov/remindd/internal/domain"
)

// LogPort is a delivery port that writes reminders to the log. Used when
// no bot token is configured, so the daemon stays runnable end to end.
type LogPort struct {
	log *zap.Logger

	mu     sync.Mutex
	timers map[domain.SequenceID]*time.Timer
}

// NewLogPort creates a log-backed delivery port.
func NewLogPort(log *zap.Logger) *LogPort {
	return &LogPort{log: log, timers: make(map[domain.SequenceID]*time.Timer)}
}

// HasPermission always grants; the log needs no user consent.
func (p *LogPort) HasPermission(_ context.Context) bool { return true }

// Schedule arms a timer that logs the reminder at the trigger instant.
func (p *LogPort) Schedule(_ context.Context, t domain.Trigger) error {
	delay := time.Until(t.At)
	if delay < 0 {
		return fmt.Errorf("%w: instant %s already passed", domain.ErrDeliveryRejected, t.At)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.timers[t.SequenceID]; ok {
		old.Stop()
	}
	id := t.SequenceID
	cat := t.Category
	p.timers[id] = time.AfterFunc(delay, func() {
		p.mu.Lock()
		delete(p.timers, id)
		p.mu.Unlock()
		p.log.Info("reminder fired",
			zap.String("sequence_id", string(id)),
			zap.String("category", string(cat)),
		)
	})
	return nil
}

// Cancel disarms the timer for id. Unknown ids are a no-op.
func (p *LogPort) Cancel(_ context.Context, id domain.SequenceID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if timer, ok := p.timers[id]; ok {
		timer.Stop()
		delete(p.timers, id)
	}
	return nil
}

// Close disarms every pending timer.
func (p *LogPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, timer := range p.timers {
		timer.Stop()
		delete(p.timers, id)
	}
}
