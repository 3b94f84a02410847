// Package delivery provides concrete notification delivery ports. The
// scheduling core only computes what should fire and when; adapters here
// do the actual presenting.
package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ablomov/remindd/internal/domain"
)

// categoryText maps a category to its reminder message.
func categoryText(c domain.Category) string {
	switch c {
	case domain.CategoryMeal:
		return "🍽 Meal time! Check today's suggestion."
	case domain.CategoryWorkout:
		return "💪 Workout reminder: your session is waiting."
	case domain.CategoryHydration:
		return "💧 Hydration check: have a glass of water."
	case domain.CategoryProgressReport:
		return "📊 Weekly progress report is ready."
	}
	return fmt.Sprintf("Reminder: %s", c)
}

// TelegramPort delivers reminders as Telegram messages. Schedule arms an
// in-process timer for the trigger instant; Cancel disarms it. Permission
// maps to "a chat id is configured": without one the bot cannot message
// the user at all.
type TelegramPort struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	chatID int64

	mu     sync.Mutex
	timers map[domain.SequenceID]*time.Timer
}

// NewTelegramPort creates a port delivering to the given chat.
func NewTelegramPort(bot *tgbotapi.BotAPI, log *zap.Logger, chatID int64) *TelegramPort {
	return &TelegramPort{
		bot:    bot,
		log:    log,
		chatID: chatID,
		timers: make(map[domain.SequenceID]*time.Timer),
	}
}

// HasPermission reports whether the port can reach the user.
func (p *TelegramPort) HasPermission(_ context.Context) bool {
	return p.chatID != 0
}

// Schedule arms a timer for t. Re-scheduling a known id replaces its
// timer. An instant already in the past is rejected.
func (p *TelegramPort) Schedule(_ context.Context, t domain.Trigger) error {
	if p.chatID == 0 {
		return domain.ErrPermissionDenied
	}
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
	p.timers[id] = time.AfterFunc(delay, func() { p.fire(id, cat) })
	return nil
}

// Cancel disarms the timer for id. Unknown ids are a no-op.
func (p *TelegramPort) Cancel(_ context.Context, id domain.SequenceID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if timer, ok := p.timers[id]; ok {
		timer.Stop()
		delete(p.timers, id)
	}
	return nil
}

// Close disarms every pending timer.
func (p *TelegramPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, timer := range p.timers {
		timer.Stop()
		delete(p.timers, id)
	}
}

func (p *TelegramPort) fire(id domain.SequenceID, cat domain.Category) {
	p.mu.Lock()
	delete(p.timers, id)
	p.mu.Unlock()

	if _, err := p.bot.Send(tgbotapi.NewMessage(p.chatID, categoryText(cat))); err != nil {
		p.log.Error("send failed",
			zap.String("sequence_id", string(id)),
			zap.String("category", string(cat)),
			zap.Error(err),
		)
		return
	}
	p.log.Info("reminder delivered",
		zap.String("sequence_id", string(id)),
		zap.String("category", string(cat)),
	)
}
