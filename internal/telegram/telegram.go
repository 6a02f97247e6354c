// Package telegram connects the dispatcher to the Telegram Bot API by long
// polling.
package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/etlefig/Bootschappenbot/internal/bot"
)

// API is the part of *tgbotapi.BotAPI the adapter uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler processes one event; *bot.Dispatcher implements it.
type Handler interface {
	Handle(ctx context.Context, ev bot.Event) (bot.Reply, error)
}

const (
	pollTimeout = 60 // seconds
	queueSize   = 32
	idleTimeout = 5 * time.Minute
)

// Adapter runs the polling loop. Messages from one chat are handled in
// arrival order; different chats are handled concurrently.
type Adapter struct {
	api     API
	handler Handler
	logger  *zap.Logger

	mu     sync.Mutex
	queues map[int64]*chatQueue
	wg     sync.WaitGroup
	idle   time.Duration
}

// chatQueue is one chat's backlog. pending counts messages handed to
// enqueue but not yet received by the worker; guarded by Adapter.mu.
type chatQueue struct {
	ch      chan tgbotapi.Message
	pending int
}

// New creates an adapter. A nil logger discards logs.
func New(api API, handler Handler, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		api:     api,
		handler: handler,
		logger:  logger.Named("telegram"),
		queues:  make(map[int64]*chatQueue),
		idle:    idleTimeout,
	}
}

// Connect logs in with token and returns the API client.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Run polls for updates until ctx is cancelled or the update channel
// closes. On cancellation queued messages are dropped and in-flight ones
// finish; when the channel closes every queued message is still handled.
func (a *Adapter) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := a.api.GetUpdatesChan(u)

	a.logger.Info("polling for updates")
	defer a.shutdown()

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if _, ok := EventFromUpdate(update); !ok {
				continue
			}
			a.enqueue(ctx, *update.Message)
		}
	}
}

// enqueue hands msg to its chat's worker, starting one if needed.
func (a *Adapter) enqueue(ctx context.Context, msg tgbotapi.Message) {
	chatID := msg.Chat.ID

	a.mu.Lock()
	q, ok := a.queues[chatID]
	if !ok {
		q = &chatQueue{ch: make(chan tgbotapi.Message, queueSize)}
		a.queues[chatID] = q
		a.wg.Add(1)
		go a.worker(ctx, chatID, q)
	}
	q.pending++
	a.mu.Unlock()

	select {
	case q.ch <- msg:
	case <-ctx.Done():
	}
}

// worker drains one chat's queue and exits after a quiet period.
func (a *Adapter) worker(ctx context.Context, chatID int64, q *chatQueue) {
	defer a.wg.Done()

	timer := time.NewTimer(a.idle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			a.removeQueue(chatID)
			return
		case msg, ok := <-q.ch:
			if !ok {
				return
			}
			a.mu.Lock()
			q.pending--
			a.mu.Unlock()

			a.handle(ctx, msg)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(a.idle)
		case <-timer.C:
			a.mu.Lock()
			if q.pending == 0 {
				delete(a.queues, chatID)
				a.mu.Unlock()
				return
			}
			a.mu.Unlock()
			timer.Reset(a.idle)
		}
	}
}

// shutdown closes every queue and waits for the workers to drain them.
func (a *Adapter) shutdown() {
	a.mu.Lock()
	for id, q := range a.queues {
		close(q.ch)
		delete(a.queues, id)
	}
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Adapter) removeQueue(chatID int64) {
	a.mu.Lock()
	delete(a.queues, chatID)
	a.mu.Unlock()
}

func (a *Adapter) handle(ctx context.Context, msg tgbotapi.Message) {
	ev, ok := EventFromMessage(&msg)
	if !ok {
		return
	}

	// A message that started is finished even during shutdown.
	reply, err := a.handler.Handle(context.WithoutCancel(ctx), ev)
	if err != nil {
		a.logger.Error("handle message failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err),
		)
		reply = bot.Reply{Text: bot.ApologyText}
	}
	if reply.Silent || reply.Text == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if _, err := a.api.Send(out); err != nil {
		a.logger.Warn("send reply failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err),
		)
	}
}

// EventFromUpdate maps a text message update to an event. Updates without
// a text message (edits, callbacks, photos) are skipped.
func EventFromUpdate(u tgbotapi.Update) (bot.Event, bool) {
	if u.Message == nil {
		return bot.Event{}, false
	}
	return EventFromMessage(u.Message)
}

// EventFromMessage maps a message to an event. "/cmd args" becomes a
// structured command; "/cmd@botname" is accepted.
func EventFromMessage(m *tgbotapi.Message) (bot.Event, bool) {
	if m == nil || m.Chat == nil || m.Text == "" {
		return bot.Event{}, false
	}

	ev := bot.Event{ConversationID: strconv.FormatInt(m.Chat.ID, 10)}
	if m.From != nil {
		ev.UserID = strconv.FormatInt(m.From.ID, 10)
		ev.Author = m.From.FirstName
		if ev.Author == "" {
			ev.Author = m.From.UserName
		}
	}

	if m.IsCommand() {
		ev.Command = m.Command()
		ev.Args = strings.Fields(m.CommandArguments())
		return ev, true
	}
	ev.Text = m.Text
	return ev, true
}
