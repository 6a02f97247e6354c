// Package bot turns inbound chat events into store operations and replies.
//
// Every transport (Telegram, HTTP, MCP, CLI) calls Dispatcher.Handle. The
// dispatcher owns the parse, classify, store and render chain; the store,
// session store and change notifier are injected.
package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/etlefig/Bootschappenbot/internal/config"
	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
	"github.com/etlefig/Bootschappenbot/internal/parse"
	"github.com/etlefig/Bootschappenbot/internal/session"
)

// Event is one inbound message. When Command is set the event is a
// structured command with Args; otherwise Text is free text.
type Event struct {
	ConversationID string
	UserID         string
	Author         string
	Text           string
	Command        string
	Args           []string
}

// Reply is the single response to an Event. Silent replies are not sent.
type Reply struct {
	Text    string
	Silent  bool
	Changed []item.List
}

// Notifier is told about every list a handled event changed.
type Notifier interface {
	ListChanged(list item.List)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNotifier registers a change notifier.
func WithNotifier(n Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithDoneScope sets how free-text done-markers search: config.DoneScopeAll
// spans every list, config.DoneScopeList only the primary list.
func WithDoneScope(scope string) Option {
	return func(d *Dispatcher) { d.doneScope = scope }
}

// Dispatcher handles events. It is safe for concurrent use.
type Dispatcher struct {
	store     Store
	sessions  *session.Store
	logger    *zap.Logger
	notifier  Notifier
	doneScope string
}

// New creates a dispatcher. A nil logger discards logs.
func New(store Store, sessions *session.Store, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		store:     store,
		sessions:  sessions,
		logger:    logger.Named("bot"),
		doneScope: config.DoneScopeAll,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one event to completion. User-facing failures (unknown
// category, no match, bad position) become reply text; only internal
// errors are returned.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) (Reply, error) {
	var (
		reply Reply
		err   error
	)
	if ev.Command != "" {
		reply, err = d.handleCommand(ctx, ev)
	} else {
		reply, err = d.handleIntent(ctx, ev, parse.Parse(ev.Text))
	}

	if err != nil {
		text, silent, ok := userReply(err)
		if !ok {
			d.logger.Error("handle event failed",
				zap.String("conversation_id", ev.ConversationID),
				zap.String("command", ev.Command),
				zap.Error(err),
			)
			return Reply{}, err
		}
		return Reply{Text: text, Silent: silent}, nil
	}

	if d.notifier != nil {
		for _, l := range reply.Changed {
			d.notifier.ListChanged(l)
		}
	}

	d.logger.Debug("handled event",
		zap.String("conversation_id", ev.ConversationID),
		zap.String("user_id", ev.UserID),
		zap.String("command", ev.Command),
		zap.Bool("silent", reply.Silent),
		zap.Int("changed", len(reply.Changed)),
	)
	return reply, nil
}

func (d *Dispatcher) sessionKey(ev Event) session.Key {
	return session.Key{ConversationID: ev.ConversationID, UserID: ev.UserID}
}

// handleIntent applies a parsed free-text line.
func (d *Dispatcher) handleIntent(ctx context.Context, ev Event, in parse.Intent) (Reply, error) {
	switch in.Kind {
	case parse.KindAddToList:
		return d.add(ctx, ev, in.Text, in.List, in.Category)

	case parse.KindPlainAdd:
		cat, _ := d.sessions.Get(d.sessionKey(ev))
		return d.add(ctx, ev, in.Text, item.ListDefault, cat)

	case parse.KindSetSessionCategory:
		return d.setSessionCategory(ev, in.Category)

	case parse.KindMarkDone:
		var scope *item.List
		if d.doneScope == config.DoneScopeList {
			l := item.ListDefault
			scope = &l
		}
		return d.markDone(ctx, in.Text, scope)

	default:
		return Reply{Silent: true}, nil
	}
}

func (d *Dispatcher) add(ctx context.Context, ev Event, text string, list item.List, cat string) (Reply, error) {
	out, err := d.store.Add(ctx, ops.AddInput{
		Text:     text,
		Who:      ev.Author,
		List:     list,
		Category: cat,
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Text:    addedReply(out.Item.List, out.Item.Category, !out.Classified),
		Changed: []item.List{out.Item.List},
	}, nil
}

func (d *Dispatcher) setSessionCategory(ev Event, raw string) (Reply, error) {
	key := d.sessionKey(ev)
	if item.Clean(raw) == "" {
		d.sessions.Clear(key)
		return Reply{Text: categoryReset}, nil
	}

	cat, err := lookupCategory(raw)
	if err != nil {
		return Reply{}, err
	}
	d.sessions.Set(key, cat)
	return Reply{Text: sessionCategoryReply(cat)}, nil
}

func (d *Dispatcher) markDone(ctx context.Context, text string, scope *item.List) (Reply, error) {
	out, err := d.store.MarkDone(ctx, ops.MarkDoneInput{Match: text, List: scope})
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Text:    doneReply(out.Item),
		Changed: []item.List{out.Item.List},
	}, nil
}
