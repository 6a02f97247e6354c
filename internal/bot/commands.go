package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/config"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
	"github.com/etlefig/Bootschappenbot/internal/parse"
	"github.com/etlefig/Bootschappenbot/internal/render"
)

// handleCommand dispatches a structured command. Command names are
// case-insensitive and may carry a leading slash.
func (d *Dispatcher) handleCommand(ctx context.Context, ev Event) (Reply, error) {
	cmd := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ev.Command), "/"))
	args := cleanArgs(ev.Args)
	rest := strings.Join(args, " ")

	switch cmd {
	case "start":
		return Reply{Text: startText}, nil

	case "help":
		return Reply{Text: helpText}, nil

	case "categories", "categorieen":
		return Reply{Text: categoriesReply()}, nil

	case "add":
		if rest == "" {
			return Reply{Text: usageAdd}, nil
		}
		in := parse.Parse(rest)
		switch in.Kind {
		case parse.KindAddToList, parse.KindPlainAdd:
			return d.handleIntent(ctx, ev, in)
		default:
			// "/add done: x" adds the literal text
			return d.handleIntent(ctx, ev, parse.Intent{Kind: parse.KindPlainAdd, Text: rest})
		}

	case "menuadd":
		if rest == "" {
			return Reply{Text: usageMenuAdd}, nil
		}
		return d.add(ctx, ev, rest, item.ListWeekmenu, "")

	case "tokoadd":
		if rest == "" {
			return Reply{Text: usageTokoAdd}, nil
		}
		return d.add(ctx, ev, rest, item.ListToko, "")

	case "list", "lijst":
		list, _ := listArg(args)
		return d.list(ctx, list)

	case "clear":
		return d.clear(ctx, args)

	case "done":
		return d.done(ctx, args)

	case "setcat":
		return d.setCategory(ctx, args)

	case "remove":
		return d.remove(ctx, args)

	default:
		return Reply{Text: unknownCommandReply(cmd)}, nil
	}
}

func (d *Dispatcher) list(ctx context.Context, list item.List) (Reply, error) {
	items, err := d.store.Query(ctx, list)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: render.Text(list, items)}, nil
}

// clear handles "clear [list] [done]". Without a list, "clear done"
// removes done items from every list.
func (d *Dispatcher) clear(ctx context.Context, args []string) (Reply, error) {
	var (
		list     item.List
		named    bool
		doneOnly bool
	)
	for _, a := range args {
		if strings.EqualFold(a, "done") {
			doneOnly = true
			continue
		}
		if l, ok := item.ParseList(a); ok && !named {
			list, named = l, true
		}
	}
	if !named {
		list = item.ListDefault
	}

	if doneOnly {
		var scope *item.List
		changed := item.AllLists()
		if named {
			scope = &list
			changed = []item.List{list}
		}
		out, err := d.store.ClearDone(ctx, scope)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: clearedDoneReply(out.Removed), Changed: changed}, nil
	}

	if _, err := d.store.ClearList(ctx, list); err != nil {
		return Reply{}, err
	}
	return Reply{Text: clearedReply(list), Changed: []item.List{list}}, nil
}

// done handles "done <text>", "done <list> <text>" and the legacy
// "done <n>", which removes item n from the primary list.
func (d *Dispatcher) done(ctx context.Context, args []string) (Reply, error) {
	if len(args) == 0 {
		return Reply{Text: usageDone}, nil
	}

	if len(args) == 1 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			return d.removeAt(ctx, item.ListDefault, n)
		}
	}

	var scope *item.List
	if d.doneScope == config.DoneScopeList {
		l := item.ListDefault
		scope = &l
	}
	if len(args) > 1 {
		if l, ok := item.ParseList(args[0]); ok {
			scope = &l
			args = args[1:]
		}
	}
	return d.markDone(ctx, strings.Join(args, " "), scope)
}

// setCategory handles "setcat [list] <n> <Category>".
func (d *Dispatcher) setCategory(ctx context.Context, args []string) (Reply, error) {
	list, args := listArg(args)
	if len(args) < 2 {
		return Reply{Text: usageSetCat}, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return Reply{Text: usageSetCat}, nil
	}

	out, err := d.store.SetCategory(ctx, ops.SetCategoryInput{
		List:     list,
		Position: n,
		Category: strings.Join(args[1:], " "),
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: setCategoryReply(out.Item), Changed: []item.List{out.Item.List}}, nil
}

// remove handles "remove [list] <n>".
func (d *Dispatcher) remove(ctx context.Context, args []string) (Reply, error) {
	list, args := listArg(args)
	if len(args) != 1 {
		return Reply{Text: usageRemove}, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return Reply{Text: usageRemove}, nil
	}
	return d.removeAt(ctx, list, n)
}

func (d *Dispatcher) removeAt(ctx context.Context, list item.List, n int) (Reply, error) {
	out, err := d.store.Remove(ctx, ops.RemoveInput{List: list, Position: n})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: removedReply(out.Item), Changed: []item.List{out.Item.List}}, nil
}

// listArg consumes a leading list name. Unknown names are left in place
// and the primary list is used.
func listArg(args []string) (item.List, []string) {
	if len(args) == 0 {
		return item.ListDefault, args
	}
	if l, ok := item.ParseList(args[0]); ok {
		return l, args[1:]
	}
	return item.ListDefault, args
}

func lookupCategory(raw string) (string, error) {
	cat, ok := category.Lookup(raw)
	if !ok {
		return "", errors.NewInvalidCategory(item.Clean(raw), category.Names())
	}
	return cat, nil
}

func cleanArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, strings.Fields(a)...)
	}
	return out
}
