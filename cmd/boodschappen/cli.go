package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/etlefig/Bootschappenbot/internal/bot"
	"github.com/etlefig/Bootschappenbot/internal/category"
	"github.com/etlefig/Bootschappenbot/internal/config"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
	"github.com/etlefig/Bootschappenbot/internal/render"
	"github.com/etlefig/Bootschappenbot/internal/session"
	"github.com/etlefig/Bootschappenbot/internal/telegram"
	"github.com/etlefig/Bootschappenbot/internal/web"
)

func listFlag() cli.Flag {
	return &cli.StringFlag{Name: "list", Aliases: []string{"l"}, Value: "default", Usage: "List: default|weekmenu|toko"}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string, logger *zap.Logger) *cli.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &cli.App{
		Name:    "boodschappen",
		Usage:   "Shared shopping list bot",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db),
			listCmd(db),
			listsCmd(db),
			doneCmd(db, cfg),
			clearCmd(db),
			setcatCmd(db),
			removeCmd(db),
			sayCmd(db, cfg, logger),
			categoriesCmd(),
			exportCmd(db, baseDir),
			importCmd(db),
			serveCmd(db, cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an item",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			listFlag(),
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category (default: classified from the text)"},
			&cli.StringFlag{Name: "who", Usage: "Author name"},
		},
		Action: func(c *cli.Context) error {
			list, err := parseListFlag(c.String("list"))
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Add(c.Context, db, ops.AddInput{
				Text:     strings.Join(c.Args().Slice(), " "),
				Who:      c.String("who"),
				List:     list,
				Category: c.String("category"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show a list grouped by category",
		Flags: []cli.Flag{
			listFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Print items as JSON"},
			&cli.BoolFlag{Name: "markdown", Aliases: []string{"md"}, Usage: "Print the listing as Markdown"},
		},
		Action: func(c *cli.Context) error {
			list, err := parseListFlag(c.String("list"))
			if err != nil {
				return outputError(err)
			}
			items, err := ops.Query(c.Context, db, list)
			if err != nil {
				return outputError(err)
			}

			switch {
			case c.Bool("json"):
				return outputJSON(c.App.Writer, items)
			case c.Bool("markdown"):
				_, err = fmt.Fprintln(c.App.Writer, render.Markdown(list, items))
			default:
				_, err = fmt.Fprintln(c.App.Writer, render.Text(list, items))
			}
			return err
		},
	}
}

// listsCmd creates the lists command.
func listsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "lists",
		Usage: "Show item counts for every list",
		Action: func(c *cli.Context) error {
			counts, err := ops.Overview(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, counts)
		},
	}
}

// doneCmd creates the done command.
func doneCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark the first open item containing <text> as done",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "Only search this list (default: done_scope)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.MarkDoneInput{Match: strings.Join(c.Args().Slice(), " ")}
			if c.IsSet("list") {
				list, err := parseListFlag(c.String("list"))
				if err != nil {
					return outputError(err)
				}
				input.List = &list
			} else if cfg != nil && cfg.DoneScope == config.DoneScopeList {
				list := item.ListDefault
				input.List = &list
			}

			output, err := ops.MarkDone(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every item from a list, or only the done ones",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "List: default|weekmenu|toko (with --done, default is every list)"},
			&cli.BoolFlag{Name: "done", Usage: "Only remove items marked done"},
		},
		Action: func(c *cli.Context) error {
			var (
				output *ops.ClearOutput
				err    error
			)
			if c.Bool("done") {
				var scope *item.List
				if c.IsSet("list") {
					list, perr := parseListFlag(c.String("list"))
					if perr != nil {
						return outputError(perr)
					}
					scope = &list
				}
				output, err = ops.ClearDone(c.Context, db, scope)
			} else {
				list, perr := parseListFlag(c.String("list"))
				if perr != nil {
					return outputError(perr)
				}
				output, err = ops.ClearList(c.Context, db, list)
			}
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// setcatCmd creates the setcat command.
func setcatCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "setcat",
		Usage:     "Override the category of the item at a position",
		ArgsUsage: "<position> <category>",
		Flags:     []cli.Flag{listFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: setcat <position> <category>"))
			}
			pos, err := parsePosition(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			list, err := parseListFlag(c.String("list"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.SetCategory(c.Context, db, ops.SetCategoryInput{
				List:     list,
				Position: pos,
				Category: strings.Join(c.Args().Tail(), " "),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Delete the item at a position",
		ArgsUsage: "<position>",
		Flags:     []cli.Flag{listFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("usage: remove <position>"))
			}
			pos, err := parsePosition(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			list, err := parseListFlag(c.String("list"))
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Remove(c.Context, db, ops.RemoveInput{List: list, Position: pos})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// sayCmd creates the say command, which runs one chat line through the bot.
func sayCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "say",
		Usage:     "Send a chat line to the bot and print its reply",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Value: os.Getenv("USER"), Usage: "Display name stored with added items"},
		},
		Action: func(c *cli.Context) error {
			d := newDispatcher(db, cfg, logger)
			ev := bot.TextEvent("cli", "cli", c.String("author"), strings.Join(c.Args().Slice(), " "))
			reply, err := d.Handle(c.Context, ev)
			if err != nil {
				return outputError(err)
			}
			if reply.Silent {
				return nil
			}
			_, err = fmt.Fprintln(c.App.Writer, reply.Text)
			return err
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the categories in display order",
		Action: func(c *cli.Context) error {
			for _, name := range category.Names() {
				if _, err := fmt.Fprintln(c.App.Writer, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export items to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: <home>/exports/<list|all>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "Only export this list"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ExportInput{
				Path: c.String("path"),
				Dir:  filepath.Join(baseDir, "exports"),
			}
			if c.IsSet("list") {
				list, err := parseListFlag(c.String("list"))
				if err != nil {
					return outputError(err)
				}
				input.List = &list
			}

			output, err := ops.Export(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import items from a JSONL export or a TinyDB .json file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Input file path"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if path == "" {
				path = c.Args().First()
			}
			if path == "" {
				return outputError(errors.NewInvalidRequest("path is required"))
			}

			output, err := ops.Import(c.Context, db, ops.ImportInput{Path: path})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command: the Telegram bot and the web UI,
// sharing one dispatcher so web clients see changes made in the chat.
func serveCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the Telegram bot (when BOT_TOKEN is set) and the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Web bind address (default: web_bind)"},
			&cli.IntFlag{Name: "port", Usage: "Web port, 0 disables the web UI (default: web_port)"},
			&cli.BoolFlag{Name: "no-telegram", Usage: "Do not connect to Telegram"},
		},
		Action: func(c *cli.Context) error {
			bind, port := cfg.WebBind, cfg.WebPort
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			if c.IsSet("port") {
				port = c.Int("port")
			}
			useTelegram := cfg.BotToken != "" && !c.Bool("no-telegram")
			if port <= 0 && !useTelegram {
				return outputError(errors.NewInvalidRequest("nothing to serve: set BOT_TOKEN or a web port"))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := web.NewHub(logger)
			d := newDispatcher(db, cfg, logger, bot.WithNotifier(hub))

			g, gctx := errgroup.WithContext(ctx)

			if port > 0 {
				srv, err := web.NewServer(db, d, hub, logger, Version, bind, port)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				g.Go(func() error {
					defer hub.Close()
					return web.Run(gctx, srv, logger)
				})
			}

			if useTelegram {
				api, err := telegram.Connect(cfg.BotToken)
				if err != nil {
					stop()
					_ = g.Wait()
					return cli.Exit(fmt.Sprintf("telegram login failed: %v", err), 1)
				}
				logger.Info("telegram connected", zap.String("bot", api.Self.UserName))
				adapter := telegram.New(api, d, logger)
				g.Go(func() error { return adapter.Run(gctx) })
			}

			if err := g.Wait(); err != nil && !isShutdown(err) {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

func newDispatcher(db *sql.DB, cfg *config.Config, logger *zap.Logger, opts ...bot.Option) *bot.Dispatcher {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	sessions := session.New(cfg.SessionCapacity, cfg.SessionTTLDuration())
	opts = append([]bot.Option{bot.WithDoneScope(cfg.DoneScope)}, opts...)
	return bot.New(bot.NewSQLStore(db), sessions, logger, opts...)
}

func isShutdown(err error) bool {
	return stderrors.Is(err, context.Canceled)
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if bErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", bErr.Code, bErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseListFlag resolves a --list value, accepting aliases ("menu").
func parseListFlag(s string) (item.List, error) {
	if strings.TrimSpace(s) == "" {
		return item.ListDefault, nil
	}
	list, ok := item.ParseList(s)
	if !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown list %q (valid: default, weekmenu, toko)", s))
	}
	return list, nil
}

// parsePosition parses a 1-based position argument.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("position must be a positive number, got %q", s))
	}
	return n, nil
}
