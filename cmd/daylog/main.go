package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daylogapp/daylog/client/activity"
	"github.com/daylogapp/daylog/client/history"
	"github.com/daylogapp/daylog/client/i18n"
	"github.com/daylogapp/daylog/client/remote"
	"github.com/daylogapp/daylog/client/remote/bolt"
	"github.com/daylogapp/daylog/client/remote/rest"
	"github.com/daylogapp/daylog/client/session"
	"github.com/daylogapp/daylog/client/store"
	"github.com/daylogapp/daylog/internal/config"
	"github.com/daylogapp/daylog/pkg/logger"
)

const usage = `daylog - personal task log

Usage:
  daylog <command> [arguments]

Tasks:
  list                 show open and completed tasks
  add <title>          create a task
  done <id>            mark a task completed
  undone <id>          reopen a task
  rm <id>              delete a task
  output <id> <text>   record what the task produced ("" clears)
  link <id> <url>      attach a reference URL ("" clears)

Views:
  history              completed tasks grouped by day
  graph                yearly completion heatmap

Account (requires DAYLOG_API_URL):
  register <email>     create an account
  login <email>        sign in and print credentials
  logout               revoke the current session
  delete-account       delete the account and all its data
`

type app struct {
	cfg     *config.ClientConfig
	store   *store.Store
	remote  remote.Store
	rest    *rest.Client
	session *session.Manager
	bundle  *i18n.Bundle
	logger  *zap.Logger
	closers []func() error
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "daylog: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		os.Exit(1)
	}
}

func newApp() (*app, error) {
	cfg := config.LoadClient()
	zapLogger := logger.NewCLI(cfg.LogLevel)
	bundle := i18n.New(cfg.Language)

	alerts := store.AlertFunc(func(title, message string) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	})

	a := &app{cfg: cfg, bundle: bundle, logger: zapLogger}

	if cfg.APIURL != "" {
		client := rest.New(cfg.APIURL, zapLogger)
		client.SetCredentials(cfg.Token, cfg.SessionID)
		a.rest = client
		a.remote = client
		a.session = session.NewManager(client, bundle.Translate(), alerts, zapLogger)
	} else {
		local, err := bolt.Open(cfg.LocalDB)
		if err != nil {
			return nil, err
		}
		a.remote = local
		a.closers = append(a.closers, local.Close)
	}

	a.store = store.New(a.remote, bundle.Translate(), alerts, zapLogger)
	return a, nil
}

func (a *app) close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		return a.list(ctx)
	case "add":
		return a.add(ctx, args)
	case "done":
		return a.setCompleted(ctx, args, true)
	case "undone":
		return a.setCompleted(ctx, args, false)
	case "rm":
		return a.delete(ctx, args)
	case "output":
		return a.output(ctx, args)
	case "link":
		return a.link(ctx, args)
	case "history":
		return a.history(ctx)
	case "graph":
		return a.graph(ctx)
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "delete-account":
		return a.deleteAccount(ctx)
	default:
		fmt.Fprintf(os.Stderr, "daylog: unknown command %q\n\n", command)
		flag.Usage()
		return fmt.Errorf("unknown command")
	}
}

func (a *app) list(ctx context.Context) error {
	if err := a.store.Fetch(ctx); err != nil {
		return err
	}
	todos := a.store.Snapshot()
	if len(todos) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	for _, todo := range todos {
		mark := " "
		if todo.IsCompleted {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %s\n", mark, shortID(todo.ID), todo.Title)
		if todo.HasOutput() {
			fmt.Printf("         -> %s\n", *todo.Output)
		}
		if todo.URL != nil && *todo.URL != "" {
			fmt.Printf("         @ %s\n", *todo.URL)
		}
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	return a.store.Add(ctx, title)
}

func (a *app) setCompleted(ctx context.Context, args []string, completed bool) error {
	id, err := a.resolveID(ctx, args)
	if err != nil {
		return err
	}
	for _, todo := range a.store.Snapshot() {
		if todo.ID != id {
			continue
		}
		if todo.IsCompleted == completed {
			return nil
		}
		// Toggle takes the current state and flips it.
		return a.store.Toggle(ctx, id, todo.IsCompleted)
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	id, err := a.resolveID(ctx, args)
	if err != nil {
		return err
	}
	return a.store.Delete(ctx, id)
}

func (a *app) output(ctx context.Context, args []string) error {
	id, err := a.resolveID(ctx, args)
	if err != nil {
		return err
	}
	return a.store.UpdateOutput(ctx, id, strings.Join(args[1:], " "))
}

func (a *app) link(ctx context.Context, args []string) error {
	id, err := a.resolveID(ctx, args)
	if err != nil {
		return err
	}
	rawURL := ""
	if len(args) > 1 {
		rawURL = args[1]
	}
	return a.store.UpdateURL(ctx, id, rawURL)
}

func (a *app) history(ctx context.Context) error {
	if err := a.store.Fetch(ctx); err != nil {
		return err
	}
	groups, summary := history.GroupByDay(a.store.Snapshot(), time.Now(), a.bundle.Translate())

	fmt.Printf("%d completed, %d with output, over %d days\n", summary.TotalCompleted, summary.WithOutput, summary.Days)
	for _, group := range groups {
		fmt.Printf("\n%s\n", group.DisplayDate)
		for _, todo := range group.Todos {
			fmt.Printf("  %s  %s\n", shortID(todo.ID), todo.Title)
			if todo.HasOutput() {
				fmt.Printf("        -> %s\n", *todo.Output)
			}
		}
	}
	return nil
}

var levelGlyphs = map[activity.Level]string{
	activity.LevelEmpty: "·",
	activity.Level1:     "░",
	activity.Level2:     "▒",
	activity.Level3:     "▓",
	activity.Level4:     "█",
}

func (a *app) graph(ctx context.Context) error {
	today := time.Now()
	points, err := a.remote.CompletionCounts(ctx, today.AddDate(0, 0, -364))
	if err != nil {
		return err
	}
	graph := activity.Build(points, today)

	// One row per weekday, one column per week, matching the on-screen grid.
	for weekday := 0; weekday < 7; weekday++ {
		var row strings.Builder
		for _, week := range graph.Weeks {
			day := week[weekday]
			if day.Date.After(truncateDay(today)) {
				row.WriteString(" ")
				continue
			}
			row.WriteString(levelGlyphs[activity.LevelFor(day.Count)])
		}
		fmt.Println(row.String())
	}

	fmt.Printf("\n%d done this year · longest streak %d · current streak %d\n",
		graph.TotalCount, graph.LongestStreak, graph.CurrentStreak)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if err := a.requireServer(); err != nil {
		return err
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: daylog register <email>")
		return fmt.Errorf("missing email")
	}
	password, err := readPassword("password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("confirm: ")
	if err != nil {
		return err
	}
	if err := a.session.SignUp(ctx, args[0], password, confirm); err != nil {
		return err
	}
	a.printCredentials()
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if err := a.requireServer(); err != nil {
		return err
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: daylog login <email>")
		return fmt.Errorf("missing email")
	}
	password, err := readPassword("password: ")
	if err != nil {
		return err
	}
	if err := a.session.SignIn(ctx, args[0], password); err != nil {
		return err
	}
	a.printCredentials()
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.requireServer(); err != nil {
		return err
	}
	return a.session.SignOut(ctx)
}

func (a *app) deleteAccount(ctx context.Context) error {
	if err := a.requireServer(); err != nil {
		return err
	}
	fmt.Fprint(os.Stderr, "this permanently deletes the account and all tasks. type 'yes' to continue: ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "yes" {
		fmt.Fprintln(os.Stderr, "aborted")
		return nil
	}
	return a.session.DeleteAccount(ctx)
}

func (a *app) requireServer() error {
	if a.rest == nil {
		fmt.Fprintln(os.Stderr, "daylog: set DAYLOG_API_URL to use account commands")
		return fmt.Errorf("no server configured")
	}
	return nil
}

func (a *app) printCredentials() {
	fmt.Printf("export DAYLOG_TOKEN=%s\n", a.rest.Token())
	fmt.Printf("export DAYLOG_SESSION_ID=%s\n", a.rest.SessionID())
}

// resolveID accepts either a full UUID or the short prefix shown by list.
func (a *app) resolveID(ctx context.Context, args []string) (string, error) {
	if len(args) < 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "daylog: task id required")
		return "", fmt.Errorf("missing id")
	}
	id := args[0]

	if err := a.store.Fetch(ctx); err != nil {
		return "", err
	}
	var match string
	for _, todo := range a.store.Snapshot() {
		if todo.ID == id {
			return id, nil
		}
		if strings.HasPrefix(todo.ID, id) {
			if match != "" {
				fmt.Fprintf(os.Stderr, "daylog: id %q is ambiguous\n", id)
				return "", fmt.Errorf("ambiguous id")
			}
			match = todo.ID
		}
	}
	if match == "" {
		fmt.Fprintf(os.Stderr, "daylog: no task matches %q\n", id)
		return "", fmt.Errorf("task not found")
	}
	return match, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	var value string
	if _, err := fmt.Scanln(&value); err != nil {
		return "", err
	}
	return value, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
