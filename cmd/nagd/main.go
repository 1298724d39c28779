package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/nagd/internal/config"
	"github.com/sandeepkv93/nagd/internal/lock"
	"github.com/sandeepkv93/nagd/internal/logger"
	"github.com/sandeepkv93/nagd/internal/storage"
	"github.com/sandeepkv93/nagd/internal/update"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: nagd [-config file] [command]

commands:
  (none)                   open the TUI and run the reminder loop
  daemon                   run the reminder loop until interrupted
  run-once                 run the reminder loop a single time
  add <intensity> <text>   add a task (intensity 0-100)
  list [--done]            list todo or done tasks
  done <id>                mark a task done
  todo <id>                restore a done task
  delete <id>              delete a task
  migrate up|down          apply or roll back database migrations`)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nagd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a nagd.yaml config file")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	rest := fs.Args()
	cmd := ""
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "":
		err = runTUI(ctx, cfg)
	case "daemon":
		err = withApp(cfg, stderr, func(a *app) error { return runDaemon(ctx, a) })
	case "run-once":
		err = withApp(cfg, stderr, func(a *app) error { return runOnce(ctx, a, stdout) })
	case "add":
		err = withApp(cfg, stderr, func(a *app) error { return runAdd(ctx, a, rest, stdout) })
	case "list":
		err = withApp(cfg, stderr, func(a *app) error { return runList(ctx, a, rest, stdout) })
	case "done", "todo", "delete":
		err = withApp(cfg, stderr, func(a *app) error { return runTaskAction(ctx, a, cmd, rest, stdout) })
	case "migrate":
		err = runMigrate(cfg, rest, stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", cmd)
		printUsage(stderr)
		return 2
	}
	if err != nil {
		if cmd == "" {
			cmd = "tui"
		}
		fmt.Fprintf(stderr, "nagd %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func withApp(cfg *config.Config, logOutput io.Writer, fn func(*app) error) error {
	a, err := newApp(cfg, appOptions{logOutput: logOutput})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	logFile, err := logger.OpenFile(cfg.LogFilePath())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	a, err := newApp(cfg, appOptions{logOutput: logFile, withTray: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	// Adopt a saved invocation before the model's foreground trigger arms one.
	if err := a.restoreJobs(ctx); err != nil {
		a.logger.Warn("restore jobs failed", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(update.NewModel(update.Options{
		Actions: a.service,
		Tray:    a.tray,
		Loop:    a.runner,
	}), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.runScheduler(gctx)
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func runDaemon(ctx context.Context, a *app) error {
	a.logger.Info("daemon starting", "db", a.cfg.Database.Path, "interval", a.cfg.Scheduler.LoopInterval)
	if err := a.service.EnsureScheduled(ctx); err != nil {
		return err
	}
	err := a.runScheduler(ctx)
	a.logger.Info("daemon stopped")
	return err
}

func runOnce(ctx context.Context, a *app, out io.Writer) error {
	res, err := a.runner.Execute(ctx)
	if errors.Is(err, lock.ErrLocked) {
		fmt.Fprintln(out, "another reminder run is in progress, skipped")
		return nil
	}
	if err != nil {
		return err
	}
	if res.StoodDown {
		fmt.Fprintln(out, "no active tasks, reminders stood down")
		return nil
	}
	fmt.Fprintf(out, "active=%d seeded=%d fired=%d pruned=%d\n", res.Active, res.Seeded, res.Fired, res.Pruned)
	return nil
}

func runAdd(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errors.New("usage: nagd add <intensity> <text>")
	}
	intensity, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid intensity %q", args[0])
	}
	task, err := a.service.AddTask(ctx, strings.Join(args[1:], " "), intensity)
	if err != nil && task.ID == 0 {
		return err
	}
	fmt.Fprintf(out, "added #%d %s (intensity %d)\n", task.ID, task.Text, task.Intensity)
	return err
}

func runList(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	done := fs.Bool("done", false, "list done tasks")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: nagd list [--done]: %w", err)
	}
	tasks, err := a.service.Tasks(ctx, *done)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(out, "no tasks")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINTENSITY\tCREATED\tTEXT")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", t.ID, t.Intensity, t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Text)
	}
	return tw.Flush()
}

func runTaskAction(ctx context.Context, a *app, action string, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: nagd %s <id>", action)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid task id %q", args[0])
	}
	switch action {
	case "done":
		err = a.service.MarkDone(ctx, id)
	case "todo":
		err = a.service.MarkTodo(ctx, id)
	case "delete":
		err = a.service.DeleteTask(ctx, id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("task #%d not found", id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s #%d\n", action, id)
	return nil
}

func runMigrate(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) != 1 || (args[0] != "up" && args[0] != "down") {
		return errors.New("usage: nagd migrate up|down")
	}
	db, err := storage.OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if args[0] == "up" {
		err = storage.MigrateUp(db)
	} else {
		err = storage.MigrateDown(db)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "migrate %s: ok\n", args[0])
	return nil
}
