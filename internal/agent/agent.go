package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/observability/logging"
)

const DefaultDebounce = 250 * time.Millisecond

const (
	TriggerStart      = "start"
	TriggerTaskChange = "task_change"
	TriggerForeground = "foreground"
)

// Syncer mirrors the user's tasks to the server job store.
type Syncer interface {
	SyncUser(ctx context.Context, userID string, tasks []domain.Task) (int, error)
}

type Config struct {
	UserID string
	// TasksFile is watched for changes. Empty disables the watcher.
	TasksFile string
	Debounce  time.Duration
}

// Agent keeps local notification records in step with the task list.
type Agent struct {
	cfg       Config
	userID    domain.UserID
	reconcile app.ReconcileUseCase
	tasks     domain.TaskSource
	syncer    Syncer
	triggers  chan string
}

// New returns an Agent. syncer may be nil when no server is configured.
func New(cfg Config, reconcile app.ReconcileUseCase, tasks domain.TaskSource, syncer Syncer) (*Agent, error) {
	userID, err := domain.UserIDFromString(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid agent user id: %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	return &Agent{
		cfg:       cfg,
		userID:    userID,
		reconcile: reconcile,
		tasks:     tasks,
		syncer:    syncer,
		triggers:  make(chan string, 1),
	}, nil
}

// Trigger requests a pass from Run. A request made while one is already
// queued is dropped.
func (a *Agent) Trigger(reason string) {
	select {
	case a.triggers <- reason:
	default:
	}
}

// RunPass reconciles once and then mirrors the tasks to the server.
func (a *Agent) RunPass(ctx context.Context, trigger string) (app.ReconcileOutput, error) {
	ctx = logging.WithModule(ctx, logging.ModuleAgent)

	tasks, err := a.tasks.List(ctx, a.userID)
	if err != nil {
		return app.ReconcileOutput{}, fmt.Errorf("listing tasks: %w", err)
	}

	out, err := a.reconcile.ReconcileTasks(ctx, a.userID.String(), tasks)
	if err != nil {
		return out, err
	}

	if out.Skipped {
		return out, nil
	}

	slog.InfoContext(ctx, "reconciliation pass finished",
		"trigger", trigger,
		"user_id", a.userID.String(),
		"task_count", len(tasks),
		"created", out.Created,
		"scheduled", out.Scheduled,
		"fired", out.Fired,
		"deleted", out.Deleted,
	)

	if a.syncer == nil {
		return out, nil
	}

	pending, err := a.syncer.SyncUser(ctx, a.userID.String(), tasks)
	if err != nil {
		slog.WarnContext(ctx, "server sync failed",
			"user_id", a.userID.String(),
			"error", err.Error(),
		)

		return out, nil
	}

	slog.DebugContext(ctx, "server sync finished",
		"user_id", a.userID.String(),
		"pending_jobs", pending,
	)

	return out, nil
}

// Run performs a pass at start, after each change to the tasks file, and
// on every Trigger, until ctx is done.
func (a *Agent) Run(ctx context.Context) error {
	a.pass(ctx, TriggerStart)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		target string
	)

	if a.cfg.TasksFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		target = filepath.Clean(a.cfg.TasksFile)

		// Watch the directory so editors that replace the file are still seen.
		if err := watcher.Add(filepath.Dir(target)); err != nil {
			return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
		}

		events = watcher.Events
		errs = watcher.Errors
	}

	debounce := time.NewTimer(a.cfg.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				events = nil

				continue
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				debounce.Reset(a.cfg.Debounce)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil

				continue
			}

			slog.WarnContext(ctx, "tasks file watcher error",
				"error", err.Error(),
			)

		case <-debounce.C:
			a.pass(ctx, TriggerTaskChange)

		case reason := <-a.triggers:
			a.pass(ctx, reason)
		}
	}
}

func (a *Agent) pass(ctx context.Context, trigger string) {
	if _, err := a.RunPass(ctx, trigger); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}

		slog.ErrorContext(ctx, "reconciliation pass failed",
			"trigger", trigger,
			"user_id", a.userID.String(),
			"error", err.Error(),
		)
	}
}
