package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/KasumiMercury/primind-task-reminder/internal/agent"
	"github.com/KasumiMercury/primind-task-reminder/internal/app"
	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/recordstore"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/scheduler"
	"github.com/KasumiMercury/primind-task-reminder/internal/infra/tasksource"
)

const (
	notificationsTimer = "timer"
	notificationsNone  = "none"
)

type agentRuntime struct {
	reconcile app.ReconcileUseCase
	agent     *agent.Agent
	close     func()
}

func openAgentRuntime(cfg *config.Config, notifications string) (*agentRuntime, error) {
	store, err := recordstore.Open(cfg.Agent.RecordDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	tasks := tasksource.NewFile(cfg.Agent.TasksFile)

	var (
		reconcile app.ReconcileUseCase
		local     domain.LocalScheduler
		closers   = []func(){func() { _ = store.Close() }}
	)

	switch notifications {
	case notificationsTimer:
		timer := scheduler.NewTimer(agent.PresentedHandler(
			func(ctx context.Context, taskID string, at time.Time) error {
				return reconcile.AcknowledgeDelivery(ctx, taskID, at)
			},
		))
		closers = append([]func(){timer.Close}, closers...)
		local = timer
	case notificationsNone:
		local = scheduler.Noop{}
	default:
		_ = store.Close()

		return nil, fmt.Errorf("unknown notifications mode %q (want %s or %s)", notifications, notificationsTimer, notificationsNone)
	}

	reconcile = app.NewReconcileUseCase(store, local, tasks)

	var syncer agent.Syncer
	if cfg.Agent.ServerURL != "" {
		syncer = agent.NewServerSync(cfg.Agent.ServerURL, cfg.Agent.SyncTimeout)
	}

	ag, err := agent.New(agent.Config{
		UserID:    cfg.Agent.UserID,
		TasksFile: cfg.Agent.TasksFile,
	}, reconcile, tasks, syncer)
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	return &agentRuntime{
		reconcile: reconcile,
		agent:     ag,
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

func newAgentCmd() *cobra.Command {
	var (
		notifications string
		once          bool
	)

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Keep local notifications in step with the tasks file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rt, err := openAgentRuntime(cfg, notifications)
			if err != nil {
				return err
			}
			defer rt.close()

			if once {
				out, err := rt.agent.RunPass(cmd.Context(), agent.TriggerForeground)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created: %d, scheduled: %d, fired: %d, deleted: %d\n",
					out.Created, out.Scheduled, out.Fired, out.Deleted)

				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						rt.agent.Trigger(agent.TriggerForeground)
					}
				}
			}()

			slog.Info("agent started",
				"user_id", cfg.Agent.UserID,
				"tasks_file", cfg.Agent.TasksFile,
				"notifications", notifications,
			)

			return rt.agent.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&notifications, "notifications", notificationsTimer, "local notification backend (timer or none)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentTaskCmd("read", "Mark a task's notification as read",
		func(ctx context.Context, uc app.ReconcileUseCase, taskID string) error {
			return uc.MarkRead(ctx, taskID, time.Now())
		}))
	cmd.AddCommand(newAgentTaskCmd("reset", "Cancel and reset a task's notification after an edit",
		func(ctx context.Context, uc app.ReconcileUseCase, taskID string) error {
			return uc.ResetTask(ctx, taskID)
		}))

	return cmd
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notification records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rt, err := openAgentRuntime(cfg, notificationsNone)
			if err != nil {
				return err
			}
			defer rt.close()

			records, err := rt.reconcile.ListRecords(cmd.Context(), cfg.Agent.UserID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tNOTIFY AT\tSENT\tUNREAD")

			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", r.TaskID, r.NotifyAt.Format(time.RFC3339), r.SentAt != nil, r.Unread)
			}

			return w.Flush()
		},
	}
}

func newAgentTaskCmd(use, short string, run func(ctx context.Context, uc app.ReconcileUseCase, taskID string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TASK_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rt, err := openAgentRuntime(cfg, notificationsNone)
			if err != nil {
				return err
			}
			defer rt.close()

			return run(cmd.Context(), rt.reconcile, args[0])
		},
	}
}
