package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/handler"
)

type dispatchResult struct {
	OK        bool   `json:"ok"`
	DueJobs   int    `json:"dueJobs"`
	SentCount int    `json:"sentCount"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func newDispatchCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Trigger one dispatch pass on a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if server == "" {
				server = fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out, err := triggerDispatch(ctx, server, cfg.Dispatch.Secret)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "due jobs: %d, sent: %d\n", out.DueJobs, out.SentCount)

			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "base URL of the reminder server (default: local server port)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall request timeout")

	return cmd
}

func triggerDispatch(ctx context.Context, server, secret string) (dispatchResult, error) {
	url := strings.TrimRight(server, "/") + dispatchDuePath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return dispatchResult{}, fmt.Errorf("building dispatch request: %w", err)
	}

	if secret != "" {
		req.Header.Set(handler.DispatchSecretHeader, secret)
	}

	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	resp, err := client.Do(req)
	if err != nil {
		return dispatchResult{}, fmt.Errorf("posting dispatch request: %w", err)
	}
	defer resp.Body.Close()

	var out dispatchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return dispatchResult{}, fmt.Errorf("dispatch status %d: decoding response: %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("dispatch status %d: %s: %s", resp.StatusCode, out.Error, out.Message)
	}

	return out, nil
}
