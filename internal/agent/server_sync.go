package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const (
	DefaultSyncTimeout = 8 * time.Second
	syncUserPath       = "/api/reminders/sync-user"
)

type syncTask struct {
	TaskID      string    `json:"taskId"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduledAt"`
	NotifyAt    time.Time `json:"notifyAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsCompleted bool      `json:"isCompleted"`
}

type syncRequest struct {
	UserID string     `json:"userId"`
	Tasks  []syncTask `json:"tasks"`
}

type syncResponse struct {
	OK          bool   `json:"ok"`
	PendingJobs int    `json:"pendingJobs"`
	Error       string `json:"error"`
	Message     string `json:"message"`
}

// ServerSync posts task snapshots to the reminder server.
type ServerSync struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

func NewServerSync(baseURL string, timeout time.Duration) *ServerSync {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}

	return &ServerSync{
		endpoint: strings.TrimRight(baseURL, "/") + syncUserPath,
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout:  timeout,
	}
}

func (s *ServerSync) SyncUser(ctx context.Context, userID string, tasks []domain.Task) (int, error) {
	payload := syncRequest{
		UserID: userID,
		Tasks:  make([]syncTask, 0, len(tasks)),
	}

	for _, t := range tasks {
		snap := domain.SnapshotOf(t)
		payload.Tasks = append(payload.Tasks, syncTask{
			TaskID:      snap.TaskID.String(),
			Title:       snap.Title,
			ScheduledAt: snap.ScheduledAt,
			NotifyAt:    snap.NotifyAt,
			UpdatedAt:   snap.UpdatedAt,
			IsCompleted: snap.IsCompleted,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding sync request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building sync request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting sync request: %w", err)
	}
	defer resp.Body.Close()

	var out syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("sync status %d: decoding response: %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !out.OK {
		return 0, fmt.Errorf("sync status %d: %s: %s", resp.StatusCode, out.Error, out.Message)
	}

	return out.PendingJobs, nil
}
