package pushclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

type Config struct {
	URL         string
	AccessToken string
	// HTTPClient overrides the traced default client.
	HTTPClient *http.Client
}

// ExpoClient sends batches to the Expo push service.
type ExpoClient struct {
	url         string
	accessToken string
	client      *http.Client
}

func NewExpoClient(cfg Config) *ExpoClient {
	url := cfg.URL
	if url == "" {
		url = DefaultExpoPushURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &ExpoClient{
		url:         url,
		accessToken: cfg.AccessToken,
		client:      client,
	}
}

type expoMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title,omitempty"`
	Subtitle string            `json:"subtitle,omitempty"`
	Body     string            `json:"body,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details *struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

func (c *ExpoClient) Send(ctx context.Context, messages []domain.PushMessage) ([]domain.PushTicket, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	payload := make([]expoMessage, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, expoMessage{
			To:       m.To,
			Title:    m.Title,
			Subtitle: m.Subtitle,
			Body:     m.Body,
			Sound:    m.Sound,
			Data:     map[string]string{"taskId": m.TaskID.String()},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending push batch: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading push response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded expoResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding push response: %w", err)
	}

	if len(decoded.Data) != len(messages) {
		slog.WarnContext(ctx, "push response ticket count mismatch",
			"messages", len(messages),
			"tickets", len(decoded.Data),
		)
	}

	tickets := make([]domain.PushTicket, 0, len(decoded.Data))
	for _, t := range decoded.Data {
		ticket := domain.PushTicket{
			Status:  t.Status,
			Message: t.Message,
		}

		if t.Details != nil {
			ticket.ErrorCode = t.Details.Error
		}

		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

// StatusError is returned when the push service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push service returned status %d", e.StatusCode)
}
