package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spool/internal/config"
	"spool/internal/fingerprint"
	"spool/internal/timeline"
)

const userAgent = "Spool/0.1.0"

// Service defines the notification surface exposed to render components.
type Service interface {
	NotifyRenderCompleted(ctx context.Context, requestID string, fp fingerprint.Fingerprint, elapsed time.Duration) error
	NotifyRenderFailed(ctx context.Context, requestID string, err error) error
	NotifyFootageUnavailable(ctx context.Context, inputName, filePath string) error
	NotifyCacheInvalidated(ctx context.Context, r timeline.TimeRange) error
	NotifyCacheValidated(ctx context.Context, r timeline.TimeRange) error
	NotifyCachePruned(ctx context.Context, removed int, freedBytes int64) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, requestID string, fp fingerprint.Fingerprint, elapsed time.Duration) error {
	elapsed = elapsed.Round(time.Millisecond)
	if elapsed < 0 {
		elapsed = 0
	}
	data := payload{
		title:   "Spool - Render Complete",
		message: fmt.Sprintf("Frame %s rendered in %s (request %s)", shortDigest(fp), elapsed, strings.TrimSpace(requestID)),
		tags:    []string{"spool", "render", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderFailed(ctx context.Context, requestID string, err error) error {
	var builder strings.Builder
	builder.WriteString("Render failed")
	if requestID = strings.TrimSpace(requestID); requestID != "" {
		builder.WriteString(" for request ")
		builder.WriteString(requestID)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Spool - Render Failed",
		message:  builder.String(),
		tags:     []string{"spool", "render", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFootageUnavailable(ctx context.Context, inputName, filePath string) error {
	inputName = strings.TrimSpace(inputName)
	filePath = strings.TrimSpace(filePath)
	message := fmt.Sprintf("Footage unavailable for input %q", inputName)
	if filePath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, filePath)
	}
	data := payload{
		title:    "Spool - Footage Missing",
		message:  message,
		tags:     []string{"spool", "footage", "missing"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCacheInvalidated(ctx context.Context, r timeline.TimeRange) error {
	data := payload{
		title:   "Spool - Cache Invalidated",
		message: fmt.Sprintf("Frames in [%s, %s) need re-render", r.In(), r.Out()),
		tags:    []string{"spool", "cache", "invalidated"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCacheValidated(ctx context.Context, r timeline.TimeRange) error {
	data := payload{
		title:   "Spool - Cache Validated",
		message: fmt.Sprintf("Frames in [%s, %s) are up to date", r.In(), r.Out()),
		tags:    []string{"spool", "cache", "validated"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCachePruned(ctx context.Context, removed int, freedBytes int64) error {
	if freedBytes < 0 {
		freedBytes = 0
	}
	data := payload{
		title:   "Spool - Cache Pruned",
		message: fmt.Sprintf("Pruned %d cached frames, freed %d bytes", removed, freedBytes),
		tags:    []string{"spool", "cache", "pruned"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Spool - Test",
		message:  "Notification system test",
		tags:     []string{"spool", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

// shortDigest keeps messages readable; the full digest lives in the logs.
func shortDigest(fp fingerprint.Fingerprint) string {
	encoded := fp.Encoded()
	if len(encoded) > 12 {
		return encoded[:12]
	}
	return encoded
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRenderCompleted(context.Context, string, fingerprint.Fingerprint, time.Duration) error {
	return nil
}
func (noopService) NotifyRenderFailed(context.Context, string, error) error         { return nil }
func (noopService) NotifyFootageUnavailable(context.Context, string, string) error  { return nil }
func (noopService) NotifyCacheInvalidated(context.Context, timeline.TimeRange) error { return nil }
func (noopService) NotifyCacheValidated(context.Context, timeline.TimeRange) error   { return nil }
func (noopService) NotifyCachePruned(context.Context, int, int64) error             { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
