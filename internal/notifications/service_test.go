package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"

	"spool/internal/config"
	"spool/internal/notifications"
	"spool/internal/timeline"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRenderFailed(context.Background(), "req-1", io.ErrUnexpectedEOF); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	fp := digest.FromString("frame")
	rng, err := timeline.NewRange(timeline.FromInt(2), timeline.FromInt(5))
	if err != nil {
		t.Fatalf("new range: %v", err)
	}

	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "render completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRenderCompleted(context.Background(), "req-42", fp, 1500*time.Millisecond)
			},
			expectTitle:   "Spool - Render Complete",
			expectMessage: "Frame " + fp.Encoded()[:12] + " rendered in 1.5s (request req-42)",
			expectTags:    "spool,render,completed",
		},
		{
			name: "render failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRenderFailed(context.Background(), "req-42", io.ErrUnexpectedEOF)
			},
			expectTitle:    "Spool - Render Failed",
			expectMessage:  "Render failed for request req-42: unexpected EOF",
			expectTags:     "spool,render,alert",
			expectPriority: "high",
		},
		{
			name: "footage unavailable",
			notify: func(svc notifications.Service) error {
				return svc.NotifyFootageUnavailable(context.Background(), "footage_in", "/media/clip.mov")
			},
			expectTitle:    "Spool - Footage Missing",
			expectMessage:  "Footage unavailable for input \"footage_in\"\nFile: /media/clip.mov",
			expectTags:     "spool,footage,missing",
			expectPriority: "high",
		},
		{
			name: "cache invalidated",
			notify: func(svc notifications.Service) error {
				return svc.NotifyCacheInvalidated(context.Background(), rng)
			},
			expectTitle:   "Spool - Cache Invalidated",
			expectMessage: "Frames in [2/1, 5/1) need re-render",
			expectTags:    "spool,cache,invalidated",
		},
		{
			name: "cache validated",
			notify: func(svc notifications.Service) error {
				return svc.NotifyCacheValidated(context.Background(), rng)
			},
			expectTitle:   "Spool - Cache Validated",
			expectMessage: "Frames in [2/1, 5/1) are up to date",
			expectTags:    "spool,cache,validated",
		},
		{
			name: "cache pruned",
			notify: func(svc notifications.Service) error {
				return svc.NotifyCachePruned(context.Background(), 3, 4096)
			},
			expectTitle:   "Spool - Cache Pruned",
			expectMessage: "Pruned 3 cached frames, freed 4096 bytes",
			expectTags:    "spool,cache,pruned",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
