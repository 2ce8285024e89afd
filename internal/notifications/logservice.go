package notifications

import (
	"context"
	"log/slog"
	"time"

	"spool/internal/fingerprint"
	"spool/internal/logging"
	"spool/internal/timeline"
)

// logService writes every event to the structured log instead of
// pushing it anywhere. Useful when spool runs embedded in an editor
// session with no push channel configured.
type logService struct {
	logger *slog.Logger
}

// NewLogService returns a Service that records events via logger.
func NewLogService(logger *slog.Logger) Service {
	return &logService{logger: logging.NewComponentLogger(logger, "notifications")}
}

func (s *logService) NotifyRenderCompleted(ctx context.Context, requestID string, fp fingerprint.Fingerprint, elapsed time.Duration) error {
	s.logger.InfoContext(ctx, "render completed",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldFingerprint, fp.String()),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

func (s *logService) NotifyRenderFailed(ctx context.Context, requestID string, err error) error {
	s.logger.WarnContext(ctx, "render failed",
		logging.String(logging.FieldRequestID, requestID),
		logging.Error(err),
	)
	return nil
}

func (s *logService) NotifyFootageUnavailable(ctx context.Context, inputName, filePath string) error {
	s.logger.WarnContext(ctx, "footage unavailable",
		logging.String("input", inputName),
		logging.String("file", filePath),
	)
	return nil
}

func (s *logService) NotifyCacheInvalidated(ctx context.Context, r timeline.TimeRange) error {
	s.logger.InfoContext(ctx, "cache invalidated",
		logging.String("in", r.In().String()),
		logging.String("out", r.Out().String()),
	)
	return nil
}

func (s *logService) NotifyCacheValidated(ctx context.Context, r timeline.TimeRange) error {
	s.logger.InfoContext(ctx, "cache validated",
		logging.String("in", r.In().String()),
		logging.String("out", r.Out().String()),
	)
	return nil
}

func (s *logService) NotifyCachePruned(ctx context.Context, removed int, freedBytes int64) error {
	s.logger.InfoContext(ctx, "cache pruned",
		logging.Int("removed", removed),
		logging.Int64("freed_bytes", freedBytes),
	)
	return nil
}

func (s *logService) TestNotification(ctx context.Context) error {
	s.logger.InfoContext(ctx, "test notification")
	return nil
}
