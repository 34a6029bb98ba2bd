package auth

import (
	"context"
	"log/slog"

	"github.com/ledgerly/server/internal/logger"
)

// Notifier delivers a one-time code to the owner of an email address.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogNotifier records issued codes in the application log instead of sending them.
// The code itself is only written when IncludeCode is set (development mode).
type LogNotifier struct {
	Logger      *slog.Logger
	IncludeCode bool
}

// NewLogNotifier creates a LogNotifier writing to log.
func NewLogNotifier(log *slog.Logger, includeCode bool) *LogNotifier {
	return &LogNotifier{Logger: log, IncludeCode: includeCode}
}

func (n *LogNotifier) SendOTP(ctx context.Context, email, code string) error {
	attrs := []any{slog.String("email", logger.MaskEmail(email))}
	if n.IncludeCode {
		attrs = append(attrs, slog.String("otp", code))
	}
	n.Logger.InfoContext(ctx, "otp issued", attrs...)
	return nil
}
