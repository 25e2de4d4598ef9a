package notify

import (
	"context"
	"log/slog"
)

// LogTransport accepts every message and only logs it. Used when no mail
// provider is configured.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogTransport{logger: logger}
}

func (t *LogTransport) Name() string {
	return "log"
}

func (t *LogTransport) Send(ctx context.Context, msg *Message) error {
	attachments := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, a.Filename)
	}

	t.logger.InfoContext(ctx, "email not sent, log transport",
		"from", msg.From.String(),
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"attachments", attachments,
	)

	return nil
}
