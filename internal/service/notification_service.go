package service

import (
	"context"
	"fmt"
	"html"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/pkg/logger"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Notifier tells a learner about level-ups and new badges. Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, user *model.User, outcome *Outcome)
}

// NewNotifier returns a SendGrid notifier when an API key is configured, otherwise a log-only one.
func NewNotifier(cfg config.NotifyConfig) Notifier {
	if cfg.SendgridAPIKey == "" {
		return LogNotifier{}
	}
	return &SendgridNotifier{
		client:   sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:     mail.NewEmail(cfg.FromName, cfg.FromEmail),
		timeout:  10 * time.Second,
		detached: true,
	}
}

type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, user *model.User, outcome *Outcome) {
	if outcome == nil || outcome.empty() {
		return
	}
	logger.Log.Debug("Notification skipped, no mail provider configured",
		zap.String("user_id", user.ID),
		zap.Int("level_ups", len(outcome.LevelUps)),
		zap.Int("badges", len(outcome.BadgesAwarded)),
	)
}

type SendgridNotifier struct {
	client   *sendgrid.Client
	from     *mail.Email
	timeout  time.Duration
	detached bool
}

func (n *SendgridNotifier) Notify(ctx context.Context, user *model.User, outcome *Outcome) {
	if outcome == nil || outcome.empty() || user.Email == "" {
		return
	}

	subject, plain, htmlBody := composeAchievementMail(user, outcome)
	message := mail.NewSingleEmail(n.from, subject, mail.NewEmail(user.DisplayName(), user.Email), plain, htmlBody)

	send := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		resp, err := n.client.SendWithContext(ctx, message)
		if err != nil {
			logger.Log.Error("Failed to send achievement mail", zap.String("user_id", user.ID), zap.Error(err))
			return
		}
		if resp.StatusCode >= 300 {
			logger.Log.Error("SendGrid rejected achievement mail",
				zap.String("user_id", user.ID),
				zap.Int("status", resp.StatusCode),
				zap.String("body", resp.Body),
			)
			return
		}
		logger.Log.Debug("Achievement mail sent", zap.String("user_id", user.ID))
	}

	if n.detached {
		// the request context is cancelled as soon as the response is written
		go send(context.Background())
		return
	}
	send(ctx)
}

func composeAchievementMail(user *model.User, outcome *Outcome) (subject, plain, htmlBody string) {
	var lines []string
	for _, l := range outcome.LevelUps {
		lines = append(lines, fmt.Sprintf("You reached level %s.", l.Name))
	}
	for _, b := range outcome.BadgesAwarded {
		lines = append(lines, fmt.Sprintf("You earned the %s badge.", b.Name))
	}

	switch {
	case len(outcome.LevelUps) > 0:
		subject = fmt.Sprintf("Level up: %s", outcome.LevelUps[len(outcome.LevelUps)-1].Name)
	case len(outcome.BadgesAwarded) == 1:
		subject = fmt.Sprintf("New badge: %s", outcome.BadgesAwarded[0].Name)
	default:
		subject = fmt.Sprintf("You earned %d new badges", len(outcome.BadgesAwarded))
	}

	greeting := fmt.Sprintf("Hi %s,", user.DisplayName())
	plain = greeting + "\n\n" + strings.Join(lines, "\n") + "\n"

	var b strings.Builder
	b.WriteString("<p>" + html.EscapeString(greeting) + "</p><ul>")
	for _, line := range lines {
		b.WriteString("<li>" + html.EscapeString(line) + "</li>")
	}
	b.WriteString("</ul>")
	return subject, plain, b.String()
}
