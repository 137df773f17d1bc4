package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/mailer"
	"github.com/Hillarymukuka/Procurehub-sub000/internal/repository"
)

// Notifier emails workflow participants. Failures are logged and never
// propagate into the calling workflow.
type Notifier struct {
	mail   mailer.Mailer
	users  *repository.UserRepository
	logger *zap.Logger
}

func NewNotifier(mail mailer.Mailer, users *repository.UserRepository, logger *zap.Logger) *Notifier {
	return &Notifier{mail: mail, users: users, logger: logger}
}

// NotifyUser emails a platform user by ID.
func (n *Notifier) NotifyUser(ctx context.Context, userID uint, subject, body string) {
	user, err := n.users.FindByID(ctx, userID)
	if err != nil {
		n.logger.Warn("Notification skipped, user lookup failed",
			zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if err := n.mail.Send(user.Email, subject, body); err != nil {
		n.logger.Warn("Notification delivery failed",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}

// NotifyEmail emails an address directly.
func (n *Notifier) NotifyEmail(email, subject, body string) {
	if email == "" {
		return
	}
	if err := n.mail.Send(email, subject, body); err != nil {
		n.logger.Warn("Notification delivery failed",
			zap.String("email", email), zap.Error(err))
	}
}

func requestDecisionBody(number, decision, notes string) string {
	body := fmt.Sprintf("Your purchase request %s has been %s.", number, decision)
	if notes != "" {
		body += "\n\nNotes: " + notes
	}
	return body
}
