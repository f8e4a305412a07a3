package mailer

import (
	"context"
	"time"

	"github.com/marketbay/user-service/pkg/helpers"
)

// QueueNotifier enqueues verification emails on RabbitMQ; the email worker
// renders and delivers them. Satisfies the application's Notifier port.
type QueueNotifier struct {
	Pub       *helpers.RabbitPublisher
	VerifyURL string
	ExpiresIn time.Duration
}

func NewQueueNotifier(pub *helpers.RabbitPublisher, verifyURL string, expiresIn time.Duration) *QueueNotifier {
	return &QueueNotifier{Pub: pub, VerifyURL: verifyURL, ExpiresIn: expiresIn}
}

func (n *QueueNotifier) SendVerificationEmail(ctx context.Context, email, rawSecret string) error {
	link := n.VerifyURL + "?token=" + rawSecret
	job := EmailJob{
		To:       email,
		Template: "verify_email",
		Data: map[string]any{
			"Link":      link,
			"ExpiresIn": n.ExpiresIn.String(),
		},
	}
	return n.Pub.PublishJSON(ctx, job)
}
