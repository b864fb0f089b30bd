package tasks

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// LogMailer writes outgoing mail to the log instead of delivering it.
type LogMailer struct {
	Log *logrus.Logger
}

func (m LogMailer) Send(ctx context.Context, to string, subject string, body string) error {
	log := m.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info(body)
	return nil
}
