package service

import (
	"context"
	"log"
	"time"
)

// Mailer delivers out-of-band messages to vendors. Real delivery is a
// deployment concern; the log mailer stands in for it.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendCompletionNotice(ctx context.Context, email string) error
}

type logMailer struct {
	delay time.Duration // simulated dispatch latency
}

// NewLogMailer returns a Mailer that logs instead of sending.
func NewLogMailer() Mailer {
	return &logMailer{delay: 150 * time.Millisecond}
}

func (m *logMailer) wait(ctx context.Context) error {
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *logMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	log.Printf("mailer: verification code %s dispatched to %s", code, email)
	return nil
}

func (m *logMailer) SendCompletionNotice(ctx context.Context, email string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	log.Printf("mailer: onboarding completion notice dispatched to %s", email)
	return nil
}
