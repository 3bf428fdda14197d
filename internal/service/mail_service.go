package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/mailer"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier sends the transactional mails the auth flow depends on.
type Notifier interface {
	SendVerification(ctx context.Context, to, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// MailService renders messages and pushes them onto the mail queue.
// Delivery happens in worker.MailWorker.
type MailService struct {
	cfg *config.Config
	rdb *redis.Client
	log zerolog.Logger
}

func NewMailService(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *MailService {
	return &MailService{
		cfg: cfg,
		rdb: rdb,
		log: log.With().Str("component", "mail_service").Logger(),
	}
}

// Enqueue appends msg to the mail queue.
func (s *MailService) Enqueue(ctx context.Context, msg mailer.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.MailQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	s.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Mail queued")
	return nil
}

func (s *MailService) SendVerification(ctx context.Context, to, token string) error {
	return s.Enqueue(ctx, mailer.VerificationMessage(to, s.cfg.AppURL, token))
}

func (s *MailService) SendPasswordReset(ctx context.Context, to, token string) error {
	return s.Enqueue(ctx, mailer.PasswordResetMessage(to, s.cfg.AppURL, token))
}

// SendContact forwards a contact-form message to the support inbox.
func (s *MailService) SendContact(ctx context.Context, from, subject, message string) error {
	return s.Enqueue(ctx, mailer.ContactMessage(s.cfg.SupportEmail, from, subject, message))
}
