package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/mailer"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	maxMailAttempts = 5
	retryDelay      = 5 * time.Second
)

// MailWorker consumes mail_queue and delivers each message through the Sender.
type MailWorker struct {
	rdb    *redis.Client
	sender mailer.Sender
	log    zerolog.Logger
	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewMailWorker creates a new MailWorker.
func NewMailWorker(rdb *redis.Client, sender mailer.Sender, log zerolog.Logger) *MailWorker {
	return &MailWorker{
		rdb:    rdb,
		sender: sender,
		log:    log.With().Str("component", "mail_worker").Logger(),
		sleep:  time.Sleep,
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *MailWorker) processNext(ctx context.Context) {
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.MailQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if retry := w.deliver(ctx, result[1]); retry {
		w.sleep(retryDelay)
	}
}

// deliver sends one queued payload. It reports whether the message was put
// back on the queue.
func (w *MailWorker) deliver(ctx context.Context, raw string) bool {
	var msg mailer.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return false
	}

	err := w.sender.Send(ctx, msg)
	if err == nil {
		w.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Mail sent")
		return false
	}

	msg.Attempts++
	if msg.Attempts >= maxMailAttempts || errors.Is(err, mailer.ErrNoRecipient) {
		w.log.Error().Err(err).
			Str("to", msg.To).
			Int("attempts", msg.Attempts).
			Msg("Dropping undeliverable mail")
		return false
	}

	w.log.Warn().Err(err).
		Str("to", msg.To).
		Int("attempts", msg.Attempts).
		Msg("Send failed, retrying in 5s")

	// The requeue must land even when shutdown cancelled ctx mid-send.
	payload, _ := json.Marshal(msg)
	if err := w.rdb.RPush(context.WithoutCancel(ctx), config.WorkerKey.MailQueue, payload).Err(); err != nil {
		w.log.Error().Err(err).Msg("Requeue error")
	}
	return true
}

// drain sends everything left in the queue before shutdown. A failed
// delivery is put back and ends the drain.
func (w *MailWorker) drain(ctx context.Context) {
	drained := 0
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.MailQueue).Result()
		if err != nil {
			break
		}
		if w.deliver(ctx, raw) {
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
