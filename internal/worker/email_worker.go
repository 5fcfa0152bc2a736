package worker

// email_worker.go
// Processes receipt e-mail jobs from QueueRecibos.
// Renders the receipt PDF and mails it to the buyer via SMTP.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ferrepos/internal/infra"
	"ferrepos/internal/model"

	"github.com/rs/zerolog/log"
)

const maxIntentosEmail = 3

// ReciboEmailPayload is the job payload sent to QueueRecibos.
type ReciboEmailPayload struct {
	ToEmail string       `json:"to_email"`
	Subject string       `json:"subject"`
	Body    string       `json:"body"`
	Recibo  model.Recibo `json:"recibo"`
}

// EnviadorRecibos sends one rendered receipt. infra.Mailer implements it.
type EnviadorRecibos interface {
	EnviarRecibo(to, subject, body, nombreArchivo string, pdf []byte) error
}

// EmailWorker renders and sends receipt e-mails with retries.
type EmailWorker struct {
	mailer EnviadorRecibos
	espera time.Duration // base backoff between attempts
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer EnviadorRecibos) *EmailWorker {
	return &EmailWorker{mailer: mailer, espera: time.Second}
}

// Process renders the PDF once and tries to send it up to maxIntentosEmail times.
// Malformed payloads and exhausted retries are returned as errors so the pool
// moves the job to the DLQ.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return fmt.Errorf("payload invalido: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("numero", payload.Recibo.Numero).Msg("email_worker: empty to_email: skipping")
		return nil
	}

	pdf, err := infra.GenerarReciboPDF(payload.Recibo)
	if err != nil {
		return err
	}
	nombre := "recibo_" + payload.Recibo.Numero + ".pdf"

	err = withRetry(ctx, maxIntentosEmail, w.espera, func(attempt int) error {
		if err := w.mailer.EnviarRecibo(payload.ToEmail, payload.Subject, payload.Body, nombre, pdf); err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("numero", payload.Recibo.Numero).
				Msg("email_worker: send attempt failed")
			return err
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed after all retries")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("numero", payload.Recibo.Numero).Msg("email_worker: recibo sent")
	return nil
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2×base.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
