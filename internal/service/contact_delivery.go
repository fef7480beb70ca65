package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/resultboard-api/internal/models"
)

// ErrContactPublisherUnavailable indicates the NATS delivery has no connection.
var ErrContactPublisherUnavailable = errors.New("contact publisher unavailable")

// LogContactDelivery writes submissions to the log. Used when NATS is not configured.
type LogContactDelivery struct {
	logger zerolog.Logger
}

// NewLogContactDelivery constructs a logging provider.
func NewLogContactDelivery(logger zerolog.Logger) *LogContactDelivery {
	return &LogContactDelivery{logger: logger.With().Str("component", "contact_delivery").Logger()}
}

// Deliver logs the submission and returns nil to indicate success.
func (l *LogContactDelivery) Deliver(ctx context.Context, submission models.ContactSubmission) error {
	l.logger.Info().
		Str("reference_id", submission.ReferenceID).
		Str("email", maskEmailAddress(submission.Email)).
		Msg("contact submission delivered to inbox")
	return nil
}

// ContactPublisher is the subset of *nats.Conn used for delivery.
type ContactPublisher interface {
	Publish(subject string, data []byte) error
}

type contactEvent struct {
	ReferenceID string    `json:"reference_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	Source      string    `json:"source,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NATSContactDelivery publishes submissions to a NATS subject for the mailer.
type NATSContactDelivery struct {
	publisher ContactPublisher
	subject   string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewNATSContactDelivery builds a NATS backed delivery.
func NewNATSContactDelivery(publisher ContactPublisher, subject string, logger zerolog.Logger) *NATSContactDelivery {
	if subject == "" {
		subject = "resultboard.contact"
	}
	return &NATSContactDelivery{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "contact_delivery").Str("subject", subject).Logger(),
		now:       time.Now,
	}
}

// Deliver publishes the submission as JSON.
func (n *NATSContactDelivery) Deliver(ctx context.Context, submission models.ContactSubmission) error {
	if n.publisher == nil {
		return ErrContactPublisherUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(contactEvent{
		ReferenceID: submission.ReferenceID,
		Name:        submission.Name,
		Email:       submission.Email,
		Subject:     submission.Subject,
		Message:     submission.Message,
		Source:      submission.Source,
		SubmittedAt: n.now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := n.publisher.Publish(n.subject, payload); err != nil {
		return err
	}

	n.logger.Debug().Str("reference_id", submission.ReferenceID).Msg("contact submission published")
	return nil
}
