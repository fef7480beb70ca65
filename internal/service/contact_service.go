package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/observability"
	"github.com/noah-isme/resultboard-api/internal/repository"
)

// ErrContactIncomplete indicates name or message had no text left once markup was stripped.
var ErrContactIncomplete = errors.New("name, email and message are required")

const (
	contactAcknowledgement = "Thank you for your message! We'll get back to you soon."
	defaultContactSubject  = "No subject"
)

// ContactDelivery forwards a stored submission to whoever reads the inbox.
type ContactDelivery interface {
	Deliver(ctx context.Context, submission models.ContactSubmission) error
}

// ContactService accepts messages from the public contact form.
type ContactService interface {
	Submit(ctx context.Context, req dto.ContactRequest) (dto.ContactResponse, error)
}

type contactService struct {
	repo      repository.ContactRepository
	validator *validator.Validate
	delivery  ContactDelivery
	plain     *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewContactService wires the contact form workflow.
func NewContactService(repo repository.ContactRepository, validate *validator.Validate, delivery ContactDelivery, logger zerolog.Logger) ContactService {
	return &contactService{
		repo:      repo,
		validator: validate,
		delivery:  delivery,
		plain:     bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "contact_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/resultboard-api/internal/service/contact"),
	}
}

// Submit stores the message as queued and then hands it to the delivery. A
// failed delivery is not an error for the sender: the row stays queued.
func (s *contactService) Submit(ctx context.Context, req dto.ContactRequest) (dto.ContactResponse, error) {
	ctx, span := s.tracer.Start(ctx, "contact.submit")
	defer span.End()

	submission, err := s.prepare(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected")
		observability.ContactSubmissions().WithLabelValues("invalid").Inc()
		return dto.ContactResponse{}, err
	}
	span.SetAttributes(attribute.String("contact.reference_id", submission.ReferenceID))

	if err := s.repo.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		observability.ContactSubmissions().WithLabelValues("error").Inc()
		return dto.ContactResponse{}, err
	}

	status := s.dispatch(ctx, submission)
	observability.ContactSubmissions().WithLabelValues(status).Inc()
	span.SetAttributes(attribute.String("contact.status", status))
	span.SetStatus(codes.Ok, status)

	return dto.ContactResponse{
		ReferenceID: submission.ReferenceID,
		Status:      status,
		Message:     contactAcknowledgement,
	}, nil
}

func (s *contactService) prepare(req dto.ContactRequest) (models.ContactSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ContactSubmission{}, err
	}

	submission := models.ContactSubmission{
		ReferenceID: "msg-" + uuid.NewString(),
		Name:        s.plainText(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:     s.plainText(req.Subject),
		Message:     s.plainText(req.Message),
		Source:      strings.TrimSpace(req.Source),
		Status:      models.ContactStatusQueued,
	}
	if submission.Name == "" || submission.Message == "" {
		return models.ContactSubmission{}, ErrContactIncomplete
	}
	if submission.Subject == "" {
		submission.Subject = defaultContactSubject
	}
	return submission, nil
}

// dispatch returns the status the submission ended in. Once delivered the
// message counts as sent even if recording that fails.
func (s *contactService) dispatch(ctx context.Context, submission models.ContactSubmission) string {
	log := s.logger.With().
		Str("reference_id", submission.ReferenceID).
		Str("email", maskEmailAddress(submission.Email)).
		Logger()

	if err := s.delivery.Deliver(ctx, submission); err != nil {
		log.Warn().Err(err).Msg("contact delivery failed, submission left queued")
		return models.ContactStatusQueued
	}
	if err := s.repo.UpdateStatus(ctx, submission.ID, models.ContactStatusSent); err != nil {
		log.Error().Err(err).Msg("failed to mark contact submission sent")
	}

	log.Info().Msg("contact submission delivered")
	return models.ContactStatusSent
}

// plainText strips markup. Entities escaped by bluemonday are decoded again
// since the text is never rendered as HTML.
func (s *contactService) plainText(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(value)))
}

// maskEmailAddress keeps the first and last character of the local part.
func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}
