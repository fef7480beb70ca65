package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resultboard-api/internal/dto"
	"github.com/noah-isme/resultboard-api/internal/models"
	"github.com/noah-isme/resultboard-api/internal/repository"
)

type contactRepoStub struct {
	created   models.ContactSubmission
	status    string
	updateErr error
}

func (c *contactRepoStub) Create(ctx context.Context, submission *models.ContactSubmission) error {
	c.created = *submission
	return nil
}

func (c *contactRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	c.status = status
	return nil
}

type failingDelivery struct{}

func (f failingDelivery) Deliver(ctx context.Context, submission models.ContactSubmission) error {
	return errors.New("delivery error")
}

type publisherStub struct {
	subject string
	data    []byte
	err     error
}

func (p *publisherStub) Publish(subject string, data []byte) error {
	p.subject = subject
	p.data = data
	return p.err
}

func TestContactServiceDeliveryFailureLeavesQueued(t *testing.T) {
	repo := &contactRepoStub{}
	svc := NewContactService(repo, validator.New(), failingDelivery{}, testLogger())

	payload := dto.ContactRequest{Name: "User", Email: "user@example.com", Message: "My result is missing"}
	resp, err := svc.Submit(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, models.ContactStatusQueued, resp.Status)
	require.Equal(t, models.ContactStatusQueued, repo.created.Status)
	require.Empty(t, repo.status)
}

func TestContactServiceSentEvenWhenStatusUpdateFails(t *testing.T) {
	repo := &contactRepoStub{updateErr: errors.New("database is locked")}
	svc := NewContactService(repo, validator.New(), NewLogContactDelivery(testLogger()), testLogger())

	resp, err := svc.Submit(context.Background(), dto.ContactRequest{Name: "User", Email: "user@example.com", Message: "Hi"})
	require.NoError(t, err)
	require.Equal(t, models.ContactStatusSent, resp.Status)
}

func TestContactServiceRequiredFields(t *testing.T) {
	svc := NewContactService(&contactRepoStub{}, validator.New(), NewLogContactDelivery(testLogger()), testLogger())
	ctx := context.Background()

	_, err := svc.Submit(ctx, dto.ContactRequest{Email: "user@example.com", Message: "Hello there"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	require.Equal(t, "Name", validationErrs[0].Field())

	_, err = svc.Submit(ctx, dto.ContactRequest{Name: "User", Email: "not-an-email", Message: "Hello there"})
	require.ErrorAs(t, err, &validationErrs)
	require.Equal(t, "email", validationErrs[0].Tag())

	_, err = svc.Submit(ctx, dto.ContactRequest{Name: "User", Email: "user@example.com", Message: "<script></script><b></b>"})
	require.ErrorIs(t, err, ErrContactIncomplete)

	_, err = svc.Submit(ctx, dto.ContactRequest{Name: "<i></i>", Email: "user@example.com", Message: "Hello there"})
	require.ErrorIs(t, err, ErrContactIncomplete)
}

func TestContactServiceDefaultsSubject(t *testing.T) {
	repo := &contactRepoStub{}
	svc := NewContactService(repo, validator.New(), NewLogContactDelivery(testLogger()), testLogger())

	resp, err := svc.Submit(context.Background(), dto.ContactRequest{Name: "Bo", Email: "bo@example.com", Message: "Hi"})
	require.NoError(t, err)
	require.Equal(t, "No subject", repo.created.Subject)
	require.Equal(t, "Thank you for your message! We'll get back to you soon.", resp.Message)
	require.True(t, strings.HasPrefix(resp.ReferenceID, "msg-"))
	require.Equal(t, resp.ReferenceID, repo.created.ReferenceID)
	require.Equal(t, models.ContactStatusSent, repo.status)
}

func TestContactServiceSanitisesAndPublishes(t *testing.T) {
	db := setupServiceTestDB(t)
	publisher := &publisherStub{}
	delivery := NewNATSContactDelivery(publisher, "contact.inbox", testLogger())
	svc := NewContactService(repository.NewContactRepository(db), validator.New(), delivery, testLogger())

	resp, err := svc.Submit(context.Background(), dto.ContactRequest{
		Name:    "Asha",
		Email:   "Asha@Example.com",
		Subject: "Sem 3",
		Message: "<b>Result</b> for sem 3 & 4 is missing",
	})
	require.NoError(t, err)
	require.Equal(t, models.ContactStatusSent, resp.Status)

	require.Equal(t, "contact.inbox", publisher.subject)
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(publisher.data, &event))
	require.Equal(t, resp.ReferenceID, event["reference_id"])
	require.Equal(t, "Result for sem 3 & 4 is missing", event["message"])
	require.Equal(t, "asha@example.com", event["email"])

	var stored models.ContactSubmission
	require.NoError(t, db.Where("reference_id = ?", resp.ReferenceID).First(&stored).Error)
	require.Equal(t, models.ContactStatusSent, stored.Status)
	require.NotNil(t, stored.DeliveredAt)
	require.Equal(t, "Sem 3", stored.Subject)
}

func TestNATSContactDeliveryWithoutPublisher(t *testing.T) {
	delivery := NewNATSContactDelivery(nil, "", testLogger())
	err := delivery.Deliver(context.Background(), models.ContactSubmission{ReferenceID: "ref"})
	require.ErrorIs(t, err, ErrContactPublisherUnavailable)
}

func TestMaskEmailAddress(t *testing.T) {
	require.Equal(t, "a***a@example.com", maskEmailAddress("Asha@example.com"))
	require.Equal(t, "b***@example.com", maskEmailAddress("bo@example.com"))
	require.Equal(t, "***", maskEmailAddress("invalid"))
	require.Empty(t, maskEmailAddress(""))
}
