package dispatch_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/dispatch"
	"github.com/sondeolabs/convoca/internal/i18n"
	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/webserver/infrastructure"
	"gorm.io/gorm"
)

type harness struct {
	db          *gorm.DB
	invitations *model.InvitationRepository
	queue       *model.NotificationRepository
	mock        *infrastructure.SMTPMock
	dispatcher  *dispatch.Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := infrastructure.Connect("file::memory:")
	translator, err := i18n.NewTranslator(notification.TranslationsFS(), "en")
	if err != nil {
		t.Fatalf("Unexpected error building translator: %v", err)
	}

	invitations := &model.InvitationRepository{DB: db}
	queue := &model.NotificationRepository{DB: db}
	mock := &infrastructure.SMTPMock{}

	return &harness{
		db:          db,
		invitations: invitations,
		queue:       queue,
		mock:        mock,
		dispatcher:  dispatch.NewDispatcher(queue, invitations, mock, notification.NewComposer(translator), dispatch.Config{}),
	}
}

func (h *harness) addInvitation(t *testing.T, status model.Status) *model.Invitation {
	t.Helper()

	invitation := &model.Invitation{
		UUID:           uuid.NewString(),
		CampaignID:     "campaign-1",
		CompanyID:      "company-1",
		RecipientEmail: "ana@example.com",
		Token:          uuid.NewString(),
		Status:         status,
		ExpiresAt:      time.Now().UTC().Add(14 * 24 * time.Hour),
	}
	if err := h.invitations.Create(invitation); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return invitation
}

func (h *harness) addJob(t *testing.T, invitation *model.Invitation, payload interface{}, scheduledFor time.Time) *model.NotificationJob {
	t.Helper()

	kind, body, err := notification.Encode(payload)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	job := &model.NotificationJob{
		UUID:         uuid.NewString(),
		CompanyID:    invitation.CompanyID,
		TargetType:   model.TargetInvitation,
		TargetID:     invitation.UUID,
		Channel:      model.ChannelEmail,
		Priority:     model.PriorityHigh,
		Status:       model.JobPending,
		ScheduledFor: scheduledFor,
		MaxRetries:   model.DefaultMaxRetries,
		PayloadKind:  kind,
		Payload:      body,
	}
	if err := h.queue.Enqueue(job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return job
}

func (h *harness) reload(t *testing.T, job *model.NotificationJob) *model.NotificationJob {
	t.Helper()

	var reloaded model.NotificationJob
	if err := h.db.Where("uuid = ?", job.UUID).First(&reloaded).Error; err != nil {
		t.Fatalf("Unexpected error reloading job: %v", err)
	}
	return &reloaded
}

func TestProcessBatchSendsInitialInvitation(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	invitation := h.addInvitation(t, model.StatusPending)
	job := h.addJob(t, invitation, notification.InvitationPayload{
		CampaignName:  "Spring Climate Survey",
		RecipientName: "Ana",
		Link:          "http://example.com/surveys/tok",
	}, now.Add(-time.Minute))

	h.mock.Wg.Add(1)
	h.dispatcher.ProcessBatch(context.Background(), now)
	h.mock.Wg.Wait()

	messages := h.mock.Messages()
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message sent, got %d", len(messages))
	}
	if messages[0].To != "ana@example.com" {
		t.Errorf("Expected message to the recipient, got %s", messages[0].To)
	}
	if messages[0].Headers["X-Convoca-Job"] != job.UUID {
		t.Errorf("Expected the job id header to be set")
	}

	if reloaded := h.reload(t, job); reloaded.Status != model.JobSent {
		t.Errorf("Expected job to be marked sent, got %s", reloaded.Status)
	}

	updated, _ := h.invitations.FindByUUID(invitation.UUID)
	if updated.Status != model.StatusSent {
		t.Errorf("Expected invitation to transition to sent, got %s", updated.Status)
	}
	if updated.SentAt == nil {
		t.Errorf("Expected the send timestamp to be recorded")
	}
}

func TestProcessBatchCountsReminder(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	invitation := h.addInvitation(t, model.StatusSent)
	h.addJob(t, invitation, notification.ReminderPayload{
		CampaignName: "Spring Climate Survey",
		Link:         "http://example.com/surveys/tok",
		ExpiresAt:    invitation.ExpiresAt,
	}, now.Add(-time.Minute))

	h.mock.Wg.Add(1)
	h.dispatcher.ProcessBatch(context.Background(), now)
	h.mock.Wg.Wait()

	updated, _ := h.invitations.FindByUUID(invitation.UUID)
	if updated.ReminderCount != 1 {
		t.Errorf("Expected reminder count 1, got %d", updated.ReminderCount)
	}
	if updated.LastReminderSent == nil {
		t.Errorf("Expected the reminder timestamp to be recorded")
	}
}

func TestProcessBatchDropsStaleReminder(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	invitation := h.addInvitation(t, model.StatusSent)
	job := h.addJob(t, invitation, notification.ReminderPayload{
		CampaignName: "Spring Climate Survey",
		Link:         "http://example.com/surveys/tok",
		ExpiresAt:    invitation.ExpiresAt,
	}, now.Add(-time.Minute))

	// The recipient finished between scheduling and dispatch.
	if _, err := h.invitations.Transition(invitation, model.EventMarkCompleted, now); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	h.dispatcher.ProcessBatch(context.Background(), now)

	if h.mock.CalledSend() {
		t.Errorf("Expected no message for a completed invitation")
	}
	if reloaded := h.reload(t, job); reloaded.Status != model.JobCancelled {
		t.Errorf("Expected stale job to be cancelled, got %s", reloaded.Status)
	}
}

func TestProcessBatchRetriesThenDeadLetters(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	invitation := h.addInvitation(t, model.StatusPending)
	job := h.addJob(t, invitation, notification.InvitationPayload{
		CampaignName: "Spring Climate Survey",
		Link:         "http://example.com/surveys/tok",
	}, now.Add(-time.Minute))

	h.mock.Err = timeoutError{}

	for attempt := 0; attempt < model.DefaultMaxRetries; attempt++ {
		h.mock.Wg.Add(1)
		// Jump past the rescheduled time and the lease of the previous attempt.
		h.dispatcher.ProcessBatch(context.Background(), now.Add(time.Duration(attempt)*time.Hour))
		h.mock.Wg.Wait()
	}

	reloaded := h.reload(t, job)
	if reloaded.Status != model.JobFailed {
		t.Errorf("Expected job to dead-letter after %d attempts, got %s", model.DefaultMaxRetries, reloaded.Status)
	}
	if reloaded.RetryCount != model.DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", model.DefaultMaxRetries, reloaded.RetryCount)
	}
	if !strings.Contains(reloaded.FailureReason, "unreachable") {
		t.Errorf("Expected the transport error to be recorded, got %q", reloaded.FailureReason)
	}

	letters, err := h.queue.DeadLetters(invitation.CompanyID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(letters) != 1 {
		t.Errorf("Expected 1 dead letter, got %d", len(letters))
	}

	updated, _ := h.invitations.FindByUUID(invitation.UUID)
	if updated.Status != model.StatusBounced {
		t.Errorf("Expected the invitation to bounce after exhausting delivery, got %s", updated.Status)
	}
}

func TestSendTimeout(t *testing.T) {
	db := infrastructure.Connect("file::memory:")
	translator, err := i18n.NewTranslator(notification.TranslationsFS(), "en")
	if err != nil {
		t.Fatalf("Unexpected error building translator: %v", err)
	}

	invitations := &model.InvitationRepository{DB: db}
	queue := &model.NotificationRepository{DB: db}
	dispatcher := dispatch.NewDispatcher(queue, invitations, stuckSender{}, notification.NewComposer(translator), dispatch.Config{
		SendTimeout: 10 * time.Millisecond,
	})

	h := &harness{db: db, invitations: invitations, queue: queue}
	now := time.Now().UTC()
	invitation := h.addInvitation(t, model.StatusPending)
	job := h.addJob(t, invitation, notification.InvitationPayload{
		CampaignName: "Spring Climate Survey",
		Link:         "http://example.com/surveys/tok",
	}, now.Add(-time.Minute))

	dispatcher.ProcessBatch(context.Background(), now)

	reloaded := h.reload(t, job)
	if reloaded.Status != model.JobPending {
		t.Errorf("Expected a timed-out job to be retried, got %s", reloaded.Status)
	}
	if !strings.Contains(reloaded.FailureReason, "timed out") {
		t.Errorf("Expected a timeout failure reason, got %q", reloaded.FailureReason)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string { return "smtp server unreachable" }

// stuckSender simulates an SMTP conversation that never returns.
type stuckSender struct{}

func (stuckSender) Send(to, subject, html, text string, headers map[string]string) (string, error) {
	time.Sleep(500 * time.Millisecond)
	return "", nil
}
