// Package dispatch drains the notification queue: it claims due jobs,
// renders and sends them through the email transport, and settles each
// outcome back into the queue. Delivery is at-least-once with bounded
// retries; duplicate sends across concurrent pollers are prevented by the
// queue's lease.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sondeolabs/convoca/internal/model"
	"github.com/sondeolabs/convoca/internal/notification"
	"github.com/sondeolabs/convoca/internal/reminder"
)

// Sender is the outbound email transport. Implementations live in
// webserver/infrastructure; the dispatcher only sees this contract.
type Sender interface {
	Send(to, subject, html, text string, headers map[string]string) (messageID string, err error)
}

const baseRetryDelay = 15 * time.Minute

type Config struct {
	Interval      time.Duration
	BatchSize     int
	Lease         time.Duration
	SendTimeout   time.Duration
	SweepInterval time.Duration
}

type Dispatcher struct {
	queue       *model.NotificationRepository
	invitations *model.InvitationRepository
	sender      Sender
	composer    *notification.Composer
	cfg         Config
}

func NewDispatcher(queue *model.NotificationRepository, invitations *model.InvitationRepository, sender Sender, composer *notification.Composer, cfg Config) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Hour
	}

	return &Dispatcher{
		queue:       queue,
		invitations: invitations,
		sender:      sender,
		composer:    composer,
		cfg:         cfg,
	}
}

// Run polls the queue until the context is cancelled. Expired invitations are
// swept on a slower cadence from the same loop.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	sweeper := time.NewTicker(d.cfg.SweepInterval)
	defer sweeper.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweeper.C:
			if expired, err := d.invitations.MarkExpiredInvitations(time.Now().UTC()); err == nil && expired > 0 {
				log.Printf("expired %d overdue invitations\n", expired)
			}
		case <-ticker.C:
			d.ProcessBatch(ctx, time.Now().UTC())
		}
	}
}

// ProcessBatch claims one batch of due jobs and works through it.
func (d *Dispatcher) ProcessBatch(ctx context.Context, now time.Time) {
	jobs, err := d.queue.Claim(d.cfg.BatchSize, d.cfg.Lease, now)
	if err != nil {
		return
	}

	for i := range jobs {
		if ctx.Err() != nil {
			return
		}
		d.process(ctx, &jobs[i], now)
	}
}

func (d *Dispatcher) process(ctx context.Context, job *model.NotificationJob, now time.Time) {
	if job.TargetType != model.TargetInvitation {
		d.queue.MarkFailed(job, "unsupported target type", d.retryDelay(job), now)
		return
	}

	invitation, err := d.invitations.FindByUUID(job.TargetID)
	if err != nil {
		d.queue.MarkFailed(job, err.Error(), d.retryDelay(job), now)
		return
	}
	if invitation == nil {
		d.queue.Cancel(job)
		return
	}

	// Jobs scheduled days ago can go stale: the recipient may have completed
	// or the invitation may have been cancelled since. Re-check here rather
	// than trusting scheduling-time state.
	if stale := d.staleReason(job, invitation, now); stale != "" {
		log.Printf("dropping stale job %s: %s\n", job.UUID, stale)
		d.queue.Cancel(job)
		return
	}

	output, err := d.composer.Compose(job.PayloadKind, job.Payload)
	if err != nil {
		d.queue.MarkFailed(job, err.Error(), d.retryDelay(job), now)
		return
	}

	headers := map[string]string{
		"X-Convoca-Job": job.UUID,
	}

	if _, err := d.send(ctx, invitation.RecipientEmail, output, headers); err != nil {
		log.Printf("error sending job %s: %s\n", job.UUID, err)
		d.queue.MarkFailed(job, err.Error(), d.retryDelay(job), now)

		// An initial send that exhausted its retries is a delivery failure,
		// record it on the invitation itself.
		if job.Status == model.JobFailed && job.PayloadKind == notification.KindInvitation {
			if _, err := d.invitations.Transition(invitation, model.EventMarkBounced, now); err != nil {
				log.Printf("error marking invitation %s bounced: %s\n", invitation.UUID, err)
			}
		}
		return
	}

	d.queue.MarkSent(job)
	d.settleInvitation(job, invitation, now)
}

// send runs the transport call under a deadline so a stuck SMTP conversation
// cannot starve the poller.
func (d *Dispatcher) send(ctx context.Context, to string, output notification.Output, headers map[string]string) (string, error) {
	type sendResult struct {
		messageID string
		err       error
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	done := make(chan sendResult, 1)
	go func() {
		id, err := d.sender.Send(to, output.Subject, output.HTML, output.Text, headers)
		done <- sendResult{messageID: id, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("transport timed out after %s", d.cfg.SendTimeout)
	case result := <-done:
		return result.messageID, result.err
	}
}

func (d *Dispatcher) staleReason(job *model.NotificationJob, invitation *model.Invitation, now time.Time) string {
	switch job.PayloadKind {
	case notification.KindReminder:
		if !reminder.CanSend(invitation, now) {
			return "reminder gate refused"
		}
	case notification.KindInvitation:
		if invitation.IsTerminal() {
			return "invitation already closed"
		}
	}
	return ""
}

func (d *Dispatcher) settleInvitation(job *model.NotificationJob, invitation *model.Invitation, now time.Time) {
	switch job.PayloadKind {
	case notification.KindInvitation:
		if _, err := d.invitations.Transition(invitation, model.EventMarkSent, now); err != nil {
			log.Printf("error marking invitation %s sent: %s\n", invitation.UUID, err)
		}
	case notification.KindReminder:
		if err := d.invitations.IncrementReminder(invitation, now); err != nil {
			log.Printf("error counting reminder for %s: %s\n", invitation.UUID, err)
		}
	}
}

// retryDelay backs off linearly with the attempt number.
func (d *Dispatcher) retryDelay(job *model.NotificationJob) time.Duration {
	return baseRetryDelay * time.Duration(job.RetryCount+1)
}
