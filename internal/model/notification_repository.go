package model

import (
	"log"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func (r *NotificationRepository) Enqueue(job *NotificationJob) error {
	if job.MaxRetries == 0 {
		job.MaxRetries = DefaultMaxRetries
	}
	if res := r.DB.Create(job); res.Error != nil {
		log.Printf("error enqueueing notification job: %s\n", res.Error)
		return res.Error
	}
	return nil
}

// Claim returns up to limit due jobs, ordered by priority then schedule time,
// each atomically leased for the given duration. The conditional update only
// matches rows whose lease is free or expired, so two pollers calling Claim
// concurrently never share a job: whoever loses the update race skips the row.
func (r *NotificationRepository) Claim(limit int, lease time.Duration, now time.Time) ([]NotificationJob, error) {
	var candidates []NotificationJob

	res := r.DB.
		Where("status = ? AND scheduled_for <= ? AND retry_count < max_retries", JobPending, now).
		Where("leased_until IS NULL OR leased_until < ?", now).
		Order("priority DESC, scheduled_for ASC").
		Limit(limit).
		Find(&candidates)
	if res.Error != nil {
		log.Printf("error polling notification jobs: %s\n", res.Error)
		return nil, res.Error
	}

	leasedUntil := now.Add(lease)
	claimed := make([]NotificationJob, 0, len(candidates))
	for _, job := range candidates {
		update := r.DB.Model(&NotificationJob{}).
			Where("id = ? AND status = ?", job.ID, JobPending).
			Where("leased_until IS NULL OR leased_until < ?", now).
			Update("leased_until", leasedUntil)
		if update.Error != nil {
			log.Printf("error leasing job %s: %s\n", job.UUID, update.Error)
			continue
		}
		if update.RowsAffected == 1 {
			job.LeasedUntil = &leasedUntil
			claimed = append(claimed, job)
		}
	}

	return claimed, nil
}

func (r *NotificationRepository) MarkSent(job *NotificationJob) error {
	job.Status = JobSent
	job.LeasedUntil = nil

	res := r.DB.Model(job).Updates(map[string]interface{}{
		"status":       JobSent,
		"leased_until": gorm.Expr("NULL"),
	})
	if res.Error != nil {
		log.Printf("error marking job %s sent: %s\n", job.UUID, res.Error)
	}
	return res.Error
}

// MarkFailed counts the attempt and either reschedules the job after the
// given delay or, once retries are exhausted, parks it as a dead letter.
func (r *NotificationRepository) MarkFailed(job *NotificationJob, reason string, retryDelay time.Duration, now time.Time) error {
	job.RetryCount++
	job.FailureReason = reason
	job.LeasedUntil = nil

	updates := map[string]interface{}{
		"retry_count":    job.RetryCount,
		"failure_reason": reason,
		"leased_until":   gorm.Expr("NULL"),
	}

	if job.RetryCount >= job.MaxRetries {
		job.Status = JobFailed
		updates["status"] = JobFailed
	} else {
		job.Status = JobPending
		job.ScheduledFor = now.Add(retryDelay)
		updates["status"] = JobPending
		updates["scheduled_for"] = job.ScheduledFor
	}

	res := r.DB.Model(job).Updates(updates)
	if res.Error != nil {
		log.Printf("error marking job %s failed: %s\n", job.UUID, res.Error)
	}
	return res.Error
}

// Cancel marks a single pending job cancelled.
func (r *NotificationRepository) Cancel(job *NotificationJob) error {
	job.Status = JobCancelled
	res := r.DB.Model(job).Updates(map[string]interface{}{
		"status":       JobCancelled,
		"leased_until": gorm.Expr("NULL"),
	})
	if res.Error != nil {
		log.Printf("error cancelling job %s: %s\n", job.UUID, res.Error)
	}
	return res.Error
}

// CancelByTarget cancels every not-yet-dispatched job for a target, used when
// an invitation is cancelled so queued reminders never fire.
func (r *NotificationRepository) CancelByTarget(targetType, targetID string) error {
	res := r.DB.Model(&NotificationJob{}).
		Where("target_type = ? AND target_id = ? AND status = ?", targetType, targetID, JobPending).
		Update("status", JobCancelled)
	if res.Error != nil {
		log.Printf("error cancelling jobs for %s %s: %s\n", targetType, targetID, res.Error)
	}
	return res.Error
}

// DeadLetters lists the jobs of a company that exhausted their retry budget.
func (r *NotificationRepository) DeadLetters(companyID string) ([]NotificationJob, error) {
	var jobs []NotificationJob

	res := r.DB.
		Where("company_id = ? AND status = ?", companyID, JobFailed).
		Order("updated_at DESC").
		Find(&jobs)
	if res.Error != nil {
		log.Printf("error listing dead letters: %s\n", res.Error)
		return nil, res.Error
	}
	return jobs, nil
}

func (r *NotificationRepository) DeleteByCompany(companyID string) error {
	res := r.DB.Where("company_id = ?", companyID).Delete(&NotificationJob{})
	if res.Error != nil {
		log.Printf("error purging notification jobs for company %s: %s\n", companyID, res.Error)
	}
	return res.Error
}
