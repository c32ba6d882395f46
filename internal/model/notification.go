package model

import (
	"time"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in-app"
	ChannelPush  Channel = "push"
	ChannelSms   Channel = "sms"
)

// Priorities are ints so the queue can order on them directly.
const (
	PriorityLow = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobSent      JobStatus = "sent"
	JobDelivered JobStatus = "delivered"
	JobOpened    JobStatus = "opened"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

const DefaultMaxRetries = 3

// NotificationJob is one future-dated delivery owned by the dispatch queue.
// The payload is opaque to the queue, only the composer interprets it.
// LeasedUntil is the claim that keeps concurrent pollers from double-sending.
type NotificationJob struct {
	ID            uint `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UUID          string    `gorm:"uniqueIndex; not null"`
	CompanyID     string    `gorm:"index; not null"`
	TargetType    string    `gorm:"index:idx_jobs_target; not null"`
	TargetID      string    `gorm:"index:idx_jobs_target; not null"`
	Channel       Channel   `gorm:"not null; default:email"`
	Priority      int       `gorm:"not null; default:2"`
	Status        JobStatus `gorm:"index; not null; default:pending"`
	ScheduledFor  time.Time `gorm:"index"`
	LeasedUntil   *time.Time
	RetryCount    int
	MaxRetries    int `gorm:"not null; default:3"`
	FailureReason string
	PayloadKind   string `gorm:"not null"`
	Payload       string `gorm:"type:text"`
}

const TargetInvitation = "invitation"
