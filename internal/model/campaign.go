package model

import "time"

type CampaignKind string

const (
	KindSurvey       CampaignKind = "survey"
	KindMicroclimate CampaignKind = "microclimate"
	KindOnboarding   CampaignKind = "onboarding"
)

const (
	surveyExpiry     = 14 * 24 * time.Hour
	onboardingExpiry = 7 * 24 * time.Hour
)

// Campaign is a survey, microclimate or onboarding drive that invitations
// belong to. The window bounds default invitation expiry.
type Campaign struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UUID      string       `gorm:"uniqueIndex; not null"`
	CompanyID string       `gorm:"index; not null"`
	Name      string       `gorm:"not null"`
	Kind      CampaignKind `gorm:"not null; default:survey"`
	StartsAt  time.Time
	EndsAt    *time.Time
}

// DefaultExpiry derives the invitation deadline from the campaign type:
// surveys get a fixed two weeks, microclimates close with their window.
func (c *Campaign) DefaultExpiry(now time.Time) time.Time {
	switch c.Kind {
	case KindMicroclimate:
		if c.EndsAt != nil && c.EndsAt.After(now) {
			return *c.EndsAt
		}
		return now.Add(onboardingExpiry)
	case KindOnboarding:
		return now.Add(onboardingExpiry)
	default:
		return now.Add(surveyExpiry)
	}
}
