package company

type purger interface {
	DeleteByCompany(companyID string) error
}

// Controller handles tenant-level maintenance, currently only the
// offboarding purge.
type Controller struct {
	collections map[string]purger
}

// NewController receives the purgeable collections keyed by the name they
// are reported under.
func NewController(collections map[string]purger) *Controller {
	return &Controller{collections: collections}
}

// Collections builds the purger set from the concrete repositories.
func Collections(invitations, notifications, campaigns, users purger) map[string]purger {
	return map[string]purger{
		"invitations":   invitations,
		"notifications": notifications,
		"campaigns":     campaigns,
		"users":         users,
	}
}
