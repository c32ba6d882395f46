package job

import (
	"github.com/sondeolabs/convoca/internal/model"
)

type queueRepository interface {
	DeadLetters(companyID string) ([]model.NotificationJob, error)
}

type Controller struct {
	queue queueRepository
}

func NewController(queue queueRepository) *Controller {
	return &Controller{queue: queue}
}
