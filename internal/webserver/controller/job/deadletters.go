package job

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sondeolabs/convoca/internal/model"
)

type deadLetter struct {
	UUID          string `json:"id"`
	TargetType    string `json:"target_type"`
	TargetID      string `json:"target_id"`
	PayloadKind   string `json:"kind"`
	RetryCount    int    `json:"retry_count"`
	FailureReason string `json:"failure_reason"`
}

// DeadLetters lists the jobs that exhausted their retry budget and now need
// an operator.
func (ctrl *Controller) DeadLetters(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	jobs, err := ctrl.queue.DeadLetters(session.CompanyID)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	letters := make([]deadLetter, 0, len(jobs))
	for _, job := range jobs {
		letters = append(letters, deadLetter{
			UUID:          job.UUID,
			TargetType:    job.TargetType,
			TargetID:      job.TargetID,
			PayloadKind:   job.PayloadKind,
			RetryCount:    job.RetryCount,
			FailureReason: job.FailureReason,
		})
	}

	return c.JSON(fiber.Map{"dead_letters": letters})
}
