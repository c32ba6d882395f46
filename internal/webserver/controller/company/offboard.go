package company

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sondeolabs/convoca/internal/model"
)

// Offboard purges every collection belonging to a tenant. Best effort: a
// failing collection is reported but never stops the others.
func (ctrl *Controller) Offboard(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	companyID := c.Params("uuid")
	if companyID != session.CompanyID {
		return fiber.ErrForbidden
	}

	results := fiber.Map{}
	failures := 0
	for name, collection := range ctrl.collections {
		if err := collection.DeleteByCompany(companyID); err != nil {
			results[name] = err.Error()
			failures++
			continue
		}
		results[name] = "purged"
	}

	status := fiber.StatusOK
	if failures > 0 {
		status = fiber.StatusMultiStatus
	}

	return c.Status(status).JSON(fiber.Map{"collections": results})
}
