package invitation

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sondeolabs/convoca/internal/model"
)

// List returns one page of the company's invitations.
func (ctrl *Controller) List(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))

	invitations, err := ctrl.invitations.List(session.CompanyID, page, model.ResultsPerPage)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(invitations)
}
