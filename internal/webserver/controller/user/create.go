package user

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sondeolabs/convoca/internal/model"
)

type createRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       int    `json:"role"`
	Department string `json:"department"`
	Locale     string `json:"locale"`
}

// Create adds a recipient-directory entry to the caller's company.
func (ctrl *Controller) Create(c *fiber.Ctx) error {
	session := c.Locals("Session").(model.User)

	var request createRequest
	if err := c.BodyParser(&request); err != nil {
		return fiber.ErrBadRequest
	}

	if request.Role == 0 {
		request.Role = model.RoleEmployee
	}
	if request.Locale == "" {
		request.Locale = "en"
	}

	user := model.User{
		Uuid:       uuid.NewString(),
		CompanyID:  session.CompanyID,
		Name:       request.Name,
		Email:      request.Email,
		Password:   request.Password,
		Role:       request.Role,
		Department: request.Department,
		Locale:     request.Locale,
	}

	if errs := user.Validate(ctrl.config.MinPasswordLength); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	user.Password = model.Hash(user.Password)
	if err := ctrl.repository.Create(&user); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fiber.NewError(fiber.StatusConflict, "a user with this email already exists")
		}
		return fiber.ErrInternalServerError
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.Uuid,
		"email": user.Email,
	})
}
