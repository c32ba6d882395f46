package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sondeolabs/convoca/internal/model"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn checks credentials and answers with a bearer token for the admin API.
func (a *Controller) SignIn(c *fiber.Ctx) error {
	var request signInRequest
	if err := c.BodyParser(&request); err != nil {
		return fiber.ErrBadRequest
	}

	user, err := a.repository.FindByEmail(request.Email)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	if user == nil || user.Password != model.Hash(request.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
	}

	expiration := time.Now().Add(a.config.SessionTimeout)
	signedToken, err := GenerateToken(user, expiration, a.config.Secret)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"token":      signedToken,
		"expires_at": expiration.UTC(),
	})
}

func GenerateToken(user *model.User, expiration time.Time, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userdata": map[string]interface{}{
			"ID":        user.ID,
			"Uuid":      user.Uuid,
			"CompanyID": user.CompanyID,
			"Name":      user.Name,
			"Email":     user.Email,
			"Role":      user.Role,
		},
		"exp": jwt.NewNumericDate(expiration),
	})

	return token.SignedString(secret)
}
