package handlers

import (
	"conference-app/errors"
	"conference-app/model"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func (h *Handlers) Login(c *fiber.Ctx) error {
	creds := new(model.Credentials)
	if err := c.BodyParser(creds); err != nil {
		return errors.RaiseBadRequestError(c, "Error on login request when parse credentials")
	}

	user, err := h.service.Authenticate(c.UserContext(), *creds)
	if err != nil {
		return h.fail(c, err)
	}

	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = user.Login
	claims["email"] = user.Email
	claims["role"] = user.Role
	claims["exp"] = time.Now().Add(h.tokenTTL).Unix()

	t, err := token.SignedString([]byte(h.signingKey))
	if err != nil {
		return h.fail(c, err)
	}

	h.log.WithField("user", user.Login).Info("user logged in")
	return c.JSON(fiber.Map{"status": "success", "message": "Success login", "data": t})
}
