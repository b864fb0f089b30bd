package handlers

import (
	"conference-app/errors"
	"conference-app/service"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	service    *service.Service
	signingKey string
	tokenTTL   time.Duration
	log        *logrus.Logger
}

func New(svc *service.Service, signingKey string, tokenTTL time.Duration, log *logrus.Logger) *Handlers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handlers{
		service:    svc,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// fail writes err as an error envelope. Internal errors are logged here
// because their details never reach the client.
func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	if errors.KindOf(err) == errors.KindInternal {
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
	}
	return errors.Raise(c, err)
}

// parseBody decodes a JSON body into form; an empty body leaves form untouched.
func parseBody(c *fiber.Ctx, entity string, form interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(form); err != nil {
		return errors.BadRequest("unacceptable %v parameters: %v", entity, err)
	}
	return nil
}

func param(c *fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", errors.BadRequest("invalid %v in path: %v", name, err)
	}
	return value, nil
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	value, err := c.ParamsInt(name)
	if err != nil {
		return 0, errors.BadRequest("%v must be an integer, got %q", name, c.Params(name))
	}
	return value, nil
}

func (h *Handlers) respond(c *fiber.Ctx, body interface{}, err error) error {
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(body)
}
