package webserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/svera/barrio/internal/i18n"
	"github.com/svera/barrio/internal/webserver/controller"
)

// errorHandler answers with the status and translated message matching err. Unknown errors are
// logged and reported as a generic failure.
func errorHandler(translator *i18n.Translator) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		lang, ok := c.Locals("Lang").(string)
		if !ok {
			lang = translator.Match(c.Get(fiber.HeaderAcceptLanguage))
		}

		status, message, known := controller.ErrorResponse(err)
		if !known {
			log.WithError(err).WithField("path", c.Path()).Error("request failed")
		}
		return c.Status(status).JSON(fiber.Map{"error": translator.T(lang, message)})
	}
}
