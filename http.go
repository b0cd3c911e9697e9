package marketplace

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	msgUnauthorized        = "Unauthorized"
	msgInvalidCredentials  = "Invalid credentials"
	msgEmailRegistered     = "This email is already registered"
	msgTemplateNotFound    = "Template not found"
	msgAlreadyPurchased    = "Template already purchased"
	msgNotFound            = "Not found"
	msgInvalidBody         = "Invalid request body"
	msgInternalServerError = "An error occurred. Please try again later."
)

// publicMessages holds the client facing text for sentinels whose category
// alone is too coarse
var publicMessages = map[string]string{
	TextCodeInvalidCredentials: msgInvalidCredentials,
	TextCodeEmailRegistered:    msgEmailRegistered,
	TextCodeTemplatePurchased:  msgAlreadyPurchased,
	TextCodeTemplateNotFound:   msgTemplateNotFound,
}

var categoryStatus = map[goerrors.Category]int{
	goerrors.CategoryValidation:       fiber.StatusBadRequest,
	goerrors.CategoryBadInput:         fiber.StatusBadRequest,
	goerrors.CategoryAuth:             fiber.StatusUnauthorized,
	goerrors.CategoryAuthz:            fiber.StatusUnauthorized,
	goerrors.CategoryNotFound:         fiber.StatusNotFound,
	goerrors.CategoryConflict:         fiber.StatusConflict,
	goerrors.CategoryRateLimit:        fiber.StatusTooManyRequests,
	goerrors.CategoryMethodNotAllowed: fiber.StatusMethodNotAllowed,
}

var errorMappers = []goerrors.ErrorMapper{
	mapValidationError,
	mapFiberError,
}

func mapValidationError(err error) *goerrors.Error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.AsCategorized()
	}
	return nil
}

func mapFiberError(err error) *goerrors.Error {
	var ferr *fiber.Error
	if !errors.As(err, &ferr) {
		return nil
	}
	return goerrors.New(ferr.Message, goerrors.HTTPStatusToCategory(ferr.Code)).
		WithCode(ferr.Code).
		WithTextCode(goerrors.HTTPStatusToTextCode(ferr.Code))
}

// Categorize converts any error into a go-errors value. Field errors and
// fiber errors are mapped, anything unknown becomes an internal error.
func Categorize(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if mapped := mapValidationError(err); mapped != nil {
		return mapped
	}
	return goerrors.MapToError(err, errorMappers)
}

// StatusOf maps an error to the status code and message sent to the client.
// The status follows the error category. Anything unknown becomes an opaque 500.
func StatusOf(err error) (int, string) {
	if err == nil {
		return fiber.StatusOK, ""
	}

	gerr := Categorize(err)

	status := gerr.Code
	if status == 0 {
		var ok bool
		if status, ok = categoryStatus[gerr.Category]; !ok {
			status = fiber.StatusInternalServerError
		}
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		return status, msgInternalServerError
	case publicMessages[gerr.TextCode] != "":
		return status, publicMessages[gerr.TextCode]
	case gerr.Category == goerrors.CategoryNotFound:
		return status, msgNotFound
	case gerr.Category == goerrors.CategoryAuth, gerr.Category == goerrors.CategoryAuthz:
		return status, msgUnauthorized
	default:
		return status, gerr.Message
	}
}

// NewErrorHandler renders every handler error as {"message": ...}. Server
// errors are logged with their cause, clients only see the generic message.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		status, message := StatusOf(err)

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		}

		body := fiber.Map{"message": message}
		if status == fiber.StatusNotFound && message == msgNotFound {
			body["path"] = c.Path()
		}

		return c.Status(status).JSON(body)
	}
}

// decodeBody reads a JSON body into out regardless of the content type. An
// empty body leaves out untouched.
func decodeBody(c router.RequestContext, out any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ValidationError{Field: "body", Message: msgInvalidBody}
	}
	return nil
}

// responseHeaders adapts a route response writer to HeaderSetter
type responseHeaders struct {
	w router.ResponseWriter
}

func (h responseHeaders) Set(key, value string) {
	h.w.SetHeader(key, value)
}
