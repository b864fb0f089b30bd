package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindBadRequest
	KindNotFound
	KindForbidden
	KindConflict
)

// Error is a user-visible failure. Detail is sent to the client as is.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

func BadRequest(format string, args ...interface{}) *Error {
	return newError(KindBadRequest, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// KindOf reports the kind of err, KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Status(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindBadRequest:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// Raise writes err as a JSON error envelope. Internal errors are not exposed.
func Raise(context *fiber.Ctx, err error) error {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		return RaiseInternalServerError(context, "server side problem occured while processing the request")
	}

	switch appErr.Kind {
	case KindUnauthorized:
		return RaiseError(context, fiber.StatusUnauthorized, "authorization required", appErr.Detail)
	case KindBadRequest:
		return RaiseBadRequestError(context, appErr.Detail)
	case KindNotFound:
		return RaiseNotFoundError(context, appErr.Detail)
	case KindForbidden:
		return RaisePermissionsError(context, appErr.Detail)
	case KindConflict:
		return RaiseError(context, fiber.StatusConflict, "conflict", appErr.Detail)
	}
	return RaiseInternalServerError(context, appErr.Detail)
}

func RaiseError(context *fiber.Ctx, status int, message string, data string) error {
	return context.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    data})
}

func RaisePermissionsError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusForbidden, "lack of permissions", data)
}

func RaiseInternalServerError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusInternalServerError, "internal error", data)
}

func RaiseBadRequestError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusBadRequest, "bad request", data)
}

func RaiseNotFoundError(context *fiber.Ctx, data string) error {
	return RaiseError(context, fiber.StatusNotFound, "resource not found", data)
}
