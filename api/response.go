package api

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	auth "github.com/goliatone/go-petcare-auth"
)

// Response is the envelope of every JSON answer
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody exposes the stable error kind to clients
type ErrorBody struct {
	Kind     string         `json:"kind"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func ok(data any, message string) Response {
	return Response{Success: true, Message: message, Data: data}
}

// StatusFor maps err to an HTTP status using the code carried by the
// rich error, falling back on its category.
func StatusFor(err error) int {
	if err == nil {
		return router.StatusOK
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return router.StatusInternalServerError
	}

	if richErr.Code != 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryAuth:
		return router.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return router.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryBadInput, goerrors.CategoryValidation, goerrors.CategoryConflict:
		return router.StatusBadRequest
	default:
		return router.StatusInternalServerError
	}
}

// ErrorResponse builds the envelope for err
func ErrorResponse(err error) Response {
	body := &ErrorBody{
		Kind:    auth.ErrorKind(err),
		Message: "An unexpected server error occurred",
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && body.Kind != auth.TextCodeInternal {
		body.Message = richErr.Message
		body.Metadata = richErr.Metadata
	}

	return Response{Success: false, Message: body.Message, Error: body}
}

// WriteError logs err and answers with its status and envelope
func WriteError(ctx router.Context, logger auth.Logger, err error) error {
	status := StatusFor(err)
	if status >= router.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		return ctx.JSON(status, ErrorResponse(err))
	}

	var details any
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		details = richErr.Metadata
	}
	logger.Debug("request rejected",
		"kind", auth.ErrorKind(err),
		"status", status,
		"details", print.MaybePrettyJSON(details),
	)
	return ctx.JSON(status, ErrorResponse(err))
}
