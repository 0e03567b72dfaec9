package handler

import (
	"errors"

	"github.com/ead/authuser/internal/database"
	"github.com/ead/authuser/internal/model"
	"github.com/ead/authuser/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Services may already return a fully formed problem (validation)
	var pd *model.ProblemDetails
	if errors.As(err, &pd) {
		return pd
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("User")
	case errors.Is(err, service.ErrUserListNotFound):
		return model.NewNotFoundError("List users")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrUserAlreadyExists):
		return model.NewConflictError(service.ErrUserAlreadyExists.Error())

	// ===== Bad Request Errors → 400 =====
	case errors.Is(err, service.ErrInvalidSortField),
		errors.Is(err, service.ErrInvalidSortDirection),
		errors.Is(err, service.ErrInvalidFilter):
		return model.NewBadRequestError(err.Error())

	// ===== Availability Errors → 503 =====
	case errors.Is(err, database.ErrConnection):
		return model.NewServiceUnavailableError("User store is unavailable")
	}

	// ===== Default → 500 =====
	return model.NewInternalError("")
}
