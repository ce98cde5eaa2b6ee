package handlers

import (
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/agentmatrix-dev/agentmatrix/internal/state"
	"github.com/agentmatrix-dev/agentmatrix/internal/validation"
	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Response is a generic response wrapper
type Response[T any] struct {
	Body T
}

// EmptyResponse represents an empty response
type EmptyResponse struct {
	Message string `json:"message,omitempty"`
}

// ItemResponse is a single item and the collection it lives in.
type ItemResponse struct {
	Kind models.Kind  `json:"kind"`
	Item *models.Item `json:"item"`
}

// UserHeaders identifies the caller. There is no authentication: the role is
// whatever the client asserts.
type UserHeaders struct {
	User string `header:"X-User" doc:"Display name of the acting user"`
	Role string `header:"X-Role" doc:"admin, developer or viewer (default)"`
}

// Identity returns the user described by the headers.
func (h UserHeaders) Identity() state.User {
	name := strings.TrimSpace(h.User)
	if name == "" {
		name = "anonymous"
	}
	return state.User{Name: name, Role: state.ParseRole(h.Role)}
}

// toHTTPError maps domain errors onto huma errors.
func toHTTPError(msg string, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		details := make([]error, 0, len(verrs))
		for _, v := range verrs {
			details = append(details, &huma.ErrorDetail{Message: v})
		}
		return huma.Error422UnprocessableEntity(verrs.Error(), details...)
	case errors.Is(err, state.ErrNotFound):
		return huma.Error404NotFound("Item not found")
	case errors.Is(err, state.ErrForbidden):
		return huma.Error403Forbidden(strings.TrimPrefix(err.Error(), state.ErrForbidden.Error()+": "))
	case errors.Is(err, state.ErrInvalid):
		return huma.Error400BadRequest(strings.TrimPrefix(err.Error(), state.ErrInvalid.Error()+": "))
	}
	return huma.Error500InternalServerError(msg, err)
}

// splitList trims entries and splits comma separated ones, dropping blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
