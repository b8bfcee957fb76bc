package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/svera/barrio/internal/webserver/model"
)

type errorResponse struct {
	status  int
	message string
}

var errorResponses = []struct {
	target error
	errorResponse
}{
	{model.ErrAuthentication, errorResponse{fiber.StatusUnauthorized, "Wrong email or password"}},
	{model.ErrUnauthorized, errorResponse{fiber.StatusForbidden, "You are not allowed to do this"}},
	{model.ErrInvitationNotFound, errorResponse{fiber.StatusNotFound, "This invitation does not exist"}},
	{model.ErrMembershipNotFound, errorResponse{fiber.StatusNotFound, "Membership not found"}},
	{model.ErrUnknownTenant, errorResponse{fiber.StatusNotFound, "This community does not exist or is not active"}},
	{model.ErrInvitationExpired, errorResponse{fiber.StatusGone, "This invitation has expired"}},
	{model.ErrInvitationUsed, errorResponse{fiber.StatusGone, "This invitation has already been used"}},
	{model.ErrDuplicateMembership, errorResponse{fiber.StatusConflict, "This person is already a member of this community"}},
	{model.ErrPendingInvitation, errorResponse{fiber.StatusConflict, "There is already a pending invitation for this email"}},
	{model.ErrEmailTaken, errorResponse{fiber.StatusConflict, "An account with this email already exists"}},
	{model.ErrSlugTaken, errorResponse{fiber.StatusConflict, "A community with this name already exists"}},
	{model.ErrLastAdmin, errorResponse{fiber.StatusConflict, "A community cannot be left without administrators"}},
	{model.ErrInvalidEmail, errorResponse{fiber.StatusUnprocessableEntity, "Incorrect email address"}},
	{model.ErrInvalidRole, errorResponse{fiber.StatusUnprocessableEntity, "Incorrect role"}},
	{model.ErrEmptyRoleSet, errorResponse{fiber.StatusUnprocessableEntity, "At least one role is required"}},
	{model.ErrCodeSpaceExhausted, errorResponse{fiber.StatusServiceUnavailable, "Could not generate an invitation code, please try again"}},
}

// ErrorResponse returns the HTTP status and the untranslated user facing message for err.
// ok is false for errors unknown to the domain, datastore failures included.
func ErrorResponse(err error) (status int, message string, ok bool) {
	for _, response := range errorResponses {
		if errors.Is(err, response.target) {
			return response.status, response.message, true
		}
	}
	return fiber.StatusInternalServerError, "Something went wrong, please try again later", false
}
