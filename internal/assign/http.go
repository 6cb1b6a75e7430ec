// Copyright (c) 2026 Rolegate. All rights reserved.

package assign

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rolegate/rolegate/internal/discord"
	requestutil "github.com/rolegate/rolegate/internal/platform/request"
	"github.com/rolegate/rolegate/internal/platform/respond"
	"github.com/rolegate/rolegate/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the server-to-server webhook surface.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the webhook endpoint. Authentication
// and rate limiting are applied by the caller's route group.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/assign-role", handler.assignRole)
	return router
}

// # Request Payloads

type assignRoleRequest struct {
	DiscordHandle string `json:"discordHandle"`
}

/*
assignRole handles the single webhook operation.

POST /api/assign-role

Description: Validates the payload and handle grammar, then runs the
assignment engine. Engine outcomes map onto HTTP statuses through their
attached codes.

Request:
  - Header: X-API-Key (checked by middleware)
  - Body: assignRoleRequest (DiscordHandle)

Response:
  - 200: Assignment granted
  - 400: Missing field, wrong type, or unparseable handle
  - 404: USER_NOT_FOUND
  - 409: ROLE_ALREADY_ASSIGNED (data carries the member info)
  - 403: INSUFFICIENT_PERMISSIONS / ROLE_HIERARCHY_ERROR
  - 500: HANDLER_NOT_INITIALIZED / INTERNAL_ERROR
*/
func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	var input assignRoleRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("discordHandle", input.DiscordHandle).
		Custom("discordHandle", input.DiscordHandle != "" && !discord.IsValidHandle(input.DiscordHandle),
			"Invalid Discord handle format")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	assignment, err := handler.service.AssignRole(request.Context(), input.DiscordHandle)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Role assigned successfully", assignment)
}
