// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	"github.com/taibuivan/avatarstudio/internal/platform/middleware"
	requestutil "github.com/taibuivan/avatarstudio/internal/platform/request"
	"github.com/taibuivan/avatarstudio/internal/platform/respond"
	"github.com/taibuivan/avatarstudio/internal/platform/validate"
	"github.com/taibuivan/avatarstudio/pkg/uuidv7"
)

// maxTokenLength caps option tokens accepted from clients.
const maxTokenLength = 64

// # Handler Implementation

// Handler implements the HTTP layer for avatar customization.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
	hub     *PreviewHub
}

// NewHandler constructs a new avatar [Handler].
func NewHandler(service *Service, hub *PreviewHub) *Handler {
	return &Handler{service: service, hub: hub}
}

// Routes returns a [chi.Router] configured with the avatar domain's endpoints.
//
// # Routing Strategy
//
//   - Catalog (Public): The option lists rendered by the selection surface.
//   - Sessions (Authenticated): Every session belongs to the caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Endpoints
	router.Get("/catalog", handler.getCatalog)

	// ## Authenticated Endpoints
	router.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)

		user.Get("/me", handler.getSaved)

		user.Post("/sessions", handler.openSession)

		user.Route("/sessions/{id}", func(session chi.Router) {
			session.Use(sessionScope)

			session.Get("/", handler.getSession)
			session.Patch("/fields", handler.updateField)
			session.Post("/reset", handler.resetSession)
			session.Post("/cancel", handler.cancelSession)
			session.Post("/commit", handler.commitSession)

			// Live preview stream
			session.Get("/preview", handler.streamPreview)
		})
	})

	return router
}

/*
sessionScope rejects malformed session IDs before they reach storage and tags
the request context and logger with the session ID.

Response:
  - 404: ErrNotFound: The ID is not a UUIDv7
*/
func sessionScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		sessionID := requestutil.Param(request, "id")
		if !uuidv7.Valid(sessionID) {
			respond.Error(writer, request, apperr.NotFound("Avatar session"))
			return
		}
		next.ServeHTTP(writer, request.WithContext(ctxutil.WithSessionID(request.Context(), sessionID)))
	})
}

// # Catalog & Saved Avatar

/*
GET /api/v1/avatar/catalog.

Response:
  - 200: []CatalogField: Options per field in presentation order
*/
func (handler *Handler) getCatalog(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.Catalog())
}

/*
GET /api/v1/avatar/me.

Response:
  - 200: SavedAvatar: The caller's finalized avatar
  - 404: ErrNotFound: Nothing committed yet
*/
func (handler *Handler) getSaved(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	saved, err := handler.service.GetSaved(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, saved)
}

// # Session Endpoints

// openSessionRequest represents the JSON payload for opening a session.
type openSessionRequest struct {
	Mode    string         `json:"mode"`
	Initial *Configuration `json:"initial"`
}

/*
POST /api/v1/avatar/sessions.

Description: Opens a customization session. Without an initial configuration
the caller's saved avatar (or the default one) seeds the draft.

Request (Body, optional):
  - mode: string (new-user, settings; defaults to new-user)
  - initial: Configuration (optional, all five fields required when present)

Response:
  - 201: SessionView: The open session
  - 400: ErrValidation: Unknown mode or incomplete configuration
*/
func (handler *Handler) openSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input openSessionRequest
	if err := requestutil.DecodeOptionalJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	mode, err := ParseMode(input.Mode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Initial != nil {
		validator := &validate.Validator{}
		for _, field := range Fields() {
			validator.Token(string(field), input.Initial.Get(field), maxTokenLength)
		}
		if err := validator.ErrWithMessage("Avatar configuration is incomplete"); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	view, err := handler.service.OpenSession(request.Context(), userID, mode, input.Initial)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, view)
}

/*
GET /api/v1/avatar/sessions/{id}.

Response:
  - 200: SessionView: The open session
  - 404: ErrNotFound: Missing, expired, or owned by someone else
*/
func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.GetSession(request.Context(), userID, ctxutil.GetSessionID(request.Context()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// updateFieldRequest represents the JSON payload for one draft edit.
type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

/*
PATCH /api/v1/avatar/sessions/{id}/fields.

Request (Body):
  - field: string (hairstyle, hairColor, skinTone, clothing, clothingColor)
  - value: string (non-empty option token)

Response:
  - 200: SessionView: The session with the updated draft
  - 400: ErrValidation: Unknown field or empty value
  - 409: ErrConflict: Session closed or edited concurrently
*/
func (handler *Handler) updateField(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateFieldRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("field", input.Field).Token("value", input.Value, maxTokenLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	field, err := ParseField(input.Field)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.UpdateField(request.Context(), userID, ctxutil.GetSessionID(request.Context()), field, input.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

/*
POST /api/v1/avatar/sessions/{id}/reset.

Response:
  - 200: SessionView: Draft replaced by the default configuration, with an info acknowledgment
*/
func (handler *Handler) resetSession(writer http.ResponseWriter, request *http.Request) {
	handler.runOperation(writer, request, handler.service.Reset)
}

/*
POST /api/v1/avatar/sessions/{id}/cancel.

Response:
  - 200: SessionView: The closed session
  - 403: ErrForbidden: Cancel is not offered in new-user mode
*/
func (handler *Handler) cancelSession(writer http.ResponseWriter, request *http.Request) {
	handler.runOperation(writer, request, handler.service.Cancel)
}

/*
POST /api/v1/avatar/sessions/{id}/commit.

Response:
  - 200: SessionView: The closed session with the saved configuration and a success acknowledgment
*/
func (handler *Handler) commitSession(writer http.ResponseWriter, request *http.Request) {
	handler.runOperation(writer, request, handler.service.Commit)
}

/*
GET /api/v1/avatar/sessions/{id}/preview.

Description: Upgrades to a websocket that receives the current draft
immediately and every later draft as JSON. The socket is closed when the
session ends.
*/
func (handler *Handler) streamPreview(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Subscribe before loading so no draft published in between is missed, and
	// a session closed in between still closes this subscription.
	sessionID := ctxutil.GetSessionID(request.Context())
	subscription := handler.hub.Subscribe(sessionID)

	view, err := handler.service.GetSession(request.Context(), userID, sessionID)
	if err != nil {
		subscription.Close()
		respond.Error(writer, request, err)
		return
	}

	handler.hub.ServeWS(writer, request, subscription, view.Draft)
}

// runOperation handles the body-less session operations.
func (handler *Handler) runOperation(
	writer http.ResponseWriter,
	request *http.Request,
	operation func(context.Context, string, string) (*SessionView, error),
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := operation(request.Context(), userID, ctxutil.GetSessionID(request.Context()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}
