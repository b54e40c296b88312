// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/pkg/uuidv7"
)

// # Service Layer

// Service runs controller operations against persisted sessions.
//
// Every call restores a [Controller] from the stored [Session], applies one
// operation, and persists the result. The controller's sinks are bound to the
// call: previews are buffered and published after the save succeeds, a commit
// result is upserted as the user's saved avatar, and a host close request
// closes the session.
type Service struct {
	sessionStore     SessionStore
	avatarRepository AvatarRepository
	preview          PreviewPublisher
	catalog          *Catalog
	sessionTTL       time.Duration
	now              func() time.Time
	logger           *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	sessionStore SessionStore,
	avatarRepo AvatarRepository,
	preview PreviewPublisher,
	catalog *Catalog,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessionStore:     sessionStore,
		avatarRepository: avatarRepo,
		preview:          preview,
		catalog:          catalog,
		sessionTTL:       sessionTTL,
		now:              time.Now,
		logger:           logger,
	}
}

// SessionView is what clients see after every operation.
type SessionView struct {
	*Session

	Title           string           `json:"title"`
	Actions         []Operation      `json:"actions"`
	Acknowledgments []Acknowledgment `json:"acknowledgments"`
	// Saved is set only by commit.
	Saved *Configuration `json:"saved,omitempty"`
}

func newView(session *Session, acknowledgments []Acknowledgment) *SessionView {
	var actions []Operation
	if session.State == StateOpen {
		actions = session.Mode.Operations()
	}
	if acknowledgments == nil {
		acknowledgments = []Acknowledgment{}
	}
	return &SessionView{
		Session:         session,
		Title:           session.Mode.Title(),
		Actions:         actions,
		Acknowledgments: acknowledgments,
	}
}

// # Catalog & Saved Avatar

// Catalog returns the option catalog for the selection surface.
func (service *Service) Catalog() []CatalogField {
	return service.catalog.Fields()
}

/*
GetSaved retrieves the finalized avatar of a user.

Returns:
  - *SavedAvatar: The saved avatar
  - error: apperr.NotFound if the user never committed one
*/
func (service *Service) GetSaved(context context.Context, ownerID string) (*SavedAvatar, error) {
	saved, err := service.avatarRepository.FindByOwnerID(context, ownerID)
	if err != nil {
		return nil, fmt.Errorf("avatar_service_get_saved_failed: %w", err)
	}
	return saved, nil
}

// # Session Lifecycle

/*
OpenSession starts a customization session for a user.

Description: When initial is nil the user's saved avatar seeds the draft, and
the default configuration is used if nothing was saved yet. An incomplete
initial configuration is rejected before any session exists.

Parameters:
  - context: context.Context
  - ownerID: string
  - mode: Mode
  - initial: *Configuration (optional)

Returns:
  - *SessionView: The open session
  - error: Validation or storage failures
*/
func (service *Service) OpenSession(context context.Context, ownerID string, mode Mode, initial *Configuration) (*SessionView, error) {
	if initial == nil {
		saved, err := service.avatarRepository.FindByOwnerID(context, ownerID)
		switch {
		case err == nil:
			initial = &saved.Configuration
		case !apperr.IsNotFound(err):
			return nil, fmt.Errorf("avatar_service_open_lookup_failed: %w", err)
		}
	}

	controller := NewController(Sinks{})
	if err := controller.Initialize(initial, mode); err != nil {
		return nil, err
	}

	now := service.now()
	session := &Session{
		ID:        uuidv7.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(service.sessionTTL),
	}
	session.apply(controller.Snapshot())

	if err := service.sessionStore.Create(context, session); err != nil {
		return nil, fmt.Errorf("avatar_service_open_failed: %w", err)
	}

	sessionsOpenedTotal.WithLabelValues(string(mode)).Inc()
	service.logger.Info("avatar_session_opened",
		slog.String("session_id", session.ID),
		slog.String("owner_id", ownerID),
		slog.String("mode", string(mode)),
	)

	return newView(session, nil), nil
}

/*
GetSession retrieves an open session owned by ownerID.

Returns:
  - *SessionView: The session
  - error: apperr.NotFound if missing, expired, or owned by someone else
*/
func (service *Service) GetSession(context context.Context, ownerID, sessionID string) (*SessionView, error) {
	session, err := service.loadOwned(context, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	return newView(session, nil), nil
}

// UpdateField replaces one draft field.
func (service *Service) UpdateField(context context.Context, ownerID, sessionID string, field Field, value string) (*SessionView, error) {
	view, err := service.run(context, ownerID, sessionID, func(controller *Controller) error {
		_, err := controller.UpdateField(field, value)
		return err
	})
	if err != nil {
		return nil, err
	}

	fieldUpdatesTotal.WithLabelValues(string(field)).Inc()
	return view, nil
}

// Reset replaces the draft with the default configuration.
func (service *Service) Reset(context context.Context, ownerID, sessionID string) (*SessionView, error) {
	view, err := service.run(context, ownerID, sessionID, func(controller *Controller) error {
		_, err := controller.Reset()
		return err
	})
	if err != nil {
		return nil, err
	}

	resetsTotal.Inc()
	service.logger.Info("avatar_session_reset", slog.String("session_id", sessionID))
	return view, nil
}

// Cancel discards the draft and ends the session.
func (service *Service) Cancel(context context.Context, ownerID, sessionID string) (*SessionView, error) {
	view, err := service.run(context, ownerID, sessionID, func(controller *Controller) error {
		return controller.Cancel()
	})
	if err != nil {
		return nil, err
	}

	sessionsClosedTotal.WithLabelValues(string(OpCancel)).Inc()
	service.logger.Info("avatar_session_cancelled", slog.String("session_id", sessionID))
	return view, nil
}

// Commit saves the draft as the user's avatar and ends the session.
func (service *Service) Commit(context context.Context, ownerID, sessionID string) (*SessionView, error) {
	view, err := service.run(context, ownerID, sessionID, func(controller *Controller) error {
		_, err := controller.Commit()
		return err
	})
	if err != nil {
		return nil, err
	}

	sessionsClosedTotal.WithLabelValues(string(OpCommit)).Inc()
	service.logger.Info("avatar_committed",
		slog.String("session_id", sessionID),
		slog.String("owner_id", ownerID),
	)
	return view, nil
}

// # Internals

func (service *Service) loadOwned(context context.Context, ownerID, sessionID string) (*Session, error) {
	session, err := service.sessionStore.Find(context, sessionID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("avatar_service_load_failed: %w", err)
	}

	// Foreign sessions are indistinguishable from missing ones.
	if session.OwnerID != ownerID {
		return nil, apperr.NotFound("Avatar session")
	}
	return session, nil
}

// run restores the controller, applies operation, and persists the outcome.
func (service *Service) run(context context.Context, ownerID, sessionID string, operation func(*Controller) error) (*SessionView, error) {
	session, err := service.loadOwned(context, ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		previews        []Configuration
		acknowledgments []Acknowledgment
		result          *Configuration
		closeRequested  bool
	)
	controller, err := RestoreController(session.snapshot(), Sinks{
		Preview:     PreviewFunc(func(cfg Configuration) { previews = append(previews, cfg) }),
		Result:      ResultFunc(func(cfg Configuration) { result = &cfg }),
		Acknowledge: AcknowledgeFunc(func(ack Acknowledgment) { acknowledgments = append(acknowledgments, ack) }),
		Host:        CloseFunc(func() { closeRequested = true }),
	})
	if err != nil {
		return nil, err
	}

	if err := operation(controller); err != nil {
		return nil, err
	}

	// Restored if the saved avatar cannot be written after the session closed.
	loaded := *session

	now := service.now()
	session.apply(controller.Snapshot())
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(service.sessionTTL)

	if !closeRequested {
		if err := service.sessionStore.Save(context, session); err != nil {
			if apperr.IsAppError(err) {
				return nil, err
			}
			return nil, fmt.Errorf("avatar_service_save_failed: %w", err)
		}
		for _, cfg := range previews {
			service.preview.Publish(sessionID, cfg)
		}
		return newView(session, acknowledgments), nil
	}

	// Only the caller that closes the loaded revision may write the result.
	if err := service.sessionStore.Close(context, &loaded); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("avatar_service_close_failed: %w", err)
	}

	if result != nil {
		saved := &SavedAvatar{OwnerID: ownerID, Configuration: *result, CreatedAt: now, UpdatedAt: now}
		if err := service.avatarRepository.Upsert(context, saved); err != nil {
			service.reopen(context, &loaded)
			return nil, fmt.Errorf("avatar_service_commit_failed: %w", err)
		}
	}
	service.preview.CloseSession(sessionID)

	view := newView(session, acknowledgments)
	view.Saved = result
	return view, nil
}

// reopen puts a closed session back so a failed commit can be retried. If
// that fails too the user has to open a new session.
func (service *Service) reopen(context context.Context, session *Session) {
	if err := service.sessionStore.Create(context, session); err != nil {
		service.logger.Warn("avatar_session_reopen_failed",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
	}
}
