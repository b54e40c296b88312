// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
)

// # Controller

// Controller owns the draft configuration of one customization session.
//
// # Lifecycle
//
//	Closed --Initialize--> Open
//	Open --UpdateField/Reset--> Open
//	Open --Cancel/Commit--> Closed
//
// A closed controller may be initialized again; the new session starts from
// its own seed and never sees edits from the previous one.
//
// # Concurrency
//
// Controller is not safe for concurrent use. Calls made from inside a sink
// while an operation is running are rejected with [ErrReentrantCall].
type Controller struct {
	state   State
	mode    Mode
	initial Configuration
	draft   Configuration
	sinks   Sinks
	busy    bool
}

// NewController returns a closed controller wired to sinks.
func NewController(sinks Sinks) *Controller {
	return &Controller{state: StateClosed, sinks: sinks.withDefaults()}
}

// Snapshot is the persistable state of a [Controller].
type Snapshot struct {
	State   State         `json:"state"`
	Mode    Mode          `json:"mode"`
	Initial Configuration `json:"initial"`
	Draft   Configuration `json:"draft"`
}

// RestoreController rebuilds a controller from a snapshot taken earlier.
func RestoreController(snapshot Snapshot, sinks Sinks) (*Controller, error) {
	controller := NewController(sinks)
	if snapshot.State == StateClosed {
		return controller, nil
	}

	if snapshot.State != StateOpen || !snapshot.Mode.Valid() {
		return nil, apperr.Internal(ErrUnknownMode)
	}
	if err := snapshot.Initial.Validate(); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := snapshot.Draft.Validate(); err != nil {
		return nil, apperr.Internal(err)
	}

	controller.state = StateOpen
	controller.mode = snapshot.Mode
	controller.initial = snapshot.Initial
	controller.draft = snapshot.Draft
	return controller, nil
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{State: c.state, Mode: c.mode, Initial: c.initial, Draft: c.draft}
}

// State reports whether a session is open.
func (c *Controller) State() State { return c.state }

// Mode is the mode the current (or last) session was opened with.
func (c *Controller) Mode() Mode { return c.mode }

// Draft returns the current draft by value.
func (c *Controller) Draft() Configuration { return c.draft }

// Initial returns the configuration the current session was seeded with.
func (c *Controller) Initial() Configuration { return c.initial }

// Operations lists the operations reachable right now.
func (c *Controller) Operations() []Operation {
	if c.state != StateOpen {
		return nil
	}
	return c.mode.Operations()
}

// # Operations

// Initialize opens a session. A nil initial seeds the draft with
// [DefaultConfiguration]; an incomplete one is rejected and the controller
// stays closed. An empty mode selects [ModeNewUser].
func (c *Controller) Initialize(initial *Configuration, mode Mode) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	if c.state == StateOpen {
		return wrap(apperr.Conflict("Customization session is already open"), ErrSessionOpen)
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return err
	}

	seed := DefaultConfiguration()
	if initial != nil {
		if err := initial.Validate(); err != nil {
			return err
		}
		seed = *initial
	}

	c.mode = mode
	c.initial = seed
	c.draft = seed
	c.state = StateOpen
	return nil
}

// UpdateField replaces one field of the draft and notifies the preview sink
// with the full result. Same-value updates still notify.
func (c *Controller) UpdateField(field Field, value string) (Configuration, error) {
	if err := c.enterOpen(); err != nil {
		return c.draft, err
	}
	defer c.leave()

	next, err := c.draft.With(field, value)
	if err != nil {
		return c.draft, err
	}

	c.draft = next
	c.sinks.Preview.Preview(next)
	return next, nil
}

// Reset replaces the draft with [DefaultConfiguration]. The session stays open.
func (c *Controller) Reset() (Configuration, error) {
	if err := c.enterOpen(); err != nil {
		return c.draft, err
	}
	defer c.leave()

	c.draft = DefaultConfiguration()
	c.sinks.Preview.Preview(c.draft)
	c.sinks.Acknowledge.Acknowledge(ResetAcknowledgment())
	return c.draft, nil
}

// Cancel discards the draft and closes the session. It is rejected in modes
// that do not expose it.
func (c *Controller) Cancel() error {
	if err := c.enterOpen(); err != nil {
		return err
	}
	defer c.leave()

	if !c.mode.Exposes(OpCancel) {
		return wrap(apperr.Forbidden("Cancel is not available in this mode"), ErrOperationNotExposed)
	}

	c.draft = c.initial
	c.state = StateClosed
	c.sinks.Host.RequestClose()
	return nil
}

// Commit hands the draft to the result sink exactly once, acknowledges it,
// and only then asks the host to close.
func (c *Controller) Commit() (Configuration, error) {
	if err := c.enterOpen(); err != nil {
		return c.draft, err
	}
	defer c.leave()

	final := c.draft
	c.state = StateClosed

	c.sinks.Result.Save(final)
	c.sinks.Acknowledge.Acknowledge(CommitAcknowledgment())
	c.sinks.Host.RequestClose()
	return final, nil
}

// # Guards

func (c *Controller) enter() error {
	if c.busy {
		return wrap(apperr.Conflict("Avatar controller is busy"), ErrReentrantCall)
	}
	c.busy = true
	return nil
}

func (c *Controller) enterOpen() error {
	if err := c.enter(); err != nil {
		return err
	}
	if c.state != StateOpen {
		c.leave()
		return wrap(apperr.Conflict("Customization session is closed"), ErrSessionClosed)
	}
	return nil
}

func (c *Controller) leave() {
	c.busy = false
}
