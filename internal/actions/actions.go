// Package actions derives the currently offered quick-reply surface.
package actions

import (
	"errors"

	"github.com/kodexlabs/chat-widget/internal/domain"
)

// ErrNoActiveForm is returned when a submission is attempted with no form offered.
var ErrNoActiveForm = errors.New("no active form")

// ErrSubmitInFlight is returned when a submission is already outstanding.
var ErrSubmitInFlight = errors.New("form submission already in flight")

// Surface holds the current action-button set and active form. Updates
// replace, never accumulate with, the prior state.
type Surface struct {
	buttons    []domain.ActionButton
	form       *domain.FormSpec
	submitting bool
}

// New creates an empty surface.
func New() *Surface {
	return &Surface{}
}

// Update replaces the button set and active form from the latest classified
// message. Options come first, tagged as options, then buttons — a display
// contract, not a priority rule. A nil form clears the active one and resets
// any stale submission guard.
func (s *Surface) Update(options, buttons []domain.ActionButton, form *domain.FormSpec) {
	combined := make([]domain.ActionButton, 0, len(options)+len(buttons))
	for _, opt := range options {
		opt.Kind = domain.ButtonKindOption
		combined = append(combined, opt)
	}
	combined = append(combined, buttons...)
	if len(combined) == 0 {
		combined = nil
	}
	s.buttons = combined

	if form != s.form {
		s.submitting = false
	}
	s.form = form
}

// Buttons returns the current action-button set in display order.
func (s *Surface) Buttons() []domain.ActionButton {
	return s.buttons
}

// Form returns the active form, or nil.
func (s *Surface) Form() *domain.FormSpec {
	return s.form
}

// ClearButtons drops the button set, leaving any active form in place. Called
// after a button click: the click is sent as text, then the surface empties.
func (s *Surface) ClearButtons() {
	s.buttons = nil
}

// Clear drops both the button set and the active form.
func (s *Surface) Clear() {
	s.buttons = nil
	s.form = nil
	s.submitting = false
}

// BeginSubmit starts a serialized form submission, returning the form whose
// values are being collected. A second attempt while one is outstanding is
// rejected to avoid duplicate frames from a rapid double submit.
func (s *Surface) BeginSubmit() (*domain.FormSpec, error) {
	if s.form == nil {
		return nil, ErrNoActiveForm
	}
	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	s.submitting = true
	return s.form, nil
}

// EndSubmit completes a submission, clearing the active form.
func (s *Surface) EndSubmit() {
	s.form = nil
	s.submitting = false
}
