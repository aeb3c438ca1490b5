package actions

import (
	"errors"
	"testing"

	"github.com/kodexlabs/chat-widget/internal/domain"
)

func TestUpdateReplacesNotAccumulates(t *testing.T) {
	s := New()

	s.Update(nil, []domain.ActionButton{{Label: "A", Value: "a"}}, nil)
	s.Update(nil, []domain.ActionButton{{Label: "B", Value: "b"}}, nil)

	got := s.Buttons()
	if len(got) != 1 || got[0].Value != "b" {
		t.Errorf("buttons = %+v, want only the latest set", got)
	}
}

func TestUpdateOptionsComeFirstAndAreTagged(t *testing.T) {
	s := New()
	s.Update(
		[]domain.ActionButton{{Label: "Opt", Value: "o"}},
		[]domain.ActionButton{{Label: "Btn", Value: "b", Kind: domain.ButtonKindButton}},
		nil,
	)

	got := s.Buttons()
	if len(got) != 2 {
		t.Fatalf("got %d buttons, want 2", len(got))
	}
	if got[0].Value != "o" || got[0].Kind != domain.ButtonKindOption {
		t.Errorf("first entry = %+v, want the option first, tagged as option", got[0])
	}
	if got[1].Value != "b" {
		t.Errorf("second entry = %+v", got[1])
	}
}

func TestUpdateEmptyClearsSurface(t *testing.T) {
	s := New()
	s.Update(nil, []domain.ActionButton{{Label: "A", Value: "a"}}, nil)
	s.Update(nil, nil, nil)

	if s.Buttons() != nil {
		t.Errorf("buttons = %+v, want nil", s.Buttons())
	}
}

func TestClearButtonsKeepsForm(t *testing.T) {
	s := New()
	form := &domain.FormSpec{Fields: []domain.FormField{{Name: "email"}}}
	s.Update(nil, []domain.ActionButton{{Label: "A", Value: "a"}}, form)

	s.ClearButtons()

	if s.Buttons() != nil {
		t.Error("buttons should be cleared")
	}
	if s.Form() != form {
		t.Error("active form should survive a button click")
	}
}

func TestSubmissionLifecycle(t *testing.T) {
	s := New()
	form := &domain.FormSpec{Fields: []domain.FormField{{Name: "email"}}}
	s.Update(nil, nil, form)

	got, err := s.BeginSubmit()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got != form {
		t.Error("begin should return the active form")
	}

	if _, err := s.BeginSubmit(); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second begin err = %v, want ErrSubmitInFlight", err)
	}

	s.EndSubmit()
	if s.Form() != nil {
		t.Error("form should clear on completed submission")
	}
	if _, err := s.BeginSubmit(); !errors.Is(err, ErrNoActiveForm) {
		t.Errorf("begin with no form err = %v, want ErrNoActiveForm", err)
	}
}

func TestNewFormResetsStaleSubmissionGuard(t *testing.T) {
	s := New()
	first := &domain.FormSpec{Fields: []domain.FormField{{Name: "a"}}}
	s.Update(nil, nil, first)
	if _, err := s.BeginSubmit(); err != nil {
		t.Fatalf("begin: %v", err)
	}

	second := &domain.FormSpec{Fields: []domain.FormField{{Name: "b"}}}
	s.Update(nil, nil, second)
	if _, err := s.BeginSubmit(); err != nil {
		t.Errorf("replacement form should accept a submission, got %v", err)
	}
}

func TestClearDropsEverything(t *testing.T) {
	s := New()
	s.Update(
		[]domain.ActionButton{{Label: "Opt", Value: "o"}},
		nil,
		&domain.FormSpec{Fields: []domain.FormField{{Name: "email"}}},
	)

	s.Clear()

	if s.Buttons() != nil || s.Form() != nil {
		t.Errorf("surface not empty: buttons=%+v form=%+v", s.Buttons(), s.Form())
	}
}
