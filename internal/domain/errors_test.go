package domain

import (
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete: %w", NotFound("project", "p1"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("wrapped not found lost its kind")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatal("not found matched forbidden")
	}

	cause := errors.New("disk full")
	storeErr := Store("insert task", cause)
	if !errors.Is(storeErr, ErrStore) || !errors.Is(storeErr, cause) {
		t.Fatal("store error should match its kind and cause")
	}
}

func TestFromValidation(t *testing.T) {
	type input struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	in := input{}
	err := FromValidation("task", validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Title, validation.Required),
	))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	fields := FieldErrors(err)
	if len(fields) != 2 || fields["name"] == "" || fields["title"] == "" {
		t.Fatalf("unexpected fields: %v", fields)
	}

	if FromValidation("task", nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if FieldErrors(NotFound("task", "t1")) != nil {
		t.Fatal("only validation errors carry fields")
	}
}
