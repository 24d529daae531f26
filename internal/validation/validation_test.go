package validation

import (
	"errors"
	"testing"
)

type form struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Internal string `json:"-" validate:"omitempty"`
}

func TestStructAndTranslate(t *testing.T) {
	if err := Struct(form{Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	err := Struct(form{Email: "nope", Password: "123"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	fields := Translate(err)
	if fields["email"] != "email must be a valid email address" {
		t.Fatalf("unexpected email message %q", fields["email"])
	}
	if fields["password"] != "password must be at least 6 characters in length" {
		t.Fatalf("unexpected password message %q", fields["password"])
	}
}

func TestTranslateOtherErrors(t *testing.T) {
	fields := Translate(errors.New("boom"))
	if fields["detail"] != "boom" {
		t.Fatalf("expected detail, got %v", fields)
	}
}
