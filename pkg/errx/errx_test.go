package errx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/grovekeep/grove/pkg/errx"
)

func TestRegistryPrefixesCodes(t *testing.T) {
	reg := errx.NewRegistry("TEST")
	code := reg.Register("SOMETHING_BROKE", errx.TypeInternal, 500, "Something broke")

	err := reg.New(code)
	if err.Code != "TEST_SOMETHING_BROKE" {
		t.Errorf("expected prefixed code, got %q", err.Code)
	}
	if err.HTTPStatus != 500 {
		t.Errorf("expected status 500, got %d", err.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errx.Wrap(cause, "db unavailable", errx.TypeExternal)

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}

	var xerr *errx.Error
	if !errors.As(err, &xerr) {
		t.Fatal("expected *errx.Error")
	}
	if xerr.Type != errx.TypeExternal {
		t.Errorf("expected external type, got %q", xerr.Type)
	}
}

func TestWithDetail(t *testing.T) {
	err := errx.New("not found", errx.TypeNotFound).
		WithDetail("user_id", "u-1").
		WithDetail("attempt", 2)

	if err.Details["user_id"] != "u-1" {
		t.Errorf("missing detail: %v", err.Details)
	}
	if err.HTTPStatus != 404 {
		t.Errorf("not-found type should map to 404, got %d", err.HTTPStatus)
	}
}

func TestErrorThroughFmt(t *testing.T) {
	err := errx.Wrap(errors.New("inner"), "outer", errx.TypeInternal)
	msg := fmt.Sprintf("%v", err)
	if msg == "" {
		t.Error("error string should not be empty")
	}
}
