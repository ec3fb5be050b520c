package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("placing order: %w", Resourcef("insufficient stock"))

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: Validationf("quantity must be at least 1"), want: KindValidation},
		{name: "state", err: Statef("invalid transition from PENDING to DELIVERED"), want: KindState},
		{name: "resource_wrapped", err: wrapped, want: KindResource},
		{name: "authorization", err: Authorizationf("not allowed"), want: KindAuthorization},
		{name: "not_found", err: NotFoundf("order %s not found", "x"), want: KindNotFound},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: Validationf("bad input"), want: http.StatusBadRequest},
		{name: "state", err: Statef("already processed"), want: http.StatusConflict},
		{name: "resource", err: Resourcef("insufficient balance"), want: http.StatusUnprocessableEntity},
		{name: "authorization", err: Authorizationf("not allowed"), want: http.StatusForbidden},
		{name: "not_found", err: NotFoundf("missing"), want: http.StatusNotFound},
		{name: "internal", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "internal_wrapped", err: Internalf(errors.New("io"), "persist order"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", Statef("payment already processed"))
	if !errors.Is(err, &Error{Kind: KindState}) {
		t.Fatal("expected wrapped state error to match by kind")
	}
	if errors.Is(err, &Error{Kind: KindResource}) {
		t.Fatal("state error must not match resource kind")
	}
}
