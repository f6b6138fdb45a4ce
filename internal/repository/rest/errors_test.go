package rest

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"draftdeck/internal/domain"
)

func responseWith(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "404 maps to not found",
			status: http.StatusNotFound,
			body:   `{"error":"no such conversation"}`,
			check: func(t *testing.T, err error) {
				var nf *domain.NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("expected NotFoundError, got %T", err)
				}
				if nf.Message != "no such conversation" {
					t.Errorf("message = %q", nf.Message)
				}
			},
		},
		{
			name:   "422 maps to validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"error":"message too long"}`,
			check: func(t *testing.T, err error) {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
			},
		},
		{
			name:   "409 carries the conflict list",
			status: http.StatusConflict,
			body:   `{"error":"already imported","conflicts":[{"id":"c9","title":"Old import"}]}`,
			check: func(t *testing.T, err error) {
				var ic *domain.ImportConflictError
				if !errors.As(err, &ic) {
					t.Fatalf("expected ImportConflictError, got %T", err)
				}
				if len(ic.Conflicts) != 1 || ic.Conflicts[0].ID != "c9" {
					t.Errorf("conflicts = %+v", ic.Conflicts)
				}
				if !errors.Is(err, domain.ErrConflict) {
					t.Error("import conflict must match ErrConflict")
				}
			},
		},
		{
			name:   "423 maps to locked sentinel",
			status: http.StatusLocked,
			body:   `{"error":"conversation frozen"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrConversationLocked) {
					t.Errorf("expected ErrConversationLocked, got %v", err)
				}
			},
		},
		{
			name:   "non-json body falls back to status text",
			status: http.StatusBadGateway,
			body:   `<html>upstream exploded</html>`,
			check: func(t *testing.T, err error) {
				if !strings.Contains(err.Error(), "backend returned") {
					t.Errorf("expected status-derived message, got %q", err.Error())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(responseWith(tt.status, tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}
