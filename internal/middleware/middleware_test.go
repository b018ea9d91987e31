package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

type fakeVerifier struct {
	uid   string
	err   error
	token string
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	f.token = idToken
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Token{UID: f.uid}, nil
}

func TestFirebaseAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *fakeVerifier
		status   int
		uid      string
	}{
		{"missing header", "", &fakeVerifier{uid: "u1"}, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", &fakeVerifier{uid: "u1"}, http.StatusUnauthorized, ""},
		{"rejected token", "Bearer bad", &fakeVerifier{err: errors.New("expired")}, http.StatusUnauthorized, ""},
		{"valid token", "Bearer good", &fakeVerifier{uid: "u1"}, http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUID = UID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			NewMiddleware(tt.verifier).FirebaseAuth(next).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("status: got %d want %d", rr.Code, tt.status)
			}
			if gotUID != tt.uid {
				t.Fatalf("uid: got %q want %q", gotUID, tt.uid)
			}
		})
	}
}

func TestLoggerMiddlewareStoresLogger(t *testing.T) {
	base := slog.New(logger.NewTestHandler(slog.LevelInfo))
	var got *slog.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	h := chimiddleware.RequestID(NewLoggerMiddleware(base).LoggerMiddleware(next))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got == nil || got == slog.Default() {
		t.Fatal("expected request logger in context")
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status: got %d", rr.Code)
	}
}
