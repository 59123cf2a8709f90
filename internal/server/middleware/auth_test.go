package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/teleroom/teleroom/internal/server/middleware"
)

const testSecret = "test-secret"

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

func signToken(t *testing.T, subject string, admin bool) string {
	t.Helper()
	claims := middleware.AppClaims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}

func authedHandler(t *testing.T, captured **middleware.RequestMetadata) http.Handler {
	t.Helper()
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta, ok := middleware.ReqMetadataFrom(r.Context())
		if !ok {
			t.Fatal("Handler reached without request metadata")
		}
		*captured = meta
		w.WriteHeader(http.StatusOK)
	})
	return middleware.Chain(final,
		middleware.RequestMetadataMiddleware(),
		middleware.NewAuthMiddleware(newTestLogger(), testSecret),
	)
}

func TestAuthAcceptsCookieToken(t *testing.T) {
	var meta *middleware.RequestMetadata
	handler := authedHandler(t, &meta)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: signToken(t, "123", false)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if meta.UserID != 123 {
		t.Errorf("Expected user id 123, got %d", meta.UserID)
	}
	if meta.IsAdmin {
		t.Error("Non-admin token produced admin metadata")
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	var meta *middleware.RequestMetadata
	handler := authedHandler(t, &meta)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "456", true))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if meta.UserID != 456 || !meta.IsAdmin {
		t.Errorf("Unexpected metadata: %+v", meta)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	var meta *middleware.RequestMetadata
	handler := authedHandler(t, &meta)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if meta != nil {
		t.Error("Handler ran despite missing token")
	}
}

func TestAuthRejectsBadSignature(t *testing.T) {
	var meta *middleware.RequestMetadata
	handler := authedHandler(t, &meta)

	claims := jwt.RegisteredClaims{Subject: "123", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("Failed to sign forged token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: forged})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsNonNumericSubject(t *testing.T) {
	var meta *middleware.RequestMetadata
	handler := authedHandler(t, &meta)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: signToken(t, "not-a-number", false)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}
