package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hexfray/credauth"
	"github.com/hexfray/credauth/jwt"
	"github.com/hexfray/credauth/session"
)

func captureState(t *testing.T) (http.Handler, **credauth.SessionState) {
	t.Helper()

	var captured *credauth.SessionState
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = StateFromContext(r.Context())
	})
	return handler, &captured
}

func TestWithSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewStore(client, session.Config{TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	sess, err := store.Create(context.Background(), "user-1", "credentials")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	handler, captured := captureState(t)
	wrapped := WithSessionStore(store)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.ID})
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if *captured == nil {
		t.Fatal("expected session state in context")
	}
	if (*captured).UserID != "user-1" || (*captured).Provider != credauth.ProviderCredentials {
		t.Fatalf("unexpected state: %+v", *captured)
	}
}

func TestWithSessionStoreMissingCookie(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewStore(client, session.Config{TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}

	handler, captured := captureState(t)
	wrapped := WithSessionStore(store)(handler)

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if *captured != nil {
		t.Fatalf("expected no session state, got %+v", *captured)
	}
}

func TestWithTokenManager(t *testing.T) {
	manager, err := jwt.NewManager(jwt.Config{
		TTL:           time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	token, err := manager.Issue("user-2", "google")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	handler, captured := captureState(t)
	wrapped := WithTokenManager(manager)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if *captured == nil {
		t.Fatal("expected session state in context")
	}
	if (*captured).UserID != "user-2" || (*captured).Provider != credauth.ProviderGoogle {
		t.Fatalf("unexpected state: %+v", *captured)
	}
}

func TestWithTokenManagerGarbageToken(t *testing.T) {
	manager, err := jwt.NewManager(jwt.Config{
		TTL:           time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	handler, captured := captureState(t)
	wrapped := WithTokenManager(manager)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if *captured != nil {
		t.Fatalf("expected no session state, got %+v", *captured)
	}
}
