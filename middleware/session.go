package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hexfray/credauth"
	"github.com/hexfray/credauth/jwt"
	"github.com/hexfray/credauth/session"
)

// SessionCookie is the cookie name [WithSessionStore] reads.
const SessionCookie = "credauth_session"

type sessionStateContextKey struct{}

// StateFromContext returns the resolved session state, or nil when the
// request carried no valid session. The nil return feeds straight into
// Engine operations, which answer ErrUnauthenticated.
func StateFromContext(ctx context.Context) *credauth.SessionState {
	state, _ := ctx.Value(sessionStateContextKey{}).(*credauth.SessionState)
	return state
}

// WithSessionStore resolves the session cookie against store and injects
// the resulting state into the request context.
func WithSessionStore(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			state := &credauth.SessionState{
				UserID:   sess.UserID,
				Provider: credauth.Provider(sess.Provider),
			}
			next.ServeHTTP(w, r.WithContext(withState(r.Context(), state)))
		})
	}
}

// WithTokenManager resolves an Authorization bearer token against manager
// and injects the resulting state into the request context.
func WithTokenManager(manager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			state := &credauth.SessionState{
				UserID:   claims.UID,
				Provider: credauth.Provider(claims.PRV),
			}
			next.ServeHTTP(w, r.WithContext(withState(r.Context(), state)))
		})
	}
}

func withState(ctx context.Context, state *credauth.SessionState) context.Context {
	return context.WithValue(ctx, sessionStateContextKey{}, state)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}
