package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"spentify/internal/core"
	"spentify/internal/log"
)

// UserResolver maps an authenticated principal to a local user.
type UserResolver interface {
	Resolve(ctx context.Context, p core.Principal) (core.User, error)
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type contextKey struct{}

// WithUser stores the resolved user in ctx.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user stored by RequireUser.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(contextKey{}).(core.User)
	return u, ok
}

// Authenticator extracts the principal of a request and resolves it to a user.
type Authenticator struct {
	sessions *SessionStore
	resolver UserResolver
	dev      *core.Principal
	onError  ErrorWriter
	logger   *log.Logger
}

// NewAuthenticator builds an Authenticator. A non-empty devEmail authenticates
// every request without a session as that user; never set it in production.
func NewAuthenticator(sessions *SessionStore, resolver UserResolver, devEmail string, onError ErrorWriter, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	a := &Authenticator{
		sessions: sessions,
		resolver: resolver,
		onError:  onError,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
	if email := strings.TrimSpace(devEmail); email != "" {
		a.dev = &core.Principal{
			SubjectID: "dev|" + email,
			Email:     email,
			Name:      "Local Dev User",
		}
		a.logger.Warn("Development principal enabled", log.FieldEmail, email)
	}
	return a
}

// Principal returns the session principal, falling back to the development one.
func (a *Authenticator) Principal(r *http.Request) (core.Principal, bool) {
	if a.sessions != nil {
		if p, ok := a.sessions.Load(r); ok {
			return p, true
		}
	}
	if a.dev != nil {
		return *a.dev, true
	}
	return core.Principal{}, false
}

// RequireUser rejects requests without a principal and puts the resolved user in the context.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := a.Principal(r)
		if !ok {
			a.onError(w, r, core.ErrUnauthenticated)
			return
		}

		user, err := a.resolver.Resolve(r.Context(), p)
		if err != nil {
			if !errors.Is(err, core.ErrUnauthenticated) && !errors.Is(err, core.ErrUnresolvable) {
				a.logger.ErrorContext(r.Context(), "Failed to resolve user",
					log.FieldSubjectID, p.SubjectID, log.FieldError, err)
			}
			a.onError(w, r, err)
			return
		}

		ctx := WithUser(r.Context(), user)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, user.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
