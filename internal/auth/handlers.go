package auth

import (
	"net/http"

	"github.com/markbates/goth/gothic"

	"spentify/internal/core"
	"spentify/internal/log"
)

// Handlers serves the OAuth login flow.
type Handlers struct {
	enabled  bool
	sessions *SessionStore
	resolver UserResolver
	logger   *log.Logger

	// complete is gothic.CompleteUserAuth, swapped in tests.
	complete func(http.ResponseWriter, *http.Request) (core.Principal, error)
}

func NewHandlers(enabled bool, sessions *SessionStore, resolver UserResolver, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Handlers{
		enabled:  enabled,
		sessions: sessions,
		resolver: resolver,
		logger:   logger.WithComponent(log.ComponentAuth),
		complete: func(w http.ResponseWriter, r *http.Request) (core.Principal, error) {
			u, err := gothic.CompleteUserAuth(w, r)
			if err != nil {
				return core.Principal{}, err
			}
			return principalFromGoth(u), nil
		},
	}
}

// Login initiates the Google OAuth flow.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		http.Error(w, "OAuth login is not configured", http.StatusServiceUnavailable)
		return
	}
	gothic.BeginAuthHandler(w, withProvider(r))
}

// Callback completes the OAuth flow, resolves the local user and stores the
// principal in the session.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		http.Error(w, "OAuth login is not configured", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()

	p, err := h.complete(w, withProvider(r))
	if err != nil {
		h.logger.WarnContext(ctx, "OAuth callback failed", log.FieldError, err)
		http.Redirect(w, r, "/?error=auth_failed", http.StatusFound)
		return
	}

	user, err := h.resolver.Resolve(ctx, p)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to resolve user after login",
			log.FieldSubjectID, p.SubjectID, log.FieldError, err)
		http.Redirect(w, r, "/?error=user_failed", http.StatusFound)
		return
	}

	if err := h.sessions.Save(w, r, p); err != nil {
		h.logger.ErrorContext(ctx, "Session save failed", log.FieldError, err)
		http.Redirect(w, r, "/?error=session_failed", http.StatusFound)
		return
	}

	h.logger.InfoContext(ctx, "User authenticated", log.FieldUserID, user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears both the principal session and gothic's provider session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "Session clear failed", log.FieldError, err)
	}
	if h.enabled {
		_ = gothic.Logout(w, withProvider(r))
	}
	w.WriteHeader(http.StatusNoContent)
}
