package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"spentify/internal/config"
	"spentify/internal/core"
	"spentify/internal/log"
)

const providerName = "google"

// InitProviders configures gothic's state store and registers the Google provider.
// It reports whether OAuth login is available.
func InitProviders(cfg *config.Config, logger *log.Logger) bool {
	// Gothic keeps the OAuth state in its own store, separate from the principal session.
	// The gorilla default is Secure=true, which breaks plain-HTTP localhost.
	gothStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	gothStore.Options = cookieOptions(cfg.IsProduction(), 600)
	gothic.Store = gothStore

	if !cfg.OAuthEnabled() {
		logger.Warn("GOOGLE_CLIENT_ID not set, OAuth login disabled")
		return false
	}

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email",
			"profile",
		),
	)
	logger.Info("Goth providers initialized", "providers", providerName)
	return true
}

func cookieOptions(secure bool, maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// withProvider adds the provider query parameter gothic expects.
func withProvider(r *http.Request) *http.Request {
	q := r.URL.Query()
	q.Set("provider", providerName)
	r.URL.RawQuery = q.Encode()
	return r
}

// principalFromGoth maps a provider user onto the identity the resolver consumes.
func principalFromGoth(u goth.User) core.Principal {
	return core.Principal{
		SubjectID: u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.Name,
		ImageURL:  u.AvatarURL,
	}
}
