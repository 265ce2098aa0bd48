package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"spentify/internal/core"
)

const (
	sessionName = "spentify_session"

	keySubject   = "sub"
	keyEmail     = "email"
	keyFirstName = "first_name"
	keyLastName  = "last_name"
	keyName      = "name"
	keyImage     = "image_url"

	sessionMaxAge = 86400 * 30
)

// SessionStore keeps the authenticated principal in a signed cookie.
type SessionStore struct {
	store sessions.Store
}

func NewSessionStore(secret string, secure bool) *SessionStore {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = cookieOptions(secure, sessionMaxAge)
	return &SessionStore{store: cs}
}

// Save writes p into the session cookie.
func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, p core.Principal) error {
	session, err := s.store.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("load session: %w", err)
	}
	session.Values[keySubject] = p.SubjectID
	session.Values[keyEmail] = p.Email
	session.Values[keyFirstName] = p.FirstName
	session.Values[keyLastName] = p.LastName
	session.Values[keyName] = p.Name
	session.Values[keyImage] = p.ImageURL
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the principal of the session, if any.
// An unreadable cookie is treated as no session.
func (s *SessionStore) Load(r *http.Request) (core.Principal, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil || session == nil {
		return core.Principal{}, false
	}
	p := core.Principal{
		SubjectID: stringValue(session.Values, keySubject),
		Email:     stringValue(session.Values, keyEmail),
		FirstName: stringValue(session.Values, keyFirstName),
		LastName:  stringValue(session.Values, keyLastName),
		Name:      stringValue(session.Values, keyName),
		ImageURL:  stringValue(session.Values, keyImage),
	}
	if p.SubjectID == "" {
		return core.Principal{}, false
	}
	return p, true
}

// Clear expires the session cookie.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	if session == nil {
		return nil
	}
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func stringValue(values map[any]any, key string) string {
	v, _ := values[key].(string)
	return v
}
