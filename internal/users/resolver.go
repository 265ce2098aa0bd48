// Package users maps an authenticated principal onto a local user account.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spentify/internal/core"
	"spentify/internal/log"
	"spentify/internal/ports"
)

// Resolver finds or provisions the local user for a principal.
type Resolver struct {
	store  ports.UserStore
	logger *log.Logger
}

func NewResolver(store ports.UserStore, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Resolver{store: store, logger: logger.WithComponent(log.ComponentUsers)}
}

// Resolve returns the user bound to p.SubjectID, linking an existing account
// by email or creating a new one when no binding exists yet.
//
// Errors: core.ErrUnresolvable when p has no email and no binding exists,
// core.ErrStore when the store fails.
func (r *Resolver) Resolve(ctx context.Context, p core.Principal) (core.User, error) {
	if strings.TrimSpace(p.SubjectID) == "" {
		return core.User{}, core.ErrUnauthenticated
	}

	u, err := r.store.UserBySubject(ctx, p.SubjectID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.StoreError("lookup user by subject", err)
	}

	email := strings.TrimSpace(p.Email)
	if email == "" {
		r.logger.WarnContext(ctx, "Principal has no email address", log.FieldSubjectID, p.SubjectID)
		return core.User{}, fmt.Errorf("subject %s: %w", p.SubjectID, core.ErrUnresolvable)
	}

	u, err = r.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		linked, err := r.store.AttachSubject(ctx, email, p)
		if err != nil {
			return core.User{}, core.StoreError("attach subject", err)
		}
		r.logger.InfoContext(ctx, "Linked existing user to subject",
			log.FieldUserID, linked.ID, log.FieldSubjectID, p.SubjectID)
		return linked, nil
	case !errors.Is(err, core.ErrNotFound):
		return core.User{}, core.StoreError("lookup user by email", err)
	}

	created, createErr := r.store.CreateUser(ctx, core.User{
		SubjectID: p.SubjectID,
		Email:     email,
		Name:      p.DisplayName(),
		ImageURL:  p.ImageURL,
	})
	if createErr == nil {
		r.logger.InfoContext(ctx, "Created user", log.FieldUserID, created.ID, log.FieldSubjectID, p.SubjectID)
		return created, nil
	}

	// A concurrent first login may have created the row in between.
	r.logger.WarnContext(ctx, "Create user failed, retrying subject lookup",
		log.FieldSubjectID, p.SubjectID, log.FieldError, createErr)
	u, err = r.store.UserBySubject(ctx, p.SubjectID)
	if err != nil {
		return core.User{}, core.StoreError("create user", createErr)
	}
	return u, nil
}
