package http

import (
	"net/http"
	"strings"

	"spentify/internal/auth"
	"spentify/internal/core"
	"spentify/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ServiceUnavailableError("store unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(core.Categories()).Write(w)
}

// currentUser returns the user placed in the context by the authenticator.
func currentUser(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		UnauthorizedError(msgUnauthenticated).Write(w)
	}
	return user, ok
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(user).Write(w)
}

// handleHome composes user, stats and recent records, cached per user.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if home, found := s.homeCache.Get(user.ID); found {
		log.FromContext(ctx).DebugContext(ctx, "Home cache hit")
		NewJSONResponse().Data(home).Write(w)
		return
	}

	gen := s.homeCache.Generation(user.ID)
	stats, err := s.records.Stats(ctx, user.ID)
	if err != nil {
		writeError(w, r, err, msgStatsUnavailable)
		return
	}
	recent, err := s.records.ListRecords(ctx, user.ID)
	if err != nil {
		writeError(w, r, err, msgHistoryUnavail)
		return
	}

	home := Home{User: user, Stats: stats, Records: recent, Currency: s.symbol}
	if s.homeCache.SetIfGeneration(user.ID, home, gen) {
		log.FromContext(ctx).DebugContext(ctx, "Home cached", log.FieldRecordCount, len(recent))
	} else {
		log.FromContext(ctx).DebugContext(ctx, "Home invalidated while loading, not cached")
	}
	NewJSONResponse().Data(home).Write(w)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	records, err := s.records.ListRecords(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, msgHistoryUnavail)
		return
	}
	NewJSONResponse().Data(records).Write(w)
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse body error", log.FieldError, err)
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	rec, err := s.records.AddRecord(r.Context(), user, p.RecordInput())
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	s.invalidateHome(user.ID)
	NewJSONResponse().Status(http.StatusCreated).Data(rec).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		BadRequestError("Missing record id").Write(w)
		return
	}

	if err := s.records.DeleteRecord(r.Context(), user.ID, id); err != nil {
		writeError(w, r, err, "")
		return
	}
	s.invalidateHome(user.ID)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	stats, err := s.records.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, msgStatsUnavailable)
		return
	}
	NewJSONResponse().Data(stats).Write(w)
}
