package http

import (
	"net/http"

	"spentify/internal/core"
)

// Insight endpoints never fail because of the model. Only loading the user's
// records can fail.

type answerBody struct {
	Answer string `json:"answer"`
}

type categoryBody struct {
	Category core.Category `json:"category"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	records, err := s.records.AllRecords(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	NewJSONResponse().Data(s.insights.GenerateInsights(r.Context(), records)).Write(w)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	question := p.Get("question")
	if question == "" {
		UnprocessableEntityError("Question is required").Write(w)
		return
	}

	records, err := s.records.AllRecords(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	answer := s.insights.GenerateAnswer(r.Context(), question, records)
	NewJSONResponse().Data(answerBody{Answer: answer}).Write(w)
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	description := p.Get("description", "text")
	if description == "" {
		UnprocessableEntityError("Description is required").Write(w)
		return
	}
	NewJSONResponse().Data(categoryBody{Category: s.insights.Categorize(r.Context(), description)}).Write(w)
}
