package insights

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spentify/internal/core"
)

const (
	defaultTitle      = "AI Insight"
	defaultMessage    = "Analysis complete"
	defaultConfidence = 0.8
)

// rawInsight is one element of the model's JSON array before defaults apply.
type rawInsight struct {
	Type       string
	Title      string
	Message    string
	Action     string
	Confidence *float64
}

// parseResult is either a list of raw insights or the reason parsing failed.
type parseResult struct {
	Insights []rawInsight
	Failure  error
}

func (r parseResult) ok() bool { return r.Failure == nil }

var (
	errEmptyArray = errors.New("model returned an empty insight array")
	errNoObjects  = errors.New("model returned no insight objects")
)

// stripFences removes a surrounding markdown code fence, with or without a
// json language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseInsights accepts a JSON array and keeps every element that is an
// object. Fields are decoded one at a time, so a mistyped field falls back to
// its default without discarding the rest of the reply.
func parseInsights(text string) parseResult {
	body := stripFences(text)
	if !strings.HasPrefix(body, "[") {
		return parseResult{Failure: fmt.Errorf("expected a JSON array, got %q", preview(body))}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(body), &elems); err != nil {
		return parseResult{Failure: fmt.Errorf("decode insight array: %w", err)}
	}
	if len(elems) == 0 {
		return parseResult{Failure: errEmptyArray}
	}

	raw := make([]rawInsight, 0, len(elems))
	for _, elem := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
			continue
		}
		raw = append(raw, rawInsight{
			Type:       stringField(fields, "type"),
			Title:      stringField(fields, "title"),
			Message:    stringField(fields, "message"),
			Action:     stringField(fields, "action"),
			Confidence: numberField(fields, "confidence"),
		})
	}
	if len(raw) == 0 {
		return parseResult{Failure: errNoObjects}
	}
	return parseResult{Insights: raw}
}

// stringField returns the field when it is a JSON string, otherwise "".
func stringField(fields map[string]json.RawMessage, key string) string {
	var v string
	if err := json.Unmarshal(fields[key], &v); err != nil {
		return ""
	}
	return v
}

// numberField returns the field when it is a JSON number, otherwise nil.
func numberField(fields map[string]json.RawMessage, key string) *float64 {
	var v *float64
	if err := json.Unmarshal(fields[key], &v); err != nil {
		return nil
	}
	return v
}

// toInsight applies defaults to a parsed element.
func (r rawInsight) toInsight(id string) core.Insight {
	typ := core.InsightType(strings.ToLower(strings.TrimSpace(r.Type)))
	if !typ.Valid() {
		typ = core.InsightInfo
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = defaultTitle
	}
	message := strings.TrimSpace(r.Message)
	if message == "" {
		message = defaultMessage
	}

	confidence := defaultConfidence
	if r.Confidence != nil && *r.Confidence != 0 {
		confidence = min(max(*r.Confidence, 0), 1)
	}

	return core.Insight{
		ID:         id,
		Type:       typ,
		Title:      title,
		Message:    message,
		Action:     strings.TrimSpace(r.Action),
		Confidence: confidence,
	}
}

func preview(s string) string {
	const n = 40
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
