// Package insights turns a user's records into spending insights, free-text
// answers and category suggestions using an OpenAI-compatible model.
//
// None of the operations return errors. Without a usable API key they answer
// from deterministic offline content, and any model failure is logged and
// replaced by a fixed fallback.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spentify/internal/core"
	"spentify/internal/log"
)

// Generator is what the HTTP layer needs from this package.
type Generator interface {
	GenerateInsights(ctx context.Context, records []core.Record) []core.Insight
	GenerateAnswer(ctx context.Context, question string, records []core.Record) string
	Categorize(ctx context.Context, description string) core.Category
}

// Config holds the generator settings. Model endpoint settings live in ClientConfig.
type Config struct {
	APIKey         string
	CurrencySymbol string
	// Timeout bounds a single model call. Zero means the caller's context decides.
	Timeout time.Duration
}

const (
	answerFallback = "I'm unable to provide a detailed answer at the moment. " +
		"Please try refreshing the insights or check your connection."
)

// Service implements Generator.
type Service struct {
	client     ChatClient
	credential CredentialState
	symbol     string
	timeout    time.Duration
	logger     *log.Logger
	now        func() time.Time
}

var _ Generator = (*Service)(nil)

// New builds a Service. client may be nil when the credential is not valid.
func New(cfg Config, client ChatClient, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	symbol := cfg.CurrencySymbol
	if symbol == "" {
		symbol = core.DefaultCurrencySymbol
	}
	s := &Service{
		client:     client,
		credential: StateOf(cfg.APIKey),
		symbol:     symbol,
		timeout:    cfg.Timeout,
		logger:     logger.WithComponent(log.ComponentInsights),
		now:        time.Now,
	}
	if s.client == nil && s.credential == CredentialValid {
		s.logger.Warn("API key configured without a chat client, running offline")
		s.credential = CredentialAbsent
	}
	return s
}

// Online reports whether model calls will be attempted.
func (s *Service) Online() bool {
	return s.credential == CredentialValid
}

// GenerateInsights returns 3-4 model insights, the two offline insights when no
// key is configured, or a single fallback insight when the model call fails.
func (s *Service) GenerateInsights(ctx context.Context, records []core.Record) []core.Insight {
	if !s.Online() {
		s.logger.DebugContext(ctx, "Serving offline insights", "credential", s.credential.String())
		return s.offlineInsights(records)
	}

	text, err := s.complete(ctx, log.OpInsights, insightsRequest(s.symbol, records))
	if err != nil {
		s.logUpstream(ctx, err)
		return []core.Insight{fallbackInsight()}
	}

	res := parseInsights(text)
	if !res.ok() {
		s.logUpstream(ctx, &UpstreamModelError{
			Code:      ErrMalformedOutput,
			Operation: log.OpInsights,
			Message:   "could not parse insights",
			Cause:     res.Failure,
		})
		return []core.Insight{fallbackInsight()}
	}

	millis := s.now().UnixMilli()
	out := make([]core.Insight, 0, len(res.Insights))
	for i, raw := range res.Insights {
		out = append(out, raw.toInsight(fmt.Sprintf("ai-%d-%d", millis, i)))
	}
	s.logger.InfoContext(ctx, "Generated insights",
		log.FieldInsights, len(out), log.FieldRecordCount, len(records))
	return out
}

// GenerateAnswer answers a free-text question about the records.
func (s *Service) GenerateAnswer(ctx context.Context, question string, records []core.Record) string {
	if !s.Online() {
		return fmt.Sprintf("I need an API key to provide detailed AI analysis. Currently, you have %s in expenses. "+
			"To get personalized AI answers, please add your OpenRouter API key to the .env.local file.",
			core.FormatAmount(s.symbol, core.Sum(records)))
	}

	text, err := s.complete(ctx, log.OpAnswer, answerRequest(s.symbol, question, records))
	if err != nil {
		s.logUpstream(ctx, err)
		return answerFallback
	}
	return text
}

// Categorize suggests a category for description. Anything other than an exact
// category label from the model yields Other.
func (s *Service) Categorize(ctx context.Context, description string) core.Category {
	if !s.Online() {
		return core.Other
	}

	text, err := s.complete(ctx, log.OpCategorize, categorizeRequest(description))
	if err != nil {
		s.logUpstream(ctx, err)
		return core.Other
	}

	cat := core.Category(text)
	if !cat.Valid() {
		s.logger.DebugContext(ctx, "Model suggested unknown category", log.FieldCategory, text)
		return core.Other
	}
	return cat
}

// complete performs one model call and returns the trimmed, non-empty text.
// Failures are returned as *UpstreamModelError.
func (s *Service) complete(ctx context.Context, op string, req ChatRequest) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.client.Complete(ctx, req)
	if err != nil {
		return "", &UpstreamModelError{Code: ErrRequestFailed, Operation: op, Message: "chat completion failed", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &UpstreamModelError{Code: ErrEmptyResponse, Operation: op, Message: "no content in model response"}
	}
	return text, nil
}

func (s *Service) logUpstream(ctx context.Context, err error) {
	fields := log.NewFields().WithError(err).WithErrorType(log.ErrorTypeUpstream)
	var ue *UpstreamModelError
	if errors.As(err, &ue) {
		fields = fields.WithOperation(ue.Operation)
		fields["code"] = string(ue.Code)
	}
	s.logger.ErrorContext(ctx, "Model call failed, serving fallback", fields.ToSlice()...)
}

func (s *Service) offlineInsights(records []core.Record) []core.Insight {
	return []core.Insight{
		{
			ID:    "mock-1",
			Type:  core.InsightInfo,
			Title: "API Key Required",
			Message: fmt.Sprintf("You have %s in total expenses across %d categories. "+
				"To get AI-powered insights, please add your OpenRouter or OpenAI API key to the .env.local file.",
				core.FormatAmount(s.symbol, core.Sum(records)), core.DistinctCategories(records)),
			Action:     "Configure API key in .env.local",
			Confidence: 1.0,
		},
		{
			ID:    "mock-2",
			Type:  core.InsightTip,
			Title: "Getting Started",
			Message: "Visit openrouter.ai to get a free API key and unlock intelligent spending analysis, " +
				"category suggestions, and personalized financial recommendations.",
			Action:     "Get API key at openrouter.ai",
			Confidence: 1.0,
		},
	}
}

func fallbackInsight() core.Insight {
	return core.Insight{
		ID:         "fallback-1",
		Type:       core.InsightInfo,
		Title:      "AI Analysis Unavailable",
		Message:    "Unable to generate personalized insights at this time. Please try again later.",
		Action:     "Refresh insights",
		Confidence: 0.5,
	}
}
