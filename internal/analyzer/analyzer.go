// Package analyzer extracts sender, subject, key points and sentiment from
// raw email text.
package analyzer

import (
	"fmt"

	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/model"
)

// Analyzer produces an analysis for an email body
type Analyzer interface {
	Analyze(emailContent string) *model.EmailAnalysisResponse
}

// Placeholder values returned by Stub
const (
	StubSender    = "Extracted Sender Name"
	StubSubject   = "Extracted Subject"
	StubKeyPoints = "Key Points extracted from email"
	StubSentiment = "Positive/Negative/Neutral Sentiment"
)

// Stub returns the same placeholder fields for every email
type Stub struct{}

// Analyze implements Analyzer
func (Stub) Analyze(string) *model.EmailAnalysisResponse {
	return &model.EmailAnalysisResponse{
		Sender:    StubSender,
		Subject:   StubSubject,
		KeyPoints: StubKeyPoints,
		Sentiment: StubSentiment,
	}
}

// New returns the analyzer selected by cfg.Mode
func New(cfg config.AnalyzerConfig) (Analyzer, error) {
	switch cfg.Mode {
	case "", config.AnalyzerStub:
		return Stub{}, nil
	case config.AnalyzerHeuristic:
		return Heuristic{}, nil
	default:
		return nil, fmt.Errorf("analyzer: unknown mode %q", cfg.Mode)
	}
}
