package service

import (
	"context"
	"fmt"

	"github.com/emailwriter/emailwriter/internal/analyzer"
	"github.com/emailwriter/emailwriter/internal/logger"
	"github.com/emailwriter/emailwriter/internal/model"
	"github.com/emailwriter/emailwriter/internal/upstream"
)

// ReplyGenerator turns a prompt into generated text
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// Translator translates generated text and analysis records
type Translator interface {
	TranslateText(ctx context.Context, text, targetLanguage string) (string, error)
	TranslateAnalysis(ctx context.Context, resp *model.EmailAnalysisResponse, targetLanguage string) (*model.EmailAnalysisResponse, error)
}

// EmailService implements the generate and analyze operations
type EmailService struct {
	generator    ReplyGenerator
	translator   Translator
	analyzer     analyzer.Analyzer
	inlineErrors bool
	log          *logger.Logger
}

// NewEmailService creates a new EmailService. With inlineErrors set, upstream
// failures are rendered as text in the result instead of being returned.
func NewEmailService(generator ReplyGenerator, translator Translator, a analyzer.Analyzer, inlineErrors bool, log *logger.Logger) *EmailService {
	return &EmailService{
		generator:    generator,
		translator:   translator,
		analyzer:     a,
		inlineErrors: inlineErrors,
		log:          log.WithComponent("email_service"),
	}
}

// Generate builds a reply for req.EmailContent and translates it into
// req.Language when one is given.
func (s *EmailService) Generate(ctx context.Context, req model.EmailRequest) (string, error) {
	prompt := BuildPrompt(req.EmailContent, req.Tone)

	reply, err := s.generator.GenerateReply(ctx, prompt)
	if err != nil {
		if !s.inlineErrors {
			return "", fmt.Errorf("generate reply: %w", err)
		}
		s.log.Warn().Err(err).Msg("generation failed, returning error text")
		reply = inlineText(upstream.KindGeneration, err)
	}

	translated, err := s.translator.TranslateText(ctx, reply, req.Language)
	if err != nil {
		if !s.inlineErrors {
			return "", fmt.Errorf("translate reply: %w", err)
		}
		s.log.Warn().Err(err).Str("language", req.Language).Msg("translation failed, returning error text")
		return inlineText(upstream.KindTranslation, err), nil
	}

	return translated, nil
}

// Analyze extracts the analysis fields from req.EmailContent and translates
// each of them into req.Language when one is given.
func (s *EmailService) Analyze(ctx context.Context, req model.EmailRequest) (*model.EmailAnalysisResponse, error) {
	analysis := s.analyzer.Analyze(req.EmailContent)

	translated, err := s.translator.TranslateAnalysis(ctx, analysis, req.Language)
	if err != nil {
		if !s.inlineErrors {
			return nil, fmt.Errorf("translate analysis: %w", err)
		}
		s.log.Warn().Err(err).Str("language", req.Language).Msg("translation failed, returning error text")
		text := inlineText(upstream.KindTranslation, err)
		return &model.EmailAnalysisResponse{
			Sender:    text,
			Subject:   text,
			KeyPoints: text,
			Sentiment: text,
		}, nil
	}

	return translated, nil
}

func inlineText(kind upstream.Kind, err error) string {
	if ue, ok := upstream.As(err); ok {
		return ue.Text()
	}
	return (&upstream.Error{Kind: kind, Err: err}).Text()
}
