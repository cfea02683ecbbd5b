package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lectern-ai/lectern/internal/agent"
	"github.com/lectern-ai/lectern/internal/ai"
	"github.com/lectern-ai/lectern/internal/model"
	appErr "github.com/lectern-ai/lectern/internal/pkg/errors"
	"github.com/lectern-ai/lectern/internal/search"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/tools"
)

var ErrAIUnavailable = ai.ErrUnavailable

type Answer struct {
	Answer    string         `json:"answer"`
	Sources   []model.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

type CorpusStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// RAGService answers questions about the indexed corpus. Each question gets
// its own capability registry so source tracking never crosses concurrent
// turns.
type RAGService struct {
	engine    *search.Engine
	generator *agent.Generator
	sessions  *session.Manager
	provider  ai.IProvider
	timeout   time.Duration
}

func NewRAGService(engine *search.Engine, generator *agent.Generator, sessions *session.Manager, provider ai.IProvider, timeoutSeconds int) *RAGService {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return &RAGService{
		engine:    engine,
		generator: generator,
		sessions:  sessions,
		provider:  provider,
		timeout:   time.Duration(timeoutSeconds) * time.Second,
	}
}

func (s *RAGService) AnswerQuestion(ctx context.Context, question, sessionID string) (*Answer, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return nil, appErr.ErrInvalid
	}
	if sessionID == "" {
		sessionID = s.sessions.Create()
	}

	registry, err := s.buildRegistry()
	if err != nil {
		return nil, err
	}
	history := s.sessions.HistorySummary(sessionID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	answer, err := s.generator.Answer(ctx, trimmed, history, registry)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			return nil, ErrAIUnavailable
		}
		logutil.GetLogger(ctx).Error("answer generation failed", zap.Error(err))
		return nil, err
	}

	sources := registry.LastSources()
	registry.ResetSources()
	s.sessions.AddExchange(sessionID, trimmed, answer)

	return &Answer{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

func (s *RAGService) buildRegistry() (*tools.Registry, error) {
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewSearchTool(s.engine)); err != nil {
		return nil, fmt.Errorf("register search tool: %w", err)
	}
	if err := registry.Register(tools.NewOutlineTool(s.engine)); err != nil {
		return nil, fmt.Errorf("register outline tool: %w", err)
	}
	return registry, nil
}

func (s *RAGService) GetCorpusStats(ctx context.Context) (*CorpusStats, error) {
	count, err := s.engine.CourseCount(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := s.engine.CourseTitles(ctx)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []string{}
	}
	return &CorpusStats{
		TotalCourses: count,
		CourseTitles: titles,
	}, nil
}

// ListModels enumerates the chat provider's available models when it
// supports listing; other providers yield an empty list.
func (s *RAGService) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	lister, ok := s.provider.(ai.IModelLister)
	if !ok {
		return []ai.ModelInfo{}, nil
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return models, nil
}
