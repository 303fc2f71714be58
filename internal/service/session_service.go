package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loan-assist-be/internal/constant"
	"loan-assist-be/internal/dto"
	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/pkg/logger"
	"loan-assist-be/internal/pkg/serverutils"
	"loan-assist-be/internal/repository/contract"
	"loan-assist-be/internal/repository/memory"
	"loan-assist-be/internal/repository/specification"
	"loan-assist-be/pkg/document"
	"loan-assist-be/pkg/events"
	"loan-assist-be/pkg/metrics"
	"loan-assist-be/pkg/prompt"
	"loan-assist-be/pkg/store"

	"golang.org/x/sync/singleflight"
)

var ErrContextNotInitialized = errors.New("session context not initialized")

const eventPublishTimeout = 5 * time.Second

type ISessionService interface {
	InitializeContext(ctx context.Context, req *dto.InitializeContextRequest) (*dto.InitializeContextResponse, error)
	Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
	Answer(ctx context.Context, sessionID, question string) (string, error)
	GetContext(ctx context.Context, sessionID string) (*dto.SessionContextResponse, error)
	EndSession(ctx context.Context, sessionID string) (*dto.EndSessionResponse, error)
}

type DocumentFetcher interface {
	FetchAll(ctx context.Context, sources []document.Source) []store.DocumentRef
}

type DocumentSummarizer interface {
	SummarizeAll(ctx context.Context, loanName string, docs []store.DocumentRef) []store.DocumentSummary
}

type AnswerResponder interface {
	Respond(ctx context.Context, loanName string, assembled prompt.Result) string
}

// SessionTeardown closes a session's realtime channel and drops its context.
type SessionTeardown interface {
	EndSession(sessionID string)
}

type SessionServiceDeps struct {
	Repository contract.LoanSessionRepository // nil when no database is configured
	Contexts   *memory.ContextStore
	Fetcher    DocumentFetcher
	Summarizer DocumentSummarizer
	Responder  AnswerResponder
	Persister  ConversationPersister // nil disables persistence
	Publisher  events.Publisher      // nil disables lifecycle events
	Teardown   SessionTeardown
	Logger     logger.ILogger
}

type sessionService struct {
	repo       contract.LoanSessionRepository
	contexts   *memory.ContextStore
	fetcher    DocumentFetcher
	summarizer DocumentSummarizer
	responder  AnswerResponder
	persister  ConversationPersister
	publisher  events.Publisher
	teardown   SessionTeardown
	logger     logger.ILogger

	initGroup singleflight.Group
}

func NewSessionService(deps SessionServiceDeps) ISessionService {
	return &sessionService{
		repo:       deps.Repository,
		contexts:   deps.Contexts,
		fetcher:    deps.Fetcher,
		summarizer: deps.Summarizer,
		responder:  deps.Responder,
		persister:  deps.Persister,
		publisher:  deps.Publisher,
		teardown:   deps.Teardown,
		logger:     deps.Logger,
	}
}

func (s *sessionService) InitializeContext(ctx context.Context, req *dto.InitializeContextRequest) (*dto.InitializeContextResponse, error) {
	if sc, ok := s.contexts.Get(req.SessionId); ok {
		return s.toInitializeResponse(sc, "Context already initialized"), nil
	}

	// Concurrent calls for one session share a single fetch and summarize pass.
	v, err, _ := s.initGroup.Do(req.SessionId, func() (interface{}, error) {
		if sc, ok := s.contexts.Get(req.SessionId); ok {
			return sc, nil
		}
		return s.initialize(context.WithoutCancel(ctx), req)
	})
	if err != nil {
		metrics.ContextInitTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	return s.toInitializeResponse(v.(*store.SessionContext), "Context initialized successfully"), nil
}

func (s *sessionService) initialize(ctx context.Context, req *dto.InitializeContextRequest) (*store.SessionContext, error) {
	started := time.Now()

	row, err := s.loadRow(ctx, req.SessionId, req.UserId)
	if err != nil {
		return nil, err
	}

	sources := make([]document.Source, 0, len(row.Documents))
	for _, d := range row.Documents {
		sources = append(sources, document.Source{
			Filename:    d.Filename,
			Bucket:      d.Bucket,
			ObjectPath:  d.ObjectPath,
			ContentType: d.ContentType,
		})
	}

	sc := newContextFromRow(row)
	sc.Documents = s.fetcher.FetchAll(ctx, sources)
	sc.DocumentSummaries = s.summarizer.SummarizeAll(ctx, sc.LoanName, sc.Documents)

	s.contexts.Set(sc)

	elapsed := time.Since(started)
	metrics.ContextInitDuration.Observe(elapsed.Seconds())
	metrics.ContextInitTotal.WithLabelValues("success").Inc()
	s.logger.Info("SessionService", "Session context initialized", map[string]interface{}{
		"session_id":          sc.SessionID,
		"document_count":      len(sc.Documents),
		"documents_processed": sc.ProcessedSummaries(),
		"duration_ms":         elapsed.Milliseconds(),
	})

	s.emit(events.NewSessionEvent(constant.EventSessionContextInitialized, sc.SessionID, map[string]interface{}{
		"user_id":        sc.UserID,
		"loan_name":      sc.LoanName,
		"document_count": len(sc.Documents),
	}))

	return sc, nil
}

// loadRow reads the session row, scoped to userID when one is given.
func (s *sessionService) loadRow(ctx context.Context, sessionID, userID string) (*entity.LoanSession, error) {
	if s.repo == nil {
		return nil, serverutils.NewConfigurationError("Session store is not configured", nil)
	}

	row, err := s.repo.FindOne(ctx,
		specification.ByID{ID: sessionID},
		specification.UserOwnedBy{UserID: userID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if row == nil {
		return nil, serverutils.NewNotFoundError("Session not found")
	}
	return row, nil
}

func newContextFromRow(row *entity.LoanSession) *store.SessionContext {
	history := make([]store.Turn, 0, len(row.Conversations))
	for _, t := range row.Conversations {
		history = append(history, store.Turn{Role: t.Role, Message: t.Message, Timestamp: t.Timestamp})
	}

	sc := store.NewSessionContext(row.Id, history)
	sc.UserID = row.UserId
	sc.LoanName = row.LoanName
	sc.UserRole = row.UserRole
	sc.Institution = row.Institution
	sc.AIFocus = row.AiFocus
	sc.Language = row.Language
	sc.Region = row.Region
	return sc
}

func (s *sessionService) Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	question := strings.TrimSpace(req.Question)

	sc, ok := s.contexts.Get(req.SessionId)
	if !ok {
		// Voice agents may call before the context is initialized. Answer from the row's
		// metadata and history alone, without caching anything.
		row, err := s.loadRow(ctx, req.SessionId, "")
		if err != nil {
			return nil, err
		}
		sc = newContextFromRow(row)
		s.logger.Info("SessionService", "Answering from uncached session row", map[string]interface{}{"session_id": req.SessionId})
	}

	answer := s.answer(ctx, sc, question, constant.ChannelHTTP)

	return &dto.QueryResponse{
		Success:   true,
		Answer:    answer,
		SessionId: req.SessionId,
	}, nil
}

// Answer serves questions arriving over the realtime channel.
func (s *sessionService) Answer(ctx context.Context, sessionID, question string) (string, error) {
	sc, ok := s.contexts.Get(sessionID)
	if !ok {
		return "", ErrContextNotInitialized
	}
	return s.answer(ctx, sc, question, constant.ChannelRealtime), nil
}

func (s *sessionService) answer(ctx context.Context, sc *store.SessionContext, question, channel string) string {
	askedAt := time.Now().UTC()

	assembled := prompt.Assemble(sc, question)
	answer := s.responder.Respond(ctx, sc.LoanName, assembled)

	sc.AppendExchange(question, answer, askedAt, time.Now().UTC())
	s.persist(ctx, sc)

	metrics.QuestionsTotal.WithLabelValues(channel).Inc()
	s.emit(events.NewSessionEvent(constant.EventSessionQuestionAnswered, sc.SessionID, map[string]interface{}{
		"channel":            channel,
		"conversation_count": sc.ConversationCount(),
	}))

	return answer
}

// persist mirrors the conversation log to the row store. Failures never reach the caller.
func (s *sessionService) persist(ctx context.Context, sc *store.SessionContext) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Persist(ctx, sc.SessionID, sc.Conversations()); err != nil {
		s.logger.Warn("SessionService", "Failed to queue conversation flush", map[string]interface{}{
			"session_id": sc.SessionID,
			"error":      err,
		})
	}
}

func (s *sessionService) GetContext(ctx context.Context, sessionID string) (*dto.SessionContextResponse, error) {
	sc, ok := s.contexts.Get(sessionID)
	if !ok {
		return nil, serverutils.NewNotFoundError("Session context not found")
	}

	docs := make([]dto.DocumentInfoDTO, 0, len(sc.Documents))
	for _, d := range sc.Documents {
		docs = append(docs, dto.DocumentInfoDTO{
			Filename:    d.Filename,
			ContentType: d.ContentType,
			Attached:    d.IsReference(),
			HasContent:  d.Content != "",
		})
	}

	turns := sc.Conversations()
	conversations := make([]dto.TurnDTO, 0, len(turns))
	for _, t := range turns {
		conversations = append(conversations, dto.TurnDTO{Role: t.Role, Message: t.Message, Timestamp: t.Timestamp})
	}

	return &dto.SessionContextResponse{
		SessionId:         sc.SessionID,
		UserId:            sc.UserID,
		LoanName:          sc.LoanName,
		UserRole:          sc.UserRole,
		Institution:       sc.Institution,
		AiFocus:           sc.AIFocus,
		Language:          sc.Language,
		Region:            sc.Region,
		Documents:         docs,
		DocumentSummaries: toSummaryDTOs(sc.DocumentSummaries),
		Conversations:     conversations,
		ConversationCount: len(turns),
	}, nil
}

func (s *sessionService) EndSession(ctx context.Context, sessionID string) (*dto.EndSessionResponse, error) {
	if s.repo != nil {
		if err := s.repo.MarkCompleted(ctx, sessionID, time.Now().UTC()); err != nil {
			s.logger.Warn("SessionService", "Failed to mark session completed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err,
			})
		}
	}

	s.teardown.EndSession(sessionID)
	s.emit(events.NewSessionEvent(constant.EventSessionEnded, sessionID, nil))

	return &dto.EndSessionResponse{
		Success:   true,
		Message:   "Session ended",
		SessionId: sessionID,
	}, nil
}

// emit publishes a lifecycle event in the background.
func (s *sessionService) emit(evt events.Event) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("SessionService", "Failed to publish event", map[string]interface{}{
				"event": evt.EventType(),
				"error": err,
			})
		}
	}()
}

func (s *sessionService) toInitializeResponse(sc *store.SessionContext, message string) *dto.InitializeContextResponse {
	return &dto.InitializeContextResponse{
		Success: true,
		Message: message,
		ContextSummary: dto.ContextSummary{
			LoanName:           sc.LoanName,
			UserRole:           sc.UserRole,
			DocumentCount:      len(sc.Documents),
			Region:             sc.Region,
			DocumentsProcessed: sc.ProcessedSummaries(),
			DocumentSummaries:  toSummaryDTOs(sc.DocumentSummaries),
		},
	}
}

func toSummaryDTOs(summaries []store.DocumentSummary) []dto.DocumentSummaryDTO {
	out := make([]dto.DocumentSummaryDTO, 0, len(summaries))
	for _, sm := range summaries {
		out = append(out, dto.DocumentSummaryDTO{Filename: sm.Filename, Summary: sm.Summary, Processed: sm.Processed})
	}
	return out
}
