package service

import (
	"context"
	"sync"
	"time"

	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/repository/specification"
	"loan-assist-be/pkg/document"
	"loan-assist-be/pkg/events"
	"loan-assist-be/pkg/llm"
	"loan-assist-be/pkg/prompt"
	"loan-assist-be/pkg/store"
)

type fakeRepo struct {
	mu        sync.Mutex
	rows      map[string]*entity.LoanSession
	findErr   error
	markErr   error
	finds     int
	completed []string
	updates   map[string][]entity.ConversationTurn
	updateErr error
}

func newFakeRepo(rows ...*entity.LoanSession) *fakeRepo {
	r := &fakeRepo{rows: map[string]*entity.LoanSession{}, updates: map[string][]entity.ConversationTurn{}}
	for _, row := range rows {
		r.rows[row.Id] = row
	}
	return r
}

func (r *fakeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LoanSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}

	var id, userID string
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id = s.ID
		case specification.UserOwnedBy:
			userID = s.UserID
		}
	}
	row, ok := r.rows[id]
	if !ok || (userID != "" && row.UserId != userID) {
		return nil, nil
	}
	return row, nil
}

func (r *fakeRepo) UpdateConversations(ctx context.Context, id string, turns []entity.ConversationTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates[id] = turns
	return nil
}

func (r *fakeRepo) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, id)
	return r.markErr
}

type countingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) FetchAll(ctx context.Context, sources []document.Source) []store.DocumentRef {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	// widen the window for overlapping initializations
	time.Sleep(20 * time.Millisecond)

	docs := make([]store.DocumentRef, 0, len(sources))
	for _, s := range sources {
		if document.IsLargeBinary(s.ObjectPath) {
			docs = append(docs, store.DocumentRef{Filename: s.Filename, Content: document.Reference(s.Bucket, s.ObjectPath), ContentType: s.ContentType, Reference: true})
			continue
		}
		docs = append(docs, store.DocumentRef{Filename: s.Filename, Content: "Inline text for " + s.Filename, ContentType: s.ContentType})
	}
	return docs
}

type countingSummarizer struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSummarizer) SummarizeAll(ctx context.Context, loanName string, docs []store.DocumentRef) []store.DocumentSummary {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	out := make([]store.DocumentSummary, 0, len(docs))
	for i, d := range docs {
		out = append(out, store.DocumentSummary{Filename: d.Filename, Summary: "summary of " + d.Filename, Processed: i == 0})
	}
	return out
}

type recordingResponder struct {
	mu      sync.Mutex
	prompts []prompt.Result
}

func (r *recordingResponder) Respond(ctx context.Context, loanName string, assembled prompt.Result) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, assembled)
	return "answer for " + loanName
}

type recordingPersister struct {
	mu    sync.Mutex
	calls map[string][]store.Turn
	err   error
}

func (p *recordingPersister) Persist(ctx context.Context, sessionID string, turns []store.Turn) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[string][]store.Turn{}
	}
	p.calls[sessionID] = turns
	return p.err
}

type recordingTeardown struct {
	ended []string
}

func (t *recordingTeardown) EndSession(sessionID string) {
	t.ended = append(t.ended, sessionID)
}

type recordingPublisher struct {
	events chan events.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan events.Event, 32)}
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.events <- evt
	return nil
}

type stubProvider struct {
	answer string
	err    error
	prompt string
	opts   *llm.Options
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (s *stubProvider) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	s.prompt = p
	s.opts = llm.ApplyOptions(llm.Options{}, opts...)
	return s.answer, s.err
}
