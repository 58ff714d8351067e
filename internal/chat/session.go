package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/proqure/backend/internal/analysis"
	"github.com/proqure/backend/internal/intake"
	"github.com/proqure/backend/internal/metrics"
	"github.com/proqure/backend/internal/storage/models"
	"github.com/proqure/backend/pkg/logger"
)

var (
	ErrSessionNotFound = errors.New("chat: session not found")
	// ErrSubmissionInFlight rejects input while an evaluation is pending;
	// only one submission may be in flight per conversation.
	ErrSubmissionInFlight = errors.New("chat: evaluation already in progress")
	ErrEmptyMessage       = errors.New("chat: message is empty")
	ErrMessageTooLong     = errors.New("chat: message exceeds maximum length")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one user's intake conversation. It lives in an in-memory TTL
// store for the duration of a browser session; sessions of different users
// are fully independent.
type Session struct {
	ID       string
	OwnerID  string
	State    intake.State
	Messages []Message
	Result   *models.Report
	InFlight bool

	mu sync.Mutex
}

// Snapshot is what a handler returns to the client after processing input:
// the newly produced assistant messages plus conversation progress.
type Snapshot struct {
	SessionID      string           `json:"sessionId"`
	Messages       []Message        `json:"messages"`
	QuestionIndex  int              `json:"questionIndex"`
	TotalQuestions int              `json:"totalQuestions"`
	Collecting     bool             `json:"collecting"`
	Done           bool             `json:"done"`
	Summary        string           `json:"summary,omitempty"`
	Report         *models.Report   `json:"report,omitempty"`
}

// Analyzer runs the evaluation pipeline. Satisfied by *analysis.Service.
type Analyzer interface {
	Evaluate(ctx context.Context, ownerID string, req analysis.EvaluationRequest) (*analysis.EvaluationResult, error)
}

// DashboardInvalidator drops cached owner aggregates after a report is
// created. Satisfied by *dashboard.Service; may be nil.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, ownerID string)
}

type Service struct {
	sessions         *gocache.Cache
	analyzer         Analyzer
	dashboard        DashboardInvalidator
	sessionTTL       time.Duration
	maxMessageLength int
}

func NewService(analyzer Analyzer, dashboard DashboardInvalidator, sessionTTL, cleanupInterval time.Duration, maxMessageLength int) *Service {
	sessions := gocache.New(sessionTTL, cleanupInterval)
	sessions.OnEvicted(func(string, interface{}) {
		metrics.ActiveChatSessions.Dec()
	})

	return &Service{
		sessions:         sessions,
		analyzer:         analyzer,
		dashboard:        dashboard,
		sessionTTL:       sessionTTL,
		maxMessageLength: maxMessageLength,
	}
}

// Start creates a fresh conversation for the owner and returns the greeting.
func (s *Service) Start(ownerID string) *Snapshot {
	state, effects := intake.Initial()

	session := &Session{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		State:   state,
	}
	appendEffects(session, effects)

	s.sessions.Set(session.ID, session, s.sessionTTL)
	metrics.ActiveChatSessions.Inc()

	logger.Info("Chat session started", zap.String("session_id", session.ID))

	return snapshot(session, session.Messages)
}

// Handle feeds one user message through the intake machine. When the final
// answer completes the record, the evaluation pipeline runs synchronously
// before this returns; the session rejects concurrent input meanwhile.
func (s *Service) Handle(ctx context.Context, sessionID, ownerID, text string) (*Snapshot, error) {
	session, err := s.lookup(sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	// InFlight is observable by concurrent callers: submit releases the
	// mutex for the duration of the model call.
	if session.InFlight {
		return nil, ErrSubmissionInFlight
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if s.maxMessageLength > 0 && len(trimmed) > s.maxMessageLength {
		return nil, ErrMessageTooLong
	}

	session.Messages = append(session.Messages, Message{
		Role:      RoleUser,
		Content:   trimmed,
		Timestamp: time.Now(),
	})

	prevPhase := session.State.Phase
	firstNew := len(session.Messages)

	state, effects := intake.Advance(session.State, trimmed)
	session.State = state

	// A restart wipes the transcript back to the greeting.
	if prevPhase == intake.PhaseFreeChat && state.Phase == intake.PhaseCollecting {
		session.Messages = nil
		session.Result = nil
		firstNew = 0
	}

	for _, effect := range effects {
		switch e := effect.(type) {
		case intake.Say:
			session.Messages = append(session.Messages, Message{
				Role:      RoleAssistant,
				Content:   e.Text,
				Timestamp: time.Now(),
			})
		case intake.Submit:
			s.submit(ctx, session, e.Input)
		}
	}

	s.sessions.Set(session.ID, session, s.sessionTTL)

	return snapshot(session, session.Messages[firstNew:]), nil
}

// Get returns the full transcript and progress without advancing anything.
func (s *Service) Get(sessionID, ownerID string) (*Snapshot, error) {
	session, err := s.lookup(sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.InFlight {
		return nil, ErrSubmissionInFlight
	}

	return snapshot(session, session.Messages), nil
}

// submit runs the evaluation pipeline for a completed record. Called with
// session.mu held; the mutex is released for the duration of the model call
// so concurrent Handle/Get see InFlight and reject with
// ErrSubmissionInFlight, and re-acquired to settle.
func (s *Service) submit(ctx context.Context, session *Session, input intake.EvaluationInput) {
	session.InFlight = true
	session.mu.Unlock()

	result, err := s.analyzer.Evaluate(ctx, session.OwnerID, analysis.EvaluationRequest{
		SupplierName: input.SupplierName,
		Industry:     input.Industry,
		Responses:    input.Responses,
	})

	session.mu.Lock()
	session.InFlight = false

	var state intake.State
	var effects []intake.Effect

	if err != nil {
		logger.Warn("Evaluation failed in chat session",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		state, effects = intake.SettleFailure(session.State, analysis.UserMessage(err))
	} else {
		session.Result = result.Report
		state, effects = intake.SettleSuccess(session.State, result.Summary)
		if s.dashboard != nil {
			s.dashboard.Invalidate(ctx, session.OwnerID)
		}
	}

	session.State = state
	appendEffects(session, effects)
}

func (s *Service) lookup(sessionID, ownerID string) (*Session, error) {
	entry, found := s.sessions.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}

	session := entry.(*Session)
	if session.OwnerID != ownerID {
		// Foreign sessions are indistinguishable from missing ones.
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func appendEffects(session *Session, effects []intake.Effect) {
	for _, effect := range effects {
		if say, ok := effect.(intake.Say); ok {
			session.Messages = append(session.Messages, Message{
				Role:      RoleAssistant,
				Content:   say.Text,
				Timestamp: time.Now(),
			})
		}
	}
}

func snapshot(session *Session, newMessages []Message) *Snapshot {
	snap := &Snapshot{
		SessionID:      session.ID,
		Messages:       newMessages,
		QuestionIndex:  session.State.QuestionIndex,
		TotalQuestions: len(intake.Fields),
		Collecting:     session.State.Phase == intake.PhaseCollecting,
		Done:           session.Result != nil,
		Report:         session.Result,
	}
	if session.Result != nil {
		snap.Summary = analysis.Summarize(&session.Result.AIOutput)
	}
	return snap
}
