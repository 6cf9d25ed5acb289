package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ragstackgen/studyhub/internal/ai"
	"github.com/ragstackgen/studyhub/internal/common"
	"github.com/ragstackgen/studyhub/internal/retrieval"
	"gorm.io/gorm"
)

const systemPrompt = "You are a study assistant. Answer using the provided context " +
	"from the student's notes, analyzed GitHub repositories and placement questions " +
	"whenever it is relevant, and say so when it is not. Be concise and concrete."

const degradedReply = "I couldn't retrieve an answer right now. Please try again in a moment."

const defaultSessionTitle = "New Chat"

type Service struct {
	repo          *Repo
	provider      ai.Provider
	selector      *retrieval.Selector
	limits        retrieval.Limits
	historyWindow int
	historyChars  int

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(repo *Repo, provider ai.Provider, selector *retrieval.Selector, limits retrieval.Limits, historyWindow int) *Service {
	if historyWindow <= 0 || historyWindow > 100 {
		historyWindow = 20
	}
	return &Service{
		repo:          repo,
		provider:      provider,
		selector:      selector,
		limits:        limits,
		historyWindow: historyWindow,
		historyChars:  6000,
		locks:         make(map[string]*sessionLock),
	}
}

// lockSession serializes turns per session: a second message for the same
// session queues behind the in-flight one, so persisted order matches the
// order requests were accepted.
func (s *Service) lockSession(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

func (s *Service) CreateSession(ctx context.Context, userID uint64) (*Session, error) {
	sid, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	session := &Session{
		SessionID: sid,
		UserID:    userID,
		Title:     defaultSessionTitle,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	session.Messages = []Message{}
	return session, nil
}

// ListSessions returns the user's sessions with their messages, creating one
// implicitly when the user has none yet.
func (s *Service) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	sessions, err := s.repo.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		created, err := s.CreateSession(ctx, userID)
		if err != nil {
			return nil, err
		}
		return []Session{*created}, nil
	}
	for i := range sessions {
		msgs, err := s.repo.ListMessagesAsc(ctx, userID, sessions[i].SessionID)
		if err != nil {
			return nil, err
		}
		sessions[i].Messages = msgs
	}
	return sessions, nil
}

func (s *Service) DeleteSession(ctx context.Context, userID uint64, sessionID string) error {
	return s.repo.DeleteSession(ctx, userID, sessionID)
}

func (s *Service) DeleteAllSessions(ctx context.Context, userID uint64) error {
	return s.repo.DeleteAllSessionsByUser(ctx, userID)
}

func (s *Service) ownedSession(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	sess, err := s.repo.GetSessionBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		// hide existence of foreign sessions
		return nil, gorm.ErrRecordNotFound
	}
	return sess, nil
}

// SendMessage runs one chat turn: persist the user message, assemble the
// context bundle, call the model, persist the assistant reply with its
// citations. A model failure still leaves the user message in place and
// produces a persisted degraded reply instead of an error.
func (s *Service) SendMessage(ctx context.Context, userID uint64, sessionID string, text string) (*Message, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	userMsg := &Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      "user",
		Content:   text,
		Sources:   Sources{},
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	items := s.selector.Select(ctx, userID, text, s.limits)

	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, userID, sessionID, s.historyWindow)
	if err != nil {
		return nil, err
	}
	prompt := s.buildPrompt(items, recentDesc)

	// The model call survives a client disconnect: the reply is persisted
	// either way, so no turn is half-recorded.
	callCtx := context.WithoutCancel(ctx)

	assistantMsg := &Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      "assistant",
	}

	reply, err := s.provider.Chat(callCtx, prompt)
	switch {
	case err == nil:
		assistantMsg.Content = reply
		assistantMsg.Sources = snapshotSources(items)
	case errors.Is(err, ai.ErrAuthFailure):
		log.Printf("chat provider auth failure session=%s: credential rejected", sessionID)
		assistantMsg.Content = degradedReply
		assistantMsg.Sources = Sources{}
	default:
		log.Printf("chat provider failed session=%s err=%v", sessionID, err)
		assistantMsg.Content = degradedReply
		assistantMsg.Sources = Sources{}
	}

	if err := s.repo.InsertMessage(callCtx, assistantMsg); err != nil {
		return nil, err
	}
	return assistantMsg, nil
}

// buildPrompt assembles system instructions, the serialized context bundle
// and the most recent history (newest-first input, oldest-first output)
// within the history char budget.
func (s *Service) buildPrompt(items []retrieval.ContextItem, recentDesc []Message) []ai.Message {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	if len(items) > 0 {
		sb.WriteString("\n\nContext:\n")
		for _, it := range items {
			fmt.Fprintf(&sb, "[%s] %s\n%s\n\n", it.Kind, it.Title, it.Body)
		}
	}

	// walk newest -> oldest, stop once the budget is spent, then reverse
	kept := make([]Message, 0, len(recentDesc))
	used := 0
	for _, m := range recentDesc {
		if used+len(m.Content) > s.historyChars && len(kept) > 0 {
			break
		}
		used += len(m.Content)
		kept = append(kept, m)
	}

	out := make([]ai.Message, 0, len(kept)+1)
	out = append(out, ai.Message{Role: "system", Content: sb.String()})
	for i := len(kept) - 1; i >= 0; i-- {
		out = append(out, ai.Message{Role: kept[i].Role, Content: kept[i].Content})
	}
	return out
}

func snapshotSources(items []retrieval.ContextItem) Sources {
	out := make(Sources, 0, len(items))
	for _, it := range items {
		out = append(out, Source{Type: string(it.Kind), Title: it.Title})
	}
	return out
}
