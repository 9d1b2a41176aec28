// Package usecases contains the client-side workflows built on the AskIt
// contracts. They depend only on port interfaces.
package usecases

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

// DefaultMaxTurns bounds the exchanges kept as history.
const DefaultMaxTurns = 10

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// ChatOptions configures a ChatSession.
type ChatOptions struct {
	TopK     entities.Optional[int]
	MaxTurns int // question/answer exchanges kept; <= 0 means DefaultMaxTurns
}

// ChatSession carries conversation history across queries for one
// department. Calls are serialized.
type ChatSession struct {
	api          ports.QueryAPI
	departmentID int
	topK         entities.Optional[int]
	maxTurns     int

	mu      sync.Mutex
	history []entities.ChatTurn
}

// NewChatSession creates an empty session.
func NewChatSession(api ports.QueryAPI, departmentID int, opts ChatOptions) *ChatSession {
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	return &ChatSession{
		api:          api,
		departmentID: departmentID,
		topK:         opts.TopK,
		maxTurns:     opts.MaxTurns,
	}
}

// Ask sends question with the history so far. History is absent on the
// first question. It is only extended when the query succeeds.
func (s *ChatSession) Ask(ctx context.Context, question string) (*entities.QueryResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := entities.QueryRequest{
		Question:     question,
		DepartmentID: s.departmentID,
		TopK:         s.topK,
	}
	if len(s.history) > 0 {
		req.History = entities.Some(append([]entities.ChatTurn(nil), s.history...))
	}

	resp, err := s.api.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	s.history = append(s.history,
		entities.ChatTurn{Role: entities.RoleUser, Content: question},
		entities.ChatTurn{Role: entities.RoleAssistant, Content: resp.Answer},
	)
	if limit := 2 * s.maxTurns; len(s.history) > limit {
		s.history = append([]entities.ChatTurn(nil), s.history[len(s.history)-limit:]...)
	}
	return resp, nil
}

// History returns a copy of the history in chronological order.
func (s *ChatSession) History() []entities.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.ChatTurn(nil), s.history...)
}

// Reset clears the history.
func (s *ChatSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
