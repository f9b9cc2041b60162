package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Message roles in a chat transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GeneralOwnerKey scopes the conversation that is not bound to any
// extracted document.
const GeneralOwnerKey = "general"

// ChatFailureNotice replaces raw transport errors in the transcript.
const ChatFailureNotice = "Sorry, there was an error processing your message."

// errorSentinel marks a well-formed summary response that carries a
// domain-level refusal instead of a summary body.
const errorSentinel = "ERROR:"

var (
	ErrBusy           = errors.New("a request is already in flight")
	ErrBlank          = errors.New("message is empty")
	ErrNoConversation = errors.New("ask a question before generating a summary")
)

// Message is one entry in a chat transcript. Summary marks messages that
// hold a generated summary rather than a conversational answer.
type Message struct {
	Role    string
	Content string
	Summary bool
}

// ChatSession is a conversational state machine bound either to one
// extracted document (recipient non-empty) or to the general tax chat.
// At most one request is in flight at a time; concurrent submissions are
// rejected locally without a network round trip.
type ChatSession struct {
	mu        sync.Mutex
	transport Transport
	recipient string
	signal    *SummarySignal
	messages  []Message
	artifact  string
	pending   bool
	lastReq   string
	cancel    context.CancelFunc
}

// NewChatSession creates a session. An empty recipient selects the general
// conversation; a non-empty one scopes questions and summaries to that
// document's subject.
func NewChatSession(t Transport, recipient string, signal *SummarySignal) *ChatSession {
	return &ChatSession{transport: t, recipient: recipient, signal: signal}
}

// OwnerKey identifies the conversation for summary lookups.
func (s *ChatSession) OwnerKey() string {
	if s.recipient == "" {
		return GeneralOwnerKey
	}
	return s.recipient
}

// Messages returns a copy of the transcript.
func (s *ChatSession) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Pending reports whether a request is in flight.
func (s *ChatSession) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Artifact returns the most recently generated summary, or "".
func (s *ChatSession) Artifact() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// Send submits one user message. The user message is appended to the
// transcript before the network call; the assistant reply (or a generic
// failure notice) is appended when the call resolves. Blank input returns
// ErrBlank and an in-flight request returns ErrBusy, both without touching
// the network.
func (s *ChatSession) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrBlank
	}

	reqID, cctx, err := s.begin(ctx, Message{Role: RoleUser, Content: text})
	if err != nil {
		return err
	}

	var answer string
	if s.recipient != "" {
		answer, err = s.transport.Analyze(cctx, s.recipient, text)
	} else {
		answer, err = s.transport.GeneralChat(cctx, text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolveLocked(reqID) {
		return nil
	}
	if err != nil {
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: ChatFailureNotice})
		return nil
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: answer})
	return nil
}

// RequestSummary generates a summary of the conversation so far. It
// requires at least one prior user message (ErrNoConversation otherwise,
// with no network call). A sentinel-error response is returned as a
// user-facing warning and leaves the transcript unchanged; a real summary
// is appended as a Summary-flagged message, stored as the artifact, and —
// for document-bound sessions — raises the notes-panel signal.
func (s *ChatSession) RequestSummary(ctx context.Context) (warning string, err error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return "", ErrBusy
	}
	if !s.hasUserMessageLocked() {
		s.mu.Unlock()
		return "", ErrNoConversation
	}
	s.mu.Unlock()

	reqID, cctx, err := s.begin(ctx)
	if err != nil {
		return "", err
	}

	var summary string
	if s.recipient != "" {
		summary, err = s.transport.Summary(cctx, s.recipient)
	} else {
		summary, err = s.transport.GeneralSummary(cctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resolveLocked(reqID) {
		return "", nil
	}
	if err != nil {
		s.messages = append(s.messages, Message{Role: RoleAssistant, Content: ChatFailureNotice})
		return "", nil
	}
	if strings.HasPrefix(summary, errorSentinel) {
		return strings.TrimSpace(strings.TrimPrefix(summary, errorSentinel)), nil
	}

	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: summary, Summary: true})
	s.artifact = summary
	if s.recipient != "" && s.signal != nil {
		s.signal.Raise()
	}
	return "", nil
}

// Abandon discards the session's in-flight request, if any. A response
// that arrives afterwards is dropped instead of mutating state the user
// has left behind.
func (s *ChatSession) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReq = ""
	s.pending = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// begin claims the in-flight slot and optionally appends messages first.
// The returned request ID correlates the eventual response with this call;
// a mismatch at resolution time means the session was abandoned.
func (s *ChatSession) begin(ctx context.Context, msgs ...Message) (string, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return "", nil, ErrBusy
	}
	s.pending = true
	s.lastReq = uuid.NewString()
	s.messages = append(s.messages, msgs...)
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.lastReq, cctx, nil
}

// resolveLocked finishes the request identified by reqID. It reports false
// when the response is stale and must be discarded.
func (s *ChatSession) resolveLocked(reqID string) bool {
	if s.lastReq != reqID {
		return false
	}
	s.pending = false
	s.lastReq = ""
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

func (s *ChatSession) hasUserMessageLocked() bool {
	for _, m := range s.messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}
