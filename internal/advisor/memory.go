package advisor

import (
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Memory holds per-conversation chat history. Conversations are keyed by
// recipient name for document-bound chat and by a fixed id for general chat.
type Memory struct {
	mu    sync.Mutex
	conv  map[string][]openai.ChatCompletionMessage
	limit int
}

func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 100
	}
	return &Memory{
		conv:  make(map[string][]openai.ChatCompletionMessage),
		limit: limit,
	}
}

// Append records messages for a conversation, keeping at most limit entries.
func (m *Memory) Append(id string, msgs ...openai.ChatCompletionMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hist := append(m.conv[id], msgs...)
	if len(hist) > m.limit {
		hist = hist[len(hist)-m.limit:]
	}
	m.conv[id] = hist
}

// History returns a copy of the conversation's messages.
func (m *Memory) History(id string) []openai.ChatCompletionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	hist := m.conv[id]
	out := make([]openai.ChatCompletionMessage, len(hist))
	copy(out, hist)
	return out
}

// Len returns how many messages a conversation holds.
func (m *Memory) Len(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conv[id])
}

// Clear forgets one conversation.
func (m *Memory) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conv, id)
}

// ClearAll forgets every conversation.
func (m *Memory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conv = make(map[string][]openai.ChatCompletionMessage)
}
