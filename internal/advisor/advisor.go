// Package advisor implements the conversational tax services: document-bound
// chat scoped to one recipient's extracted forms, general intake chat, and
// summary generation over either conversation.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbility/taxassist/internal/docstore"
	"github.com/kbility/taxassist/internal/document"
	"github.com/kbility/taxassist/internal/extract"
)

// GeneralConversationID keys the single general-chat conversation.
const GeneralConversationID = "general-tax-chat"

// User-facing notices. Summary refusals carry the ERROR: sentinel so the
// client can tell a domain refusal from a transport failure.
const (
	NoDocumentsNotice         = "Please upload tax documents first to start the conversation."
	NoDocumentsSummaryError   = "ERROR: Please upload tax documents first."
	EmptyDocumentSummaryError = "ERROR: Please answer the tax advisor questions before generating a summary."
	EmptyGeneralSummaryError  = "ERROR: Please answer some questions before generating a summary."
)

// ChatCompleter is the slice of the OpenAI client the advisor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Advisor runs conversations against a chat model with in-memory history.
type Advisor struct {
	llm   ChatCompleter
	model string
	store *docstore.Store
	mem   *Memory
	stats *extract.CallStats
	log   *slog.Logger
}

func New(llm ChatCompleter, model string, store *docstore.Store, stats *extract.CallStats, log *slog.Logger) *Advisor {
	return &Advisor{
		llm:   llm,
		model: model,
		store: store,
		mem:   NewMemory(100),
		stats: stats,
		log:   log,
	}
}

// DocumentChat answers a question in the conversation bound to one
// recipient's documents. An absent or unknown recipient falls back to the
// first cached one; with nothing cached the advisor asks for an upload.
func (a *Advisor) DocumentChat(ctx context.Context, recipient, question string) (string, error) {
	recipient, docs, ok := a.resolve(recipient)
	if !ok {
		return NoDocumentsNotice, nil
	}

	answer, err := a.complete(ctx, extract.OpChat,
		documentSystemPrompt(recipient, docs), a.mem.History(recipient), question)
	if err != nil {
		return "", fmt.Errorf("document chat for %q: %w", recipient, err)
	}

	a.mem.Append(recipient,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
	)
	return answer, nil
}

// GeneralChat answers a question in the shared general-tax conversation.
func (a *Advisor) GeneralChat(ctx context.Context, question string) (string, error) {
	answer, err := a.complete(ctx, extract.OpChat,
		generalSystemPrompt, a.mem.History(GeneralConversationID), question)
	if err != nil {
		return "", fmt.Errorf("general chat: %w", err)
	}

	a.mem.Append(GeneralConversationID,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
	)
	return answer, nil
}

// DocumentSummary produces the intake summary for a recipient's
// conversation. Refusals are returned as ERROR:-sentinel strings, not
// errors.
func (a *Advisor) DocumentSummary(ctx context.Context, recipient string) (string, error) {
	recipient, docs, ok := a.resolve(recipient)
	if !ok {
		return NoDocumentsSummaryError, nil
	}
	if a.mem.Len(recipient) == 0 {
		a.log.Warn("summary requested with no conversation", "recipient", recipient)
		return EmptyDocumentSummaryError, nil
	}

	summary, err := a.complete(ctx, extract.OpSummary,
		"", a.mem.History(recipient), documentSummaryPrompt(docs))
	if err != nil {
		return "", fmt.Errorf("document summary for %q: %w", recipient, err)
	}
	return summary, nil
}

// GeneralSummary produces the intake summary for the general conversation.
func (a *Advisor) GeneralSummary(ctx context.Context) (string, error) {
	if a.mem.Len(GeneralConversationID) == 0 {
		return EmptyGeneralSummaryError, nil
	}

	summary, err := a.complete(ctx, extract.OpSummary,
		"", a.mem.History(GeneralConversationID), generalSummaryPrompt)
	if err != nil {
		return "", fmt.Errorf("general summary: %w", err)
	}
	return summary, nil
}

// ClearMemory forgets all conversations. Called when a new document set is
// uploaded so stale intake answers never leak into a new session.
func (a *Advisor) ClearMemory() {
	a.mem.ClearAll()
}

// resolve maps an incoming recipient identifier to a cached document set,
// falling back to the first cached recipient.
func (a *Advisor) resolve(recipient string) (string, []document.TaxDocument, bool) {
	if recipient == "" || recipient == "undefined" {
		first, ok := a.store.First()
		if !ok {
			return "", nil, false
		}
		a.log.Info("recipient not given, using first cached", "recipient", first)
		recipient = first
	}
	docs := a.store.Get(recipient)
	if len(docs) == 0 {
		return recipient, nil, false
	}
	return recipient, docs, true
}

func (a *Advisor) complete(ctx context.Context, op, system string, history []openai.ChatCompletionMessage, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, history...)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})

	start := time.Now()
	resp, err := a.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	a.stats.Record(op, time.Since(start))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
