package advisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbility/taxassist/internal/docstore"
	"github.com/kbility/taxassist/internal/document"
)

type fakeCompleter struct {
	reply   string
	err     error
	calls   int
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func newTestAdvisor(llm ChatCompleter) (*Advisor, *docstore.Store) {
	store := docstore.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(llm, "gpt-4o-mini", store, nil, log), store
}

func wages(v float64) *float64 { return &v }

func cacheW2(store *docstore.Store, recipient string) {
	store.Add(document.TaxDocument{
		DocumentType:           document.TypeW2,
		RecipientName:          recipient,
		WagesBox1:              wages(50000),
		FederalTaxWithheldBox2: wages(6000),
	})
}

func TestDocumentChat_NoDocuments(t *testing.T) {
	llm := &fakeCompleter{}
	a, _ := newTestAdvisor(llm)

	answer, err := a.DocumentChat(context.Background(), "Jane Doe", "What were my wages?")
	if err != nil {
		t.Fatalf("DocumentChat failed: %v", err)
	}
	if answer != NoDocumentsNotice {
		t.Errorf("expected upload notice, got %q", answer)
	}
	if llm.calls != 0 {
		t.Errorf("expected no model call, got %d", llm.calls)
	}
}

func TestDocumentChat_GroundsSystemPrompt(t *testing.T) {
	llm := &fakeCompleter{reply: "Your box 1 wages were $50000.00."}
	a, store := newTestAdvisor(llm)
	cacheW2(store, "Jane Doe")

	answer, err := a.DocumentChat(context.Background(), "Jane Doe", "What were my wages?")
	if err != nil {
		t.Fatalf("DocumentChat failed: %v", err)
	}
	if answer != llm.reply {
		t.Errorf("unexpected answer %q", answer)
	}

	system := llm.lastReq.Messages[0]
	if system.Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected leading system message, got role %q", system.Role)
	}
	if !strings.Contains(system.Content, "Jane Doe") {
		t.Error("system prompt missing recipient name")
	}
	if !strings.Contains(system.Content, "Total Income: $50000.00") {
		t.Error("system prompt missing income total")
	}
}

func TestDocumentChat_RecipientFallback(t *testing.T) {
	llm := &fakeCompleter{reply: "ok"}
	a, store := newTestAdvisor(llm)
	cacheW2(store, "John Roe")

	for _, recipient := range []string{"", "undefined"} {
		if _, err := a.DocumentChat(context.Background(), recipient, "hi"); err != nil {
			t.Fatalf("DocumentChat(%q) failed: %v", recipient, err)
		}
		if !strings.Contains(llm.lastReq.Messages[0].Content, "John Roe") {
			t.Errorf("recipient %q did not fall back to first cached", recipient)
		}
	}
}

func TestDocumentChat_HistoryGrows(t *testing.T) {
	llm := &fakeCompleter{reply: "noted"}
	a, store := newTestAdvisor(llm)
	cacheW2(store, "Jane Doe")

	ctx := context.Background()
	if _, err := a.DocumentChat(ctx, "Jane Doe", "I am single."); err != nil {
		t.Fatal(err)
	}
	if _, err := a.DocumentChat(ctx, "Jane Doe", "No dependents."); err != nil {
		t.Fatal(err)
	}

	// system + 2 prior turns + new user message
	if got := len(llm.lastReq.Messages); got != 4 {
		t.Errorf("expected 4 messages in second request, got %d", got)
	}
}

func TestDocumentChat_TransportErrorNotRecorded(t *testing.T) {
	llm := &fakeCompleter{err: fmt.Errorf("model unavailable")}
	a, store := newTestAdvisor(llm)
	cacheW2(store, "Jane Doe")

	if _, err := a.DocumentChat(context.Background(), "Jane Doe", "hi"); err == nil {
		t.Fatal("expected error")
	}
	if a.mem.Len("Jane Doe") != 0 {
		t.Error("failed exchange must not be remembered")
	}
}

func TestDocumentSummary_Sentinels(t *testing.T) {
	llm := &fakeCompleter{reply: "unused"}
	a, store := newTestAdvisor(llm)

	// No documents at all.
	got, err := a.DocumentSummary(context.Background(), "Jane Doe")
	if err != nil {
		t.Fatal(err)
	}
	if got != NoDocumentsSummaryError {
		t.Errorf("expected %q, got %q", NoDocumentsSummaryError, got)
	}

	// Documents but no conversation yet.
	cacheW2(store, "Jane Doe")
	got, err = a.DocumentSummary(context.Background(), "Jane Doe")
	if err != nil {
		t.Fatal(err)
	}
	if got != EmptyDocumentSummaryError {
		t.Errorf("expected %q, got %q", EmptyDocumentSummaryError, got)
	}
	if llm.calls != 0 {
		t.Errorf("sentinel paths must not call the model, got %d calls", llm.calls)
	}
}

func TestDocumentSummary_AfterConversation(t *testing.T) {
	llm := &fakeCompleter{reply: "Filing status: single"}
	a, store := newTestAdvisor(llm)
	cacheW2(store, "Jane Doe")

	ctx := context.Background()
	if _, err := a.DocumentChat(ctx, "Jane Doe", "I am single."); err != nil {
		t.Fatal(err)
	}

	summary, err := a.DocumentSummary(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("DocumentSummary failed: %v", err)
	}
	if summary != "Filing status: single" {
		t.Errorf("unexpected summary %q", summary)
	}
	last := llm.lastReq.Messages[len(llm.lastReq.Messages)-1]
	if !strings.Contains(last.Content, "intake summary narrative") {
		t.Error("summary request missing summary prompt")
	}
}

func TestGeneralChatAndSummary(t *testing.T) {
	llm := &fakeCompleter{reply: "Hello Jane!"}
	a, _ := newTestAdvisor(llm)

	ctx := context.Background()
	summary, err := a.GeneralSummary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary != EmptyGeneralSummaryError {
		t.Errorf("expected %q, got %q", EmptyGeneralSummaryError, summary)
	}

	if _, err := a.GeneralChat(ctx, "My name is Jane."); err != nil {
		t.Fatal(err)
	}
	llm.reply = "The client, Jane, reported..."
	summary, err = a.GeneralSummary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary != "The client, Jane, reported..." {
		t.Errorf("unexpected summary %q", summary)
	}
}

func TestClearMemory(t *testing.T) {
	llm := &fakeCompleter{reply: "ok"}
	a, store := newTestAdvisor(llm)
	cacheW2(store, "Jane Doe")

	ctx := context.Background()
	if _, err := a.DocumentChat(ctx, "Jane Doe", "hi"); err != nil {
		t.Fatal(err)
	}
	a.ClearMemory()
	if a.mem.Len("Jane Doe") != 0 {
		t.Error("expected empty memory after ClearMemory")
	}
}
