package irssearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// fakeCompleter answers the validation model and the search model
// differently, keyed on the request's model name.
type fakeCompleter struct {
	verdict   string
	answer    string
	searchErr error
	calls     []string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls = append(f.calls, req.Model)
	if req.Model == "validator" {
		return respond(f.verdict), nil
	}
	if f.searchErr != nil {
		return openai.ChatCompletionResponse{}, f.searchErr
	}
	return respond(f.answer), nil
}

func respond(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}
}

func newService(llm ChatCompleter) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(llm, "searcher", "validator", nil, log)
}

func TestQuery_TaxRelated(t *testing.T) {
	llm := &fakeCompleter{verdict: "YES", answer: "The 2025 standard deduction is ..."}
	s := newService(llm)

	got := s.Query(context.Background(), "What is the 2025 standard deduction?")
	if got != llm.answer {
		t.Errorf("unexpected answer %q", got)
	}
	if len(llm.calls) != 2 || llm.calls[0] != "validator" || llm.calls[1] != "searcher" {
		t.Errorf("expected validation then search, got %v", llm.calls)
	}
}

func TestQuery_RejectsOffTopic(t *testing.T) {
	llm := &fakeCompleter{verdict: "NO"}
	s := newService(llm)

	got := s.Query(context.Background(), "Best pizza in town?")
	if got != RejectionNotice {
		t.Errorf("expected rejection notice, got %q", got)
	}
	if len(llm.calls) != 1 {
		t.Errorf("rejected question must not reach the search model, calls=%v", llm.calls)
	}
}

func TestQuery_ValidationFailsClosed(t *testing.T) {
	llm := &fakeCompleter{verdict: "I think yes, probably"}
	s := newService(llm)

	if got := s.Query(context.Background(), "anything"); got != RejectionNotice {
		t.Errorf("non-YES verdict must reject, got %q", got)
	}
}

func TestQuery_SearchFailureNotice(t *testing.T) {
	llm := &fakeCompleter{verdict: "YES", searchErr: fmt.Errorf("boom")}
	s := newService(llm)

	if got := s.Query(context.Background(), "2025 tax brackets?"); got != FailureNotice {
		t.Errorf("expected failure notice, got %q", got)
	}
}

func TestQuick_SkipsValidation(t *testing.T) {
	llm := &fakeCompleter{answer: "Deadlines are ..."}
	s := newService(llm)

	got := s.Quick(context.Background(), "filing-deadlines")
	if got != llm.answer {
		t.Errorf("unexpected answer %q", got)
	}
	for _, model := range llm.calls {
		if model == "validator" {
			t.Error("quick query must not hit the validation model")
		}
	}
}

func TestQuick_UnknownTopic(t *testing.T) {
	llm := &fakeCompleter{}
	s := newService(llm)

	if got := s.Quick(context.Background(), "horoscope"); got != FailureNotice {
		t.Errorf("expected failure notice, got %q", got)
	}
	if len(llm.calls) != 0 {
		t.Errorf("unknown topic must not call any model, calls=%v", llm.calls)
	}
}

func TestTopics(t *testing.T) {
	for _, topic := range Topics() {
		if !IsTopic(topic) {
			t.Errorf("Topics() returned unknown topic %q", topic)
		}
	}
	if IsTopic("horoscope") {
		t.Error("IsTopic accepted an unknown topic")
	}
}

func TestBuildUserPrompt_PinsTaxYear(t *testing.T) {
	prompt := buildUserPrompt("What is the EITC?")
	if !strings.Contains(prompt, "TAX YEAR 2025") {
		t.Error("prompt missing tax-year pin")
	}
	if !strings.Contains(prompt, "What is the EITC?") {
		t.Error("prompt missing the user question")
	}
}
