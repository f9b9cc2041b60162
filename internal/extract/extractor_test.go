package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbility/taxassist/internal/document"
)

type fakeCompleter struct {
	reply func(req openai.ChatCompletionRequest) (string, error)
	calls int
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	content, err := f.reply(req)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractFile_Image(t *testing.T) {
	llm := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		parts := req.Messages[0].MultiContent
		if len(parts) != 2 || parts[1].ImageURL == nil {
			t.Fatal("expected text+image multi-content request")
		}
		if !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("expected data URL, got %q", parts[1].ImageURL.URL)
		}
		return `{"document_type":"W2","recipient_name":"Jane Doe"}`, nil
	}}
	e := NewExtractor(llm, "gpt-4o", NewCallStats(time.Hour), testLogger(), 2)

	doc, err := e.ExtractFile(context.Background(), document.Upload{
		Name: "w2.png", MIME: "image/png", Data: []byte{0x89, 0x50},
	})
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if doc.RecipientName != "Jane Doe" {
		t.Errorf("expected recipient %q, got %q", "Jane Doe", doc.RecipientName)
	}
}

func TestExtractFile_EmptyFile(t *testing.T) {
	e := NewExtractor(&fakeCompleter{}, "gpt-4o", nil, testLogger(), 2)
	if _, err := e.ExtractFile(context.Background(), document.Upload{Name: "w2.png", MIME: "image/png"}); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestExtractFile_UnsupportedType(t *testing.T) {
	e := NewExtractor(&fakeCompleter{}, "gpt-4o", nil, testLogger(), 2)
	_, err := e.ExtractFile(context.Background(), document.Upload{
		Name: "notes.txt", MIME: "text/plain", Data: []byte("hi"),
	})
	if err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestExtractAll_PreservesOrder(t *testing.T) {
	// The fake recovers each file's marker from its base64 data URL and
	// echoes it back as the recipient, with jittered latency so completions
	// land out of order.
	llm := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		url := req.Messages[0].MultiContent[1].ImageURL.URL
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
		if err != nil {
			return "", err
		}
		time.Sleep(time.Duration(raw[len(raw)-1]%4) * time.Millisecond)
		return fmt.Sprintf(`{"document_type":"W2","recipient_name":%q}`, string(raw)), nil
	}}
	e := NewExtractor(llm, "gpt-4o", nil, testLogger(), 3)

	ups := make([]document.Upload, 8)
	for i := range ups {
		ups[i] = document.Upload{
			Name: fmt.Sprintf("w2-%d.png", i),
			MIME: "image/png",
			Data: []byte(fmt.Sprintf("doc-%d", i)),
		}
	}

	docs, err := e.ExtractAll(context.Background(), ups)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if len(docs) != len(ups) {
		t.Fatalf("expected %d docs, got %d", len(ups), len(docs))
	}
	for i, doc := range docs {
		if want := fmt.Sprintf("doc-%d", i); doc.RecipientName != want {
			t.Errorf("docs[%d] = %q, want %q", i, doc.RecipientName, want)
		}
	}
}

func TestExtractAll_FirstErrorAborts(t *testing.T) {
	llm := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}
	e := NewExtractor(llm, "gpt-4o", nil, testLogger(), 2)

	_, err := e.ExtractAll(context.Background(), []document.Upload{
		{Name: "a.png", MIME: "image/png", Data: []byte{1}},
		{Name: "b.png", MIME: "image/png", Data: []byte{1}},
	})
	if err == nil {
		t.Fatal("expected batch error")
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		up   document.Upload
		want bool
	}{
		{document.Upload{Name: "w2.pdf", MIME: "application/pdf"}, true},
		{document.Upload{Name: "w2.PDF", MIME: ""}, true},
		{document.Upload{Name: "w2.png", MIME: "image/png"}, false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.up); got != tt.want {
			t.Errorf("IsPDF(%q) = %v, want %v", tt.up.Name, got, tt.want)
		}
	}
}

func TestBuildPreview(t *testing.T) {
	img := document.Upload{Name: "w2.png", MIME: "image/png", Data: []byte{1, 2, 3}}
	if got := BuildPreview(img); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("expected data URL preview, got %q", got)
	}
	pdf := document.Upload{Name: "w2.pdf", MIME: "application/pdf", Data: []byte{1}}
	if got := BuildPreview(pdf); got != PDFIconPreview {
		t.Errorf("expected pdf icon preview, got %q", got)
	}
}
