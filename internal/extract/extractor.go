package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbility/taxassist/internal/document"
)

// ChatCompleter is the slice of the OpenAI client the extractor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor turns uploaded tax forms into structured TaxDocuments using a
// vision-capable chat model. Images go to the model directly as data URLs;
// PDFs go through their text layer.
type Extractor struct {
	llm   ChatCompleter
	model string
	stats *CallStats
	log   *slog.Logger

	maxConcurrent int
}

func NewExtractor(llm ChatCompleter, model string, stats *CallStats, log *slog.Logger, maxConcurrent int) *Extractor {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Extractor{
		llm:           llm,
		model:         model,
		stats:         stats,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

// Model returns the configured extraction model name.
func (e *Extractor) Model() string {
	return e.model
}

// ExtractFile extracts one uploaded form.
func (e *Extractor) ExtractFile(ctx context.Context, up document.Upload) (document.TaxDocument, error) {
	var doc document.TaxDocument
	if len(up.Data) == 0 {
		return doc, fmt.Errorf("file %q is empty", up.Name)
	}

	var messages []openai.ChatCompletionMessage
	switch {
	case IsPDF(up):
		text, err := PDFText(up.Data)
		if err != nil {
			return doc, fmt.Errorf("read pdf %q: %w", up.Name, err)
		}
		messages = []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: BuildPDFPrompt(up.Name, text),
		}}
	case IsImage(up):
		messages = []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: ExtractionPrompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    BuildPreview(up),
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		}}
	default:
		return doc, fmt.Errorf("unsupported file type %q for %q", up.MIME, up.Name)
	}

	content, err := e.complete(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: 2048,
		Messages:  messages,
	})
	if err != nil {
		return doc, fmt.Errorf("extract %q: %w", up.Name, err)
	}

	doc, err = ParseDocument(content)
	if err != nil {
		return doc, fmt.Errorf("extract %q: %w", up.Name, err)
	}
	e.log.Info("extracted document", "file", up.Name, "type", doc.DocumentType, "recipient", doc.RecipientName)
	return doc, nil
}

// ExtractAll extracts a batch with bounded concurrency. Results keep input
// order; the first failure aborts the batch.
func (e *Extractor) ExtractAll(ctx context.Context, ups []document.Upload) ([]document.TaxDocument, error) {
	docs := make([]document.TaxDocument, len(ups))
	errs := make([]error, len(ups))

	sem := make(chan struct{}, e.maxConcurrent)
	var wg sync.WaitGroup
	for i, up := range ups {
		i, up := i, up
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			docs[i], errs[i] = e.ExtractFile(ctx, up)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// complete performs one chat completion with bounded retries on transient
// failures, recording latency for each attempt.
func (e *Extractor) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(Backoff(attempt - 1)):
			}
		}

		start := time.Now()
		resp, err := e.llm.CreateChatCompletion(ctx, req)
		e.stats.Record(OpExtract, time.Since(start))
		if err != nil {
			lastErr = err
			if IsRetryable(err) {
				e.log.Warn("extraction call failed, retrying", "attempt", attempt, "error", err)
				continue
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty response from model")
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("extraction failed after %d retries: %w", MaxRetries, lastErr)
}
