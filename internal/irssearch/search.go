// Package irssearch answers IRS tax-year-2025 questions with a web-search
// capable model, gated by a cheap tax-relatedness check.
package irssearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbility/taxassist/internal/extract"
)

// User-facing notices. Like the advisor, domain refusals and transient
// failures are answered in-band so the client always has text to render.
const (
	RejectionNotice = "I can only answer questions related to U.S. federal taxes and IRS matters. Please ask a tax-related question."
	FailureNotice   = "Error retrieving IRS information. Please try again later."
)

// Quick-query topics and their canned questions.
var quickQueries = map[string]string{
	"latest-updates":     "What are the latest IRS updates and announcements for tax year 2025?",
	"tax-brackets":       "What are the tax year 2025 federal income tax brackets?",
	"standard-deduction": "What is the standard deduction amount for tax year 2025?",
	"filing-deadlines":   "What are the tax year 2025 IRS tax filing deadlines (filing in 2026)?",
}

// Topics lists the supported quick-query topics.
func Topics() []string {
	return []string{"latest-updates", "tax-brackets", "standard-deduction", "filing-deadlines"}
}

// IsTopic reports whether a quick-query topic is known.
func IsTopic(topic string) bool {
	_, ok := quickQueries[topic]
	return ok
}

// ChatCompleter is the slice of the OpenAI client the service needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service performs IRS lookups. Free-form questions pass through a
// validation model first; quick queries skip validation.
type Service struct {
	llm             ChatCompleter
	searchModel     string
	validationModel string
	stats           *extract.CallStats
	log             *slog.Logger
}

func New(llm ChatCompleter, searchModel, validationModel string, stats *extract.CallStats, log *slog.Logger) *Service {
	return &Service{
		llm:             llm,
		searchModel:     searchModel,
		validationModel: validationModel,
		stats:           stats,
		log:             log,
	}
}

// Query answers a free-form question, rejecting non-tax topics.
func (s *Service) Query(ctx context.Context, question string) string {
	return s.query(ctx, question, true)
}

// Quick answers one of the fixed topics. Unknown topics yield the failure
// notice; routing should have caught them already.
func (s *Service) Quick(ctx context.Context, topic string) string {
	q, ok := quickQueries[topic]
	if !ok {
		s.log.Warn("unknown quick-query topic", "topic", topic)
		return FailureNotice
	}
	return s.query(ctx, q, false)
}

func (s *Service) query(ctx context.Context, question string, validate bool) string {
	s.log.Info("irs query", "question", question, "validate", validate)

	if validate && !s.isTaxRelated(ctx, question) {
		s.log.Warn("rejected non-tax question", "question", question)
		return RejectionNotice
	}

	start := time.Now()
	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.searchModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: searchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(question)},
		},
	})
	s.stats.Record(extract.OpSearch, time.Since(start))
	if err != nil || len(resp.Choices) == 0 {
		s.log.Error("irs search failed", "error", err)
		return FailureNotice
	}
	return resp.Choices[0].Message.Content
}

// isTaxRelated asks the validation model for a YES/NO gate. Validation
// failures fail closed.
func (s *Service) isTaxRelated(ctx context.Context, question string) bool {
	prompt := fmt.Sprintf(`Determine if the following question relates to U.S. federal income taxes or IRS topics such as:
- tax brackets, deductions, credits
- filing status, dependents
- tax forms (1040, W-2, 1099, etc.)
- IRS publications or policies
- AGI, taxable income calculations

Respond only with "YES" or "NO".

Question: %s`, question)

	resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.validationModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		s.log.Error("validation model error", "error", err)
		return false
	}
	verdict := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	return strings.HasPrefix(verdict, "YES")
}

const searchSystemPrompt = `You are an IRS information assistant. Answer using current IRS.gov sources for tax year 2025 only. Be factual, compliant, and concise, and always cite the IRS.gov source you relied on.`

func buildUserPrompt(question string) string {
	return fmt.Sprintf(`CRITICAL: This question is about TAX YEAR 2025 (filing in 2026).
This is for income earned in 2025, to be filed in 2026.
Do NOT provide information for tax year 2024 or any other year.

USER QUESTION:
%s

---
INSTRUCTION TO ASSISTANT:
1. Search ONLY for tax year 2025 information from IRS.gov.
2. If the user provides specific income amounts and asks for calculations (EITC, tax owed, etc.):
   - Use the official 2025 IRS tables, formulas, and thresholds from IRS.gov
   - Perform the calculation step-by-step showing the formula used
   - Cite the specific IRS publication or table used
   - Clearly state any assumptions made
3. If 2025 information is not yet available, explicitly state: "Tax year 2025 information is not yet published by the IRS. The most recent available is [year]."
4. NEVER provide 2024 or prior year information without clearly stating the year.
5. Provide a factual, compliant, and concise answer with IRS.gov sources.
6. End with: "This is an educational estimate based on IRS guidelines. For your actual tax situation, please consult a tax professional or use official IRS tools."`, question)
}
