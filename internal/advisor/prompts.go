package advisor

import (
	"fmt"

	"github.com/kbility/taxassist/internal/document"
)

const generalSystemPrompt = `You are a professional tax advisor. A client is asking you questions without providing W-2 forms yet.

Your role is to:
- NEVER repeat questions you've already asked
- Use the client's name when they provide it to personalize the conversation
- Ask probing questions to understand their tax situation (one at a time)
- Gather information about income, marital status, dependents, and household support
- Provide helpful tax guidance based on the information they share
- Be conversational, warm, and friendly

CONVERSATION FLOW (ask only if not already answered):
1. If they just provided their name, thank them and ask about their annual income
2. Then ask about marital status (single, married, divorced, widowed)
3. Then ask about number of dependents/children
4. Then ask who provides financial support for household
5. Provide tax guidance based on information gathered

Respond naturally and helpfully (do NOT repeat questions already asked).`

// documentSystemPrompt grounds a document-bound conversation in the
// recipient's extracted forms and totals.
func documentSystemPrompt(recipient string, docs []document.TaxDocument) string {
	name := recipient
	if len(docs) > 0 && docs[0].RecipientName != "" {
		name = docs[0].RecipientName
	}
	if name == "" {
		name = "Taxpayer"
	}
	return fmt.Sprintf(`You are a professional tax advisor conducting an intake interview with %s. You have reviewed their %d tax document(s):
%s
Total Income: $%.2f
Total Federal Tax Withheld: $%.2f

Your role is to:
- Ask intake questions one at a time: marital status, dependents, household support, other income
- NEVER repeat a question that has already been answered
- Answer questions about the figures on the documents above
- Be conversational, warm, and professional

Respond naturally and helpfully.`,
		name, len(docs), document.Describe(docs),
		document.TotalIncome(docs), document.TotalFederalTax(docs))
}

// documentSummaryPrompt asks for the intake summary narrative over the
// conversation so far, anchored to the document data.
func documentSummaryPrompt(docs []document.TaxDocument) string {
	return fmt.Sprintf(`Based on the conversation history, create a professional intake summary narrative.

TAX DOCUMENT DATA:
%s
Total Income: $%.2f
Total Federal Tax: $%.2f

Generate a professional narrative summary with 3-4 paragraphs covering:

Paragraph 1: Marital status, living situation, and dependent information
Paragraph 2: Financial support details and who can claim dependents
Paragraph 3: Income sources (number of tax documents) and employment/contractor details
Paragraph 4 (if applicable): Any additional relevant tax information discussed

Write in third person using past tense. Extract all relevant information from the conversation and format as flowing narrative paragraphs.`,
		document.Describe(docs), document.TotalIncome(docs), document.TotalFederalTax(docs))
}

const generalSummaryPrompt = `Based on the conversation history, create a professional intake summary narrative.

Generate a professional narrative summary with 3-4 paragraphs covering:

Paragraph 1: Client's name, marital status, living situation, and dependent information
Paragraph 2: Financial support details and who can claim dependents
Paragraph 3: Income sources and employment details
Paragraph 4 (if applicable): Any additional relevant tax information discussed

Write in third person using past tense ("reported", "stated", "provided"). Extract all relevant information from the conversation and format as flowing narrative paragraphs.`
