package extract

import (
	"fmt"
	"strings"
)

// ExtractionPrompt instructs the vision model to read a W-2 or 1099-NEC
// form and return a single JSON object matching document.TaxDocument.
const ExtractionPrompt = `You are a tax document extraction engine. The input is a U.S. tax form: either a W-2 (Wage and Tax Statement) or a 1099-NEC (Nonemployee Compensation). Extract its fields and return a single JSON object with exactly these keys:

- "document_type": "W2" or "1099-NEC"
- "payer_name", "payer_ein", "payer_address": employer/payer identity (strings)
- "recipient_name", "recipient_address": employee/recipient identity (strings)
- "recipient_ssn_last4": last four digits of the recipient SSN (string)
- "wages_box1": W-2 box 1 wages (number or null)
- "federal_income_tax_withheld_box2": W-2 box 2 (number or null)
- "social_security_wages_box3": W-2 box 3 (number or null)
- "medicare_wages_box5": W-2 box 5 (number or null)
- "nonemployee_compensation_box1": 1099-NEC box 1 (number or null)
- "federal_income_tax_withheld_box4": 1099-NEC box 4 (number or null)
- "state": two-letter state code (string)
- "state_wages": state wages/income (number or null)
- "state_income_tax": state income tax withheld (number or null)
- "tax_year": the form's tax year (integer)

Rules:
- Amounts are plain numbers without currency symbols or thousands separators.
- Use null for any box that is blank or unreadable; never invent values.
- W-2 forms leave the 1099-NEC keys null and vice versa.
- Names are copied exactly as printed, including capitalization.

Respond with ONLY the JSON object, no other text.`

// BuildPDFPrompt creates the extraction prompt for a PDF whose text layer
// has already been pulled out, including the source filename for context.
func BuildPDFPrompt(filename, text string) string {
	var sb strings.Builder
	sb.WriteString(ExtractionPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Source: %q (PDF text layer)\n", filename))
	sb.WriteString("---\n")
	sb.WriteString(text)
	return sb.String()
}
