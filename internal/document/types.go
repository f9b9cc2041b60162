package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Document type identifiers as returned by the extraction model.
const (
	TypeW2      = "W2"
	Type1099NEC = "1099-NEC"
)

// TaxDocument holds the fields extracted from one W-2 or 1099-NEC form.
// Amount fields are pointers so a missing box is distinguishable from zero.
type TaxDocument struct {
	DocumentType string `json:"document_type"`

	PayerName    string `json:"payer_name"`
	PayerEIN     string `json:"payer_ein"`
	PayerAddress string `json:"payer_address"`

	RecipientName     string `json:"recipient_name"`
	RecipientAddress  string `json:"recipient_address"`
	RecipientSSNLast4 string `json:"recipient_ssn_last4"`

	// W-2 boxes.
	WagesBox1               *float64 `json:"wages_box1"`
	FederalTaxWithheldBox2  *float64 `json:"federal_income_tax_withheld_box2"`
	SocialSecurityWagesBox3 *float64 `json:"social_security_wages_box3"`
	MedicareWagesBox5       *float64 `json:"medicare_wages_box5"`

	// 1099-NEC boxes.
	NonemployeeCompBox1    *float64 `json:"nonemployee_compensation_box1"`
	FederalTaxWithheldBox4 *float64 `json:"federal_income_tax_withheld_box4"`

	// State information.
	State          string   `json:"state"`
	StateWages     *float64 `json:"state_wages"`
	StateIncomeTax *float64 `json:"state_income_tax"`

	TaxYear Year `json:"tax_year"`
}

// Year is a tax year. Extraction models quote it as often as not, so it
// decodes from either a JSON number or a digit string.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid tax year %s", data)
	}
	*y = Year(n)
	return nil
}

// Income returns the document's primary income amount by type.
func (d TaxDocument) Income() float64 {
	switch d.DocumentType {
	case Type1099NEC:
		return deref(d.NonemployeeCompBox1)
	default:
		return deref(d.WagesBox1)
	}
}

// FederalTaxWithheld returns the withheld federal tax by type.
func (d TaxDocument) FederalTaxWithheld() float64 {
	switch d.DocumentType {
	case Type1099NEC:
		return deref(d.FederalTaxWithheldBox4)
	default:
		return deref(d.FederalTaxWithheldBox2)
	}
}

// TotalIncome sums the primary income across documents.
func TotalIncome(docs []TaxDocument) float64 {
	var total float64
	for _, d := range docs {
		total += d.Income()
	}
	return total
}

// TotalFederalTax sums withheld federal tax across documents.
func TotalFederalTax(docs []TaxDocument) float64 {
	var total float64
	for _, d := range docs {
		total += d.FederalTaxWithheld()
	}
	return total
}

// Describe renders a plain-text listing of the documents, used as model
// context for conversations and summaries.
func Describe(docs []TaxDocument) string {
	var sb strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&sb, "\nDocument #%d (%s):\n", i+1, d.DocumentType)
		payer := d.PayerName
		if payer == "" {
			payer = "N/A"
		}
		fmt.Fprintf(&sb, "  Payer: %s\n", payer)
		switch d.DocumentType {
		case Type1099NEC:
			fmt.Fprintf(&sb, "  Nonemployee Compensation: $%.2f\n", deref(d.NonemployeeCompBox1))
			fmt.Fprintf(&sb, "  Federal Tax Withheld: $%.2f\n", deref(d.FederalTaxWithheldBox4))
		default:
			fmt.Fprintf(&sb, "  Wages: $%.2f\n", deref(d.WagesBox1))
			fmt.Fprintf(&sb, "  Federal Tax Withheld: $%.2f\n", deref(d.FederalTaxWithheldBox2))
		}
	}
	return sb.String()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Upload is one file handed to the extraction pipeline: the original
// filename, its MIME type, and the raw bytes.
type Upload struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}
