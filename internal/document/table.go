package document

import (
	"fmt"
	"strconv"
)

// Column ordering for tables and CSV export. Rows are plain maps so the
// client can render whatever keys a document type produced; this list fixes
// a stable order for the columns that do appear.
var TableColumns = []string{
	"Document Type",
	"Payer Name",
	"Payer EIN",
	"Recipient Name",
	"Recipient SSN Last4",
	"Wages",
	"Federal Tax Withheld",
	"Social Security Wages",
	"Medicare Wages",
	"Nonemployee Compensation",
	"State",
	"State Wages/Income",
	"State Income Tax",
	"Tax Year",
}

// ToTable converts extracted documents to display rows keyed by column
// label. W-2 and 1099-NEC rows carry different amount columns, so keys are
// not uniform across rows.
func ToTable(docs []TaxDocument) []map[string]string {
	rows := make([]map[string]string, 0, len(docs))
	for _, d := range docs {
		row := map[string]string{
			"Document Type":       d.DocumentType,
			"Payer Name":          d.PayerName,
			"Payer EIN":           d.PayerEIN,
			"Recipient Name":      d.RecipientName,
			"Recipient SSN Last4": d.RecipientSSNLast4,
		}
		switch d.DocumentType {
		case Type1099NEC:
			row["Nonemployee Compensation"] = amount(d.NonemployeeCompBox1)
			row["Federal Tax Withheld"] = amount(d.FederalTaxWithheldBox4)
		default:
			row["Wages"] = amount(d.WagesBox1)
			row["Federal Tax Withheld"] = amount(d.FederalTaxWithheldBox2)
			row["Social Security Wages"] = amount(d.SocialSecurityWagesBox3)
			row["Medicare Wages"] = amount(d.MedicareWagesBox5)
		}
		row["State"] = d.State
		row["State Wages/Income"] = amount(d.StateWages)
		row["State Income Tax"] = amount(d.StateIncomeTax)
		row["Tax Year"] = strconv.Itoa(int(d.TaxYear))
		rows = append(rows, row)
	}
	return rows
}

func amount(v *float64) string {
	return strconv.FormatFloat(deref(v), 'f', -1, 64)
}

// Result is the extraction result set exchanged between the backend and the
// client: display rows, one preview reference per row, and the recipient the
// set belongs to.
type Result struct {
	Table         []map[string]string `json:"table"`
	Previews      []string            `json:"previews"`
	RecipientName string              `json:"recipientName,omitempty"`
}

// Validate enforces the row/preview pairing invariant.
func (r *Result) Validate() error {
	if len(r.Table) != len(r.Previews) {
		return fmt.Errorf("result has %d rows but %d previews", len(r.Table), len(r.Previews))
	}
	return nil
}

// Empty reports whether the result has no rows to render.
func (r *Result) Empty() bool {
	return r == nil || len(r.Table) == 0
}

// OwnerKey resolves the identifier that scopes conversations and summaries
// to this result set: the explicit recipient name when present, otherwise
// the first row's recipient/employee column.
func (r *Result) OwnerKey() string {
	if r == nil {
		return ""
	}
	if r.RecipientName != "" {
		return r.RecipientName
	}
	if len(r.Table) == 0 {
		return ""
	}
	for _, key := range []string{"Recipient Name", "Employee Name", "employee_name"} {
		if v := r.Table[0][key]; v != "" {
			return v
		}
	}
	return ""
}
