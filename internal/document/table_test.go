package document

import (
	"bytes"
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestToTable_W2Columns(t *testing.T) {
	docs := []TaxDocument{{
		DocumentType:            TypeW2,
		PayerName:               "Acme Corp",
		RecipientName:           "Jane Doe",
		WagesBox1:               f(50000),
		FederalTaxWithheldBox2:  f(6000),
		SocialSecurityWagesBox3: f(50000),
		MedicareWagesBox5:       f(50000),
		State:                   "CA",
		TaxYear:                 2025,
	}}

	rows := ToTable(docs)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row["Recipient Name"] != "Jane Doe" {
		t.Errorf("expected recipient %q, got %q", "Jane Doe", row["Recipient Name"])
	}
	if row["Wages"] != "50000" {
		t.Errorf("expected wages %q, got %q", "50000", row["Wages"])
	}
	if _, ok := row["Nonemployee Compensation"]; ok {
		t.Error("W-2 row must not carry the 1099-NEC compensation column")
	}
}

func TestToTable_1099Columns(t *testing.T) {
	docs := []TaxDocument{{
		DocumentType:           Type1099NEC,
		NonemployeeCompBox1:    f(12500.5),
		FederalTaxWithheldBox4: f(800),
	}}

	row := ToTable(docs)[0]
	if row["Nonemployee Compensation"] != "12500.5" {
		t.Errorf("expected compensation %q, got %q", "12500.5", row["Nonemployee Compensation"])
	}
	if row["Federal Tax Withheld"] != "800" {
		t.Errorf("expected withheld %q, got %q", "800", row["Federal Tax Withheld"])
	}
	if _, ok := row["Wages"]; ok {
		t.Error("1099-NEC row must not carry the W-2 wages column")
	}
}

func TestTotals(t *testing.T) {
	docs := []TaxDocument{
		{DocumentType: TypeW2, WagesBox1: f(40000), FederalTaxWithheldBox2: f(5000)},
		{DocumentType: Type1099NEC, NonemployeeCompBox1: f(10000), FederalTaxWithheldBox4: f(1500)},
		{DocumentType: TypeW2}, // all boxes missing
	}
	if got := TotalIncome(docs); got != 50000 {
		t.Errorf("expected total income 50000, got %v", got)
	}
	if got := TotalFederalTax(docs); got != 6500 {
		t.Errorf("expected total federal tax 6500, got %v", got)
	}
}

func TestResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		wantErr bool
	}{
		{"balanced", Result{Table: []map[string]string{{}}, Previews: []string{"blob:a"}}, false},
		{"empty", Result{}, false},
		{"missing preview", Result{Table: []map[string]string{{}, {}}, Previews: []string{"blob:a"}}, true},
		{"extra preview", Result{Previews: []string{"blob:a"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResult_OwnerKey(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   string
	}{
		{"explicit recipient", &Result{RecipientName: "Jane Doe"}, "Jane Doe"},
		{"recipient column", &Result{Table: []map[string]string{{"Recipient Name": "John Roe"}}}, "John Roe"},
		{"employee column", &Result{Table: []map[string]string{{"Employee Name": "Jane Doe"}}}, "Jane Doe"},
		{"snake case column", &Result{Table: []map[string]string{{"employee_name": "Jane Doe"}}}, "Jane Doe"},
		{"no rows", &Result{}, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.OwnerKey(); got != tt.want {
				t.Errorf("OwnerKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	docs := []TaxDocument{{
		DocumentType:  TypeW2,
		RecipientName: "Jane Doe",
		WagesBox1:     f(50000),
		TaxYear:       2025,
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, docs); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Document Type,") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Jane Doe") {
		t.Errorf("row missing recipient: %q", lines[1])
	}
}

func TestDescribe(t *testing.T) {
	docs := []TaxDocument{
		{DocumentType: TypeW2, PayerName: "Acme Corp", WagesBox1: f(50000)},
		{DocumentType: Type1099NEC, NonemployeeCompBox1: f(9000)},
	}
	out := Describe(docs)
	if !strings.Contains(out, "Document #1 (W2)") {
		t.Errorf("missing first document header: %q", out)
	}
	if !strings.Contains(out, "Nonemployee Compensation: $9000.00") {
		t.Errorf("missing 1099 amount: %q", out)
	}
}
