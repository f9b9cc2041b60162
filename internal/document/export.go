package document

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV streams the documents as a CSV export with the standard column
// set. Cells for columns a row does not carry are left blank.
func WriteCSV(w io.Writer, docs []TaxDocument) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range ToTable(docs) {
		record := make([]string, len(TableColumns))
		for i, col := range TableColumns {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
