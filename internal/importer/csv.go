package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"financas/internal/core"
)

// CSVParser parses the generic three-column statement export
// (data, descricao, valor) most Brazilian banks offer alongside OFX.
type CSVParser struct{}

const (
	csvDateFormat = "02/01/2006"
	csvNumFields  = 3
	csvColDate    = 0
	csvColDesc    = 1
	csvColAmount  = 2
)

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a statement CSV and returns its entries. The first row is
// treated as a header and skipped.
func (p *CSVParser) Parse(r io.Reader) ([]core.StatementEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []core.StatementEntry
	for i, rec := range records[1:] {
		entry, err := parseCSVRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseCSVRow(rec []string) (core.StatementEntry, error) {
	date, err := time.Parse(csvDateFormat, rec[csvColDate])
	if err != nil {
		return core.StatementEntry{}, fmt.Errorf("parsing date %q: %w", rec[csvColDate], err)
	}

	amount, err := core.ParseSignedAmount(rec[csvColAmount])
	if err != nil {
		return core.StatementEntry{}, fmt.Errorf("parsing amount %q: %w", rec[csvColAmount], err)
	}

	return core.StatementEntry{
		Date:        date,
		Description: rec[csvColDesc],
		Amount:      amount,
	}, nil
}
