// Package importer turns bank-statement files into categorized ledger
// transactions.
//
// Statement formats are abstracted behind the Parser interface; parsing the
// bytes of a given bank format is a parser's concern, the pipeline only sees
// already-extracted StatementEntry values. Each entry's description is run
// through the keyword categorizer and the sign of the amount picks the
// ledger side (positive = income, negative = expense).
package importer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"financas/internal/core"
)

// Parser converts a statement file into StatementEntries.
type Parser interface {
	Parse(r io.Reader) ([]core.StatementEntry, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for key := range r.parsers {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	return r
}

// TransactionSink receives the categorized transactions produced by an
// import run. The SQLite repository implements it.
type TransactionSink interface {
	SaveTransaction(ctx context.Context, tx core.Transaction) (int64, error)
}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
}

// Import categorizes each statement entry and stores it for the given user.
// Entries with an empty description or a zero amount are skipped, not
// failed: bank exports routinely carry informational rows.
func Import(ctx context.Context, sink TransactionSink, userID int64, entries []core.StatementEntry) (Result, error) {
	var res Result
	for i, e := range entries {
		if strings.TrimSpace(e.Description) == "" || e.Amount.IsZero() {
			res.Skipped++
			continue
		}

		tx := core.Transaction{
			UserID:      userID,
			Kind:        e.Kind(),
			Date:        core.Date{Time: e.Date},
			Description: e.Description,
			Amount:      e.Amount.Abs(),
			Category:    Categorize(e.Description),
		}

		if _, err := sink.SaveTransaction(ctx, tx); err != nil {
			return res, fmt.Errorf("save entry %d: %w", i+1, err)
		}
		res.Imported++
	}
	return res, nil
}
