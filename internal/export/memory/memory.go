// Package memory is an in-process LedgerWriter used in development and tests.
package memory

import (
	"context"
	"sync"

	"financas/internal/core"
	ports "financas/internal/export"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.LedgerWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, txs...)
	return nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.rows))
	copy(out, s.rows)
	return out
}
