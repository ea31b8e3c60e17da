package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/importer"
	"financas/internal/storage"
)

type transactionRow struct {
	ID          int64
	Date        string
	Description string
	Amount      string
	Kind        string
	Category    string
}

type transactionsPage struct {
	UserName string
	Filter   string
	Rows     []transactionRow
	Error    string
	Notice   string
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderTransactions(w, r, "", "")
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderTransactions(w http.ResponseWriter, r *http.Request, errMsg, notice string) {
	sess := sessionFrom(r.Context())

	filter := core.TransactionKind(strings.TrimSpace(r.URL.Query().Get("tipo")))
	if filter != core.Income && filter != core.Expense {
		filter = ""
	}

	items, err := s.deps.Ledger.Transactions(r.Context(), sess.UserID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro carregando lançamentos", http.StatusInternalServerError)
		return
	}

	page := transactionsPage{
		UserName: sess.UserName,
		Filter:   string(filter),
		Error:    errMsg,
		Notice:   notice,
	}
	for _, t := range items {
		page.Rows = append(page.Rows, transactionRow{
			ID:          t.ID,
			Date:        t.Date.Format("02/01/2006"),
			Description: t.Description,
			Amount:      s.deps.Money.Format(t.Amount.InexactFloat64()),
			Kind:        string(t.Kind),
			Category:    t.Category,
		})
	}
	s.render(w, r, "transacoes.html", page)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}

	desc := sanitizeInput(r.Form.Get("descricao"))
	amount, err := core.ParseAmount(r.Form.Get("valor"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderTransactions(w, r, "Valor inválido.", "")
		return
	}

	kind := core.TransactionKind(r.Form.Get("tipo"))
	date := time.Now()
	if v := strings.TrimSpace(r.Form.Get("data")); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			date = parsed
		}
	}

	category := sanitizeInput(r.Form.Get("categoria"))
	if category == "" {
		category = importer.Categorize(desc)
	}

	t := core.Transaction{
		UserID:      sess.UserID,
		Kind:        kind,
		Date:        core.NewDate(date.Year(), int(date.Month()), date.Day()),
		Description: desc,
		Amount:      amount,
		Category:    category,
	}
	if err := t.Validate(); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderTransactions(w, r, "Dados inválidos: "+err.Error(), "")
		return
	}

	if _, err := s.deps.Ledger.AddTransaction(r.Context(), t); err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro no salvamento", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/transacoes", http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}
	id, ok := formInt64(r, "id")
	if !ok {
		http.Error(w, "id inválido", http.StatusBadRequest)
		return
	}
	if err := s.deps.Ledger.RemoveTransaction(r.Context(), sess.UserID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "error", err, "user_id", sess.UserID, "id", id)
		http.Error(w, "erro na exclusão", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/transacoes", http.StatusSeeOther)
}
