package http

import (
	"errors"
	"log/slog"
	"net/http"

	"financas/internal/core"
	"financas/internal/storage"
)

type goalsPage struct {
	UserName string
	Goals    []goalRow
	Error    string
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderGoals(w, r, "")
	case http.MethodPost:
		s.handleCreateGoal(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderGoals(w http.ResponseWriter, r *http.Request, errMsg string) {
	sess := sessionFrom(r.Context())
	goals, err := s.deps.Ledger.Goals(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List goals failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro carregando metas", http.StatusInternalServerError)
		return
	}

	page := goalsPage{UserName: sess.UserName, Error: errMsg}
	for _, g := range goals {
		percent := 0
		if g.Target.IsPositive() {
			percent = int(g.Current.Div(g.Target).InexactFloat64()*100 + 0.5)
			if percent > 100 {
				percent = 100
			}
		}
		page.Goals = append(page.Goals, goalRow{
			ID:      g.ID,
			Name:    g.Name,
			Target:  s.deps.Money.Format(g.Target.InexactFloat64()),
			Current: s.deps.Money.Format(g.Current.InexactFloat64()),
			Percent: percent,
		})
	}
	s.render(w, r, "metas.html", page)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}

	target, err := core.ParseAmount(r.Form.Get("valor_alvo"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderGoals(w, r, "Valor alvo inválido.")
		return
	}

	g := core.Goal{
		UserID: sess.UserID,
		Name:   sanitizeInput(r.Form.Get("nome")),
		Target: target,
	}
	if err := g.Validate(); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderGoals(w, r, "Dados inválidos: "+err.Error())
		return
	}

	if _, err := s.deps.Ledger.AddGoal(r.Context(), g); err != nil {
		slog.ErrorContext(r.Context(), "Create goal failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro no salvamento", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/metas", http.StatusSeeOther)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
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
	current, err := core.ParseAmount(r.Form.Get("valor_atual"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderGoals(w, r, "Valor atual inválido.")
		return
	}
	if err := s.deps.Ledger.SetGoalProgress(r.Context(), sess.UserID, id, current); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Update goal progress failed", "error", err, "user_id", sess.UserID, "id", id)
		http.Error(w, "erro na atualização", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/metas", http.StatusSeeOther)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
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
	if err := s.deps.Ledger.RemoveGoal(r.Context(), sess.UserID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Delete goal failed", "error", err, "user_id", sess.UserID, "id", id)
		http.Error(w, "erro na exclusão", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/metas", http.StatusSeeOther)
}
