package http

import (
	"log/slog"
	"net/http"
)

type dashboardRow struct {
	Name   string
	Amount string
	Width  int
}

type goalRow struct {
	ID      int64
	Name    string
	Target  string
	Current string
	Percent int
}

type dashboardPage struct {
	UserName      string
	TotalIncome   string
	TotalExpenses string
	Balance       string
	Negative      bool
	ByCategory    []dashboardRow
	Goals         []goalRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := sessionFrom(r.Context())
	summary, err := s.deps.Ledger.Summary(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard summary failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro carregando painel", http.StatusInternalServerError)
		return
	}

	money := s.deps.Money
	page := dashboardPage{
		UserName:      sess.UserName,
		TotalIncome:   money.Format(summary.TotalIncome.InexactFloat64()),
		TotalExpenses: money.Format(summary.TotalExpenses.InexactFloat64()),
		Balance:       money.Format(summary.Balance.InexactFloat64()),
		Negative:      summary.Balance.IsNegative(),
	}

	// Scale category bars against the largest category.
	var max float64
	for _, c := range summary.ByCategory {
		if v := c.Amount.InexactFloat64(); v > max {
			max = v
		}
	}
	for _, c := range summary.ByCategory {
		width := 0
		if max > 0 {
			width = int(c.Amount.InexactFloat64()/max*100 + 0.5)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		page.ByCategory = append(page.ByCategory, dashboardRow{
			Name:   c.Category,
			Amount: money.Format(c.Amount.InexactFloat64()),
			Width:  width,
		})
	}

	for _, g := range summary.Goals {
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
			Target:  money.Format(g.Target.InexactFloat64()),
			Current: money.Format(g.Current.InexactFloat64()),
			Percent: percent,
		})
	}

	s.render(w, r, "dashboard.html", page)
}
