package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"financas/internal/simulation"
)

// maxSimulationBody bounds JSON request bodies for the simulator API.
const maxSimulationBody = 4 << 10

type simulationMonthRow struct {
	Month  int
	Values []string
}

type simulationPage struct {
	Error   string
	Ran     bool
	Absent  bool
	Summary []labeledValue
	Rows    []simulationMonthRow
	Form    map[string]string
}

type labeledValue struct {
	Label string
	Value string
}

func (s *Server) handleInvestmentPage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "simulador_investimento.html", simulationPage{Form: map[string]string{}})
	case http.MethodPost:
		s.handleInvestmentForm(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleInvestmentForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}

	form := map[string]string{
		"investimento_inicial": r.Form.Get("investimento_inicial"),
		"aporte_mensal":        r.Form.Get("aporte_mensal"),
		"taxa_anual":           r.Form.Get("taxa_anual"),
		"prazo_meses":          r.Form.Get("prazo_meses"),
	}

	in, errMsg := investmentInputFromForm(r)
	if errMsg != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "simulador_investimento.html", simulationPage{Error: errMsg, Form: form})
		return
	}

	result, err := simulation.ProjectInvestment(in)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "simulador_investimento.html", simulationPage{Error: "Prazo deve ser de pelo menos 1 mês.", Form: form})
		return
	}

	money := s.deps.Money
	page := simulationPage{
		Ran:  true,
		Form: form,
		Summary: []labeledValue{
			{"Valor final bruto", money.Format(result.Summary.FinalGross)},
			{"Valor final líquido", money.Format(result.Summary.FinalNet)},
			{"Total investido", money.Format(result.Summary.TotalInvested)},
			{"Ganho bruto", money.Format(result.Summary.TotalProfit)},
			{"Imposto devido", money.Format(result.Summary.TotalTax)},
		},
	}
	for _, m := range result.Monthly {
		page.Rows = append(page.Rows, simulationMonthRow{
			Month: m.Month,
			Values: []string{
				money.Format(m.TotalInvested),
				money.Format(m.GrossBalance),
				money.Format(m.GrossProfit),
				money.Format(m.TaxDue),
				money.Format(m.NetBalance),
			},
		})
	}
	s.render(w, r, "simulador_investimento.html", page)
}

func (s *Server) handleLoanPage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "simulador_financiamento.html", simulationPage{Form: map[string]string{}})
	case http.MethodPost:
		s.handleLoanForm(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoanForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}

	form := map[string]string{
		"valor_total":      r.Form.Get("valor_total"),
		"valor_entrada":    r.Form.Get("valor_entrada"),
		"taxa_juros_anual": r.Form.Get("taxa_juros_anual"),
		"prazo_meses":      r.Form.Get("prazo_meses"),
	}

	in, errMsg := loanInputFromForm(r)
	if errMsg != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "simulador_financiamento.html", simulationPage{Error: errMsg, Form: form})
		return
	}

	result, err := simulation.AmortizeLoan(in)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "simulador_financiamento.html", simulationPage{Error: "Prazo deve ser de pelo menos 1 mês.", Form: form})
		return
	}
	if result == nil {
		// Zero interest has no meaningful fixed-payment schedule.
		s.render(w, r, "simulador_financiamento.html", simulationPage{Absent: true, Form: form})
		return
	}

	money := s.deps.Money
	page := simulationPage{
		Ran:  true,
		Form: form,
		Summary: []labeledValue{
			{"Valor da parcela", money.Format(result.Summary.Installment)},
			{"Valor financiado", money.Format(result.Summary.FinancedAmount)},
			{"Total de juros", money.Format(result.Summary.TotalInterest)},
			{"Total pago", money.Format(result.Summary.TotalPaid)},
		},
	}
	for _, m := range result.Monthly {
		page.Rows = append(page.Rows, simulationMonthRow{
			Month: m.Month,
			Values: []string{
				money.Format(m.Installment),
				money.Format(m.Interest),
				money.Format(m.Principal),
				money.Format(m.RemainingBalance),
			},
		})
	}
	s.render(w, r, "simulador_financiamento.html", page)
}

// handleInvestmentAPI is the JSON endpoint for investment projections.
func (s *Server) handleInvestmentAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var in simulation.InvestmentInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSimulationBody)).Decode(&in); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if msg := validateInvestmentInput(in); msg != "" {
		writeJSONError(w, r, http.StatusUnprocessableEntity, msg)
		return
	}

	result, err := simulation.ProjectInvestment(in)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidTerm) {
			writeJSONError(w, r, http.StatusUnprocessableEntity, "prazo deve ser de pelo menos 1 mês")
			return
		}
		slog.ErrorContext(r.Context(), "Investment projection failed", "error", err)
		writeJSONError(w, r, http.StatusInternalServerError, "erro interno")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleLoanAPI is the JSON endpoint for loan amortization. A zero interest
// rate yields a JSON null body: there is no schedule to report.
func (s *Server) handleLoanAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var in simulation.LoanInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSimulationBody)).Decode(&in); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if msg := validateLoanInput(in); msg != "" {
		writeJSONError(w, r, http.StatusUnprocessableEntity, msg)
		return
	}

	result, err := simulation.AmortizeLoan(in)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidTerm) {
			writeJSONError(w, r, http.StatusUnprocessableEntity, "prazo deve ser de pelo menos 1 mês")
			return
		}
		slog.ErrorContext(r.Context(), "Loan amortization failed", "error", err)
		writeJSONError(w, r, http.StatusInternalServerError, "erro interno")
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func validateInvestmentInput(in simulation.InvestmentInput) string {
	if in.Initial < 0 || in.MonthlyContribution < 0 {
		return "valores não podem ser negativos"
	}
	if in.AnnualRatePercent < 0 {
		return "taxa não pode ser negativa"
	}
	if in.TermMonths < 1 {
		return "prazo deve ser de pelo menos 1 mês"
	}
	return ""
}

func validateLoanInput(in simulation.LoanInput) string {
	if in.TotalPrice <= 0 {
		return "valor total deve ser positivo"
	}
	if in.DownPayment < 0 {
		return "entrada não pode ser negativa"
	}
	if in.DownPayment >= in.TotalPrice {
		return "entrada deve ser menor que o valor total"
	}
	if in.AnnualRatePercent < 0 {
		return "taxa não pode ser negativa"
	}
	if in.TermMonths < 1 {
		return "prazo deve ser de pelo menos 1 mês"
	}
	return ""
}

func investmentInputFromForm(r *http.Request) (simulation.InvestmentInput, string) {
	var in simulation.InvestmentInput
	var ok bool
	if in.Initial, ok = formFloat(r, "investimento_inicial"); !ok {
		return in, "Investimento inicial inválido."
	}
	if in.MonthlyContribution, ok = formFloat(r, "aporte_mensal"); !ok {
		in.MonthlyContribution = 0
	}
	if in.AnnualRatePercent, ok = formFloat(r, "taxa_anual"); !ok {
		return in, "Taxa anual inválida."
	}
	if in.TermMonths, ok = formInt(r, "prazo_meses"); !ok {
		return in, "Prazo inválido."
	}
	if msg := validateInvestmentInput(in); msg != "" {
		return in, "Dados inválidos: " + msg + "."
	}
	return in, ""
}

func loanInputFromForm(r *http.Request) (simulation.LoanInput, string) {
	var in simulation.LoanInput
	var ok bool
	if in.TotalPrice, ok = formFloat(r, "valor_total"); !ok {
		return in, "Valor total inválido."
	}
	if in.DownPayment, ok = formFloat(r, "valor_entrada"); !ok {
		in.DownPayment = 0
	}
	if in.AnnualRatePercent, ok = formFloat(r, "taxa_juros_anual"); !ok {
		return in, "Taxa de juros inválida."
	}
	if in.TermMonths, ok = formInt(r, "prazo_meses"); !ok {
		return in, "Prazo inválido."
	}
	if msg := validateLoanInput(in); msg != "" {
		return in, "Dados inválidos: " + msg + "."
	}
	return in, ""
}
