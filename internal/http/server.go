package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/currency"
	"financas/internal/importer"
	applog "financas/internal/log"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/storage"

	"github.com/shopspring/decimal"
)

// Authenticator handles registration and credential checks.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (*core.User, error)
}

// Ledger is the transaction and goal service consumed by the handlers.
type Ledger interface {
	AddTransaction(ctx context.Context, t core.Transaction) (int64, error)
	Transactions(ctx context.Context, userID int64, kind core.TransactionKind) ([]core.Transaction, error)
	RemoveTransaction(ctx context.Context, userID, id int64) error
	AddGoal(ctx context.Context, g core.Goal) (int64, error)
	Goals(ctx context.Context, userID int64) ([]core.Goal, error)
	SetGoalProgress(ctx context.Context, userID, id int64, current decimal.Decimal) error
	RemoveGoal(ctx context.Context, userID, id int64) error
	Summary(ctx context.Context, userID int64) (core.DashboardSummary, error)
}

// ImportStager stages uploaded statements for the worker.
type ImportStager interface {
	CreateImportJob(ctx context.Context, job storage.ImportJob) error
	GetImportJob(ctx context.Context, id string) (*storage.ImportJob, error)
}

// JobPublisher hands a staged job id to the message broker.
type JobPublisher interface {
	PublishImportJob(ctx context.Context, jobID string) error
}

// Deps bundles everything the server needs.
type Deps struct {
	Auth      Authenticator
	Sessions  auth.SessionStore
	Ledger    Ledger
	Stager    ImportStager
	Publisher JobPublisher
	Registry  *importer.Registry
	Money     currency.Formatter
	Logger    *applog.Logger

	SessionTTL time.Duration
	Templates  fs.FS
	Static     fs.FS
}

// Server serves the web UI and the simulator JSON API.
type Server struct {
	http.Server

	deps      Deps
	templates *template.Template

	rateLimiter  *rateLimiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		deps:        deps,
		rateLimiter: newRateLimiter(),
		tracer:      trace.NewMiddleware(clientIP),
	}

	// Parse embedded templates at startup.
	if deps.Templates != nil {
		t, err := template.ParseFS(deps.Templates, "templates/*.html")
		if err != nil {
			slog.Warn("Failed parsing templates", "error", err)
		}
		s.templates = t
	}

	// Static assets (served from embedded FS)
	if deps.Static != nil {
		if sub, err := fs.Sub(deps.Static, "static"); err == nil {
			static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
			mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
		} else {
			slog.Warn("Failed to mount embedded static FS", "error", err)
		}
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/cadastro", s.handleRegister)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.HandleFunc("/", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("/transacoes", s.requireAuth(s.handleTransactions))
	mux.HandleFunc("/transacoes/excluir", s.requireAuth(s.handleDeleteTransaction))
	mux.HandleFunc("/metas", s.requireAuth(s.handleGoals))
	mux.HandleFunc("/metas/progresso", s.requireAuth(s.handleGoalProgress))
	mux.HandleFunc("/metas/excluir", s.requireAuth(s.handleDeleteGoal))
	mux.HandleFunc("/importar", s.requireAuth(s.handleImport))
	mux.HandleFunc("/importar/status", s.requireAuth(s.handleImportStatus))

	mux.HandleFunc("/simulador/investimento", s.handleInvestmentPage)
	mux.HandleFunc("/simulador/financiamento", s.handleLoanPage)
	mux.HandleFunc("/api/simulador/investimento", s.handleInvestmentAPI)
	mux.HandleFunc("/api/simulador/financiamento", s.handleLoanAPI)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := s.tracer.Middleware(headers.Middleware(s.withRateLimit(mux)))
	if deps.Logger != nil {
		handler = applog.Middleware(deps.Logger.WithComponent(applog.ComponentHTTP))(handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// withRateLimit throttles mutating requests per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP(r), "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Limite de requisições excedido. Tente novamente em instantes.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ok requests=%d\n", s.tracer.TotalRequests())
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes a template, falling back to a 500 when templates failed
// to parse at startup.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, "erro interno", http.StatusInternalServerError)
	}
}
