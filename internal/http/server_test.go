package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/currency"
	"financas/internal/importer"
	"financas/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerStub struct {
	summary      core.DashboardSummary
	transactions []core.Transaction
	added        []core.Transaction
	removed      []int64
}

func (l *ledgerStub) AddTransaction(_ context.Context, t core.Transaction) (int64, error) {
	l.added = append(l.added, t)
	return int64(len(l.added)), nil
}

func (l *ledgerStub) Transactions(_ context.Context, _ int64, kind core.TransactionKind) ([]core.Transaction, error) {
	if kind == "" {
		return l.transactions, nil
	}
	var out []core.Transaction
	for _, t := range l.transactions {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out, nil
}

func (l *ledgerStub) RemoveTransaction(_ context.Context, _ int64, id int64) error {
	l.removed = append(l.removed, id)
	return nil
}

func (l *ledgerStub) AddGoal(_ context.Context, _ core.Goal) (int64, error) { return 1, nil }
func (l *ledgerStub) Goals(_ context.Context, _ int64) ([]core.Goal, error) {
	return l.summary.Goals, nil
}
func (l *ledgerStub) SetGoalProgress(_ context.Context, _, _ int64, _ decimal.Decimal) error {
	return nil
}
func (l *ledgerStub) RemoveGoal(_ context.Context, _, _ int64) error { return nil }
func (l *ledgerStub) Summary(_ context.Context, _ int64) (core.DashboardSummary, error) {
	return l.summary, nil
}

type authStub struct {
	user *core.User
	err  error
}

func (a *authStub) Register(_ context.Context, _, _, _ string) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	return a.user.ID, nil
}

func (a *authStub) Login(_ context.Context, _, _ string) (*core.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.user, nil
}

type stagerStub struct {
	jobs map[string]*storage.ImportJob
}

func (s *stagerStub) CreateImportJob(_ context.Context, job storage.ImportJob) error {
	if s.jobs == nil {
		s.jobs = make(map[string]*storage.ImportJob)
	}
	job.Status = "pending"
	s.jobs[job.ID] = &job
	return nil
}

func (s *stagerStub) GetImportJob(_ context.Context, id string) (*storage.ImportJob, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return job, nil
}

type publisherStub struct {
	published []string
}

func (p *publisherStub) PublishImportJob(_ context.Context, jobID string) error {
	p.published = append(p.published, jobID)
	return nil
}

var testTemplates = fstest.MapFS{
	"templates/dashboard.html":       {Data: []byte(`painel {{.UserName}} saldo={{.Balance}}`)},
	"templates/login.html":           {Data: []byte(`login {{.Error}}`)},
	"templates/transacoes.html":      {Data: []byte(`transacoes {{len .Rows}}`)},
	"templates/importar.html":        {Data: []byte(`importar {{.JobID}} {{.Error}}`)},
	"templates/importar_status.html": {Data: []byte(`status {{.Status}}`)},
}

func newAuthedServer(t *testing.T, ledger Ledger, stager ImportStager, publisher JobPublisher) (*Server, *http.Cookie) {
	t.Helper()

	sessions := auth.NewMemoryStore()
	sess := auth.NewSession(7, "Maria", time.Hour)
	require.NoError(t, sessions.Create(context.Background(), sess))

	s := NewServer(":0", Deps{
		Sessions:   sessions,
		Ledger:     ledger,
		Stager:     stager,
		Publisher:  publisher,
		Registry:   importer.DefaultRegistry(),
		Money:      currency.BRL(),
		SessionTTL: time.Hour,
		Templates:  testTemplates,
	})
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s, &http.Cookie{Name: sessionCookie, Value: sess.Token}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestAnonymousRequestRedirectsToLogin(t *testing.T) {
	s, _ := newAuthedServer(t, &ledgerStub{}, &stagerStub{}, &publisherStub{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestDashboardRendersSummary(t *testing.T) {
	ledger := &ledgerStub{
		summary: core.DashboardSummary{
			TotalIncome:   decimal.NewFromInt(3000),
			TotalExpenses: decimal.NewFromInt(1200),
			Balance:       decimal.NewFromInt(1800),
		},
	}
	s, cookie := newAuthedServer(t, ledger, &stagerStub{}, &publisherStub{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maria")
	assert.Contains(t, rec.Body.String(), "1.800,00")
}

func TestCreateTransaction(t *testing.T) {
	ledger := &ledgerStub{}
	s, cookie := newAuthedServer(t, ledger, &stagerStub{}, &publisherStub{})

	form := url.Values{
		"tipo":      {"despesa"},
		"descricao": {"Almoço no restaurante"},
		"valor":     {"45,90"},
		"data":      {"2026-08-15"},
	}
	req := httptest.NewRequest(http.MethodPost, "/transacoes", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, ledger.added, 1)
	added := ledger.added[0]
	assert.Equal(t, int64(7), added.UserID)
	assert.Equal(t, core.Expense, added.Kind)
	assert.True(t, added.Amount.Equal(decimal.RequireFromString("45.90")))
	// Empty category falls back to the keyword categorizer.
	assert.Equal(t, "Alimentação", added.Category)
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	ledger := &ledgerStub{}
	s, cookie := newAuthedServer(t, ledger, &stagerStub{}, &publisherStub{})

	form := url.Values{
		"tipo":      {"despesa"},
		"descricao": {"Almoço"},
		"valor":     {"abc"},
	}
	req := httptest.NewRequest(http.MethodPost, "/transacoes", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, ledger.added)
}

func TestStatementUploadStagesAndPublishes(t *testing.T) {
	stager := &stagerStub{}
	publisher := &publisherStub{}
	s, cookie := newAuthedServer(t, &ledgerStub{}, stager, publisher)

	var body strings.Builder
	boundary := "upload-test"
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"formato\"\r\n\r\ncsv\r\n")
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"arquivo\"; filename=\"extrato.csv\"\r\n")
	body.WriteString("Content-Type: text/csv\r\n\r\n")
	body.WriteString("data,descricao,valor\n15/08/2026,Supermercado,-120.00\n")
	body.WriteString("\r\n--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/importar", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", fmt.Sprintf("multipart/form-data; boundary=%s", boundary))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, publisher.published, 1)
	jobID := publisher.published[0]

	job, err := stager.GetImportJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), job.UserID)
	assert.Equal(t, "csv", job.Format)
	assert.Equal(t, "pending", job.Status)
	assert.Contains(t, string(job.Payload), "Supermercado")
}

func TestStatementUploadRejectsUnknownFormat(t *testing.T) {
	stager := &stagerStub{}
	publisher := &publisherStub{}
	s, cookie := newAuthedServer(t, &ledgerStub{}, stager, publisher)

	var body strings.Builder
	boundary := "upload-test"
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"formato\"\r\n\r\nqif\r\n")
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"arquivo\"; filename=\"extrato.qif\"\r\n\r\nconteudo\r\n")
	body.WriteString("--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/importar", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", fmt.Sprintf("multipart/form-data; boundary=%s", boundary))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, publisher.published)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	sessions := auth.NewMemoryStore()
	s := NewServer(":0", Deps{
		Auth:       &authStub{user: &core.User{ID: 3, Name: "Ana"}},
		Sessions:   sessions,
		Registry:   importer.DefaultRegistry(),
		Money:      currency.BRL(),
		SessionTTL: time.Hour,
		Templates:  testTemplates,
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	form := url.Values{"email": {"ana@example.com"}, "senha": {"segredo123"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			found = c
		}
	}
	require.NotNil(t, found, "session cookie not set")

	sess, err := sessions.Get(context.Background(), found.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sess.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := NewServer(":0", Deps{
		Auth:       &authStub{err: auth.ErrInvalidCredentials},
		Sessions:   auth.NewMemoryStore(),
		Registry:   importer.DefaultRegistry(),
		Money:      currency.BRL(),
		SessionTTL: time.Hour,
		Templates:  testTemplates,
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	form := url.Values{"email": {"ana@example.com"}, "senha": {"errada"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		assert.True(t, rl.allow("10.0.0.1"))
	}
	assert.False(t, rl.allow("10.0.0.1"))
	// Other clients are unaffected
	assert.True(t, rl.allow("10.0.0.2"))
}
