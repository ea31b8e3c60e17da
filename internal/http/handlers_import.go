package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"financas/internal/storage"

	"github.com/google/uuid"
)

// maxStatementSize bounds uploaded statement files.
const maxStatementSize = 2 << 20

type importPage struct {
	UserName string
	Formats  []string
	Error    string
	JobID    string
}

type importStatusPage struct {
	UserName string
	Found    bool
	JobID    string
	Status   string
	Imported int
	JobError string
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "importar.html", importPage{
			UserName: sessionFrom(r.Context()).UserName,
			Formats:  s.deps.Registry.Formats(),
		})
	case http.MethodPost:
		s.handleImportUpload(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	page := importPage{UserName: sess.UserName, Formats: s.deps.Registry.Formats()}

	r.Body = http.MaxBytesReader(w, r.Body, maxStatementSize)
	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		page.Error = "Arquivo muito grande ou formulário inválido."
		s.render(w, r, "importar.html", page)
		return
	}

	format := strings.TrimSpace(r.FormValue("formato"))
	if s.deps.Registry.Get(format) == nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		page.Error = "Formato de extrato não suportado."
		s.render(w, r, "importar.html", page)
		return
	}

	file, _, err := r.FormFile("arquivo")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		page.Error = "Selecione um arquivo de extrato."
		s.render(w, r, "importar.html", page)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Statement read failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro lendo arquivo", http.StatusInternalServerError)
		return
	}
	if len(payload) == 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		page.Error = "O arquivo enviado está vazio."
		s.render(w, r, "importar.html", page)
		return
	}

	job := storage.ImportJob{
		ID:      uuid.NewString(),
		UserID:  sess.UserID,
		Format:  format,
		Payload: payload,
	}
	if err := s.deps.Stager.CreateImportJob(r.Context(), job); err != nil {
		slog.ErrorContext(r.Context(), "Import job staging failed", "error", err, "user_id", sess.UserID)
		http.Error(w, "erro no agendamento da importação", http.StatusInternalServerError)
		return
	}

	if err := s.deps.Publisher.PublishImportJob(r.Context(), job.ID); err != nil {
		slog.ErrorContext(r.Context(), "Import job publish failed", "error", err, "job_id", job.ID)
		http.Error(w, "erro no agendamento da importação", http.StatusInternalServerError)
		return
	}

	page.JobID = job.ID
	s.render(w, r, "importar.html", page)
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r.Context())
	jobID := strings.TrimSpace(r.URL.Query().Get("id"))
	page := importStatusPage{UserName: sess.UserName, JobID: jobID}

	job, err := s.deps.Stager.GetImportJob(r.Context(), jobID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.ErrorContext(r.Context(), "Import job lookup failed", "error", err, "job_id", jobID)
		}
		w.WriteHeader(http.StatusNotFound)
		s.render(w, r, "importar_status.html", page)
		return
	}
	// Jobs are private to the user who staged them.
	if job.UserID != sess.UserID {
		w.WriteHeader(http.StatusNotFound)
		s.render(w, r, "importar_status.html", page)
		return
	}

	page.Found = true
	page.Status = job.Status
	page.Imported = job.Imported
	page.JobError = job.Error
	s.render(w, r, "importar_status.html", page)
}
