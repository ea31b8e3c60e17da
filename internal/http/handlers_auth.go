package http

import (
	"errors"
	"log/slog"
	"net/http"

	"financas/internal/auth"
)

type authPage struct {
	Error string
	Email string
	Name  string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", authPage{})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("senha")

	user, err := s.deps.Auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "login.html", authPage{Error: "E-mail ou senha incorretos.", Email: email})
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}

	sess := auth.NewSession(user.ID, user.Name, s.deps.SessionTTL)
	if err := s.deps.Sessions.Create(r.Context(), sess); err != nil {
		slog.ErrorContext(r.Context(), "Session create failed", "error", err, "user_id", user.ID)
		http.Error(w, "erro interno", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, sess.Token, s.deps.SessionTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "cadastro.html", authPage{})
	case http.MethodPost:
		s.handleRegisterSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulário inválido", http.StatusBadRequest)
		return
	}
	name := sanitizeInput(r.Form.Get("nome"))
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("senha")

	userID, err := s.deps.Auth.Register(r.Context(), name, email, password)
	if err != nil {
		page := authPage{Email: email, Name: name}
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			page.Error = "Este e-mail já está cadastrado."
		case errors.Is(err, auth.ErrWeakPassword):
			page.Error = "A senha deve ter pelo menos 8 caracteres."
		default:
			page.Error = "Dados inválidos: " + err.Error()
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "cadastro.html", page)
		return
	}

	sess := auth.NewSession(userID, name, s.deps.SessionTTL)
	if err := s.deps.Sessions.Create(r.Context(), sess); err != nil {
		slog.ErrorContext(r.Context(), "Session create failed", "error", err, "user_id", userID)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.setSessionCookie(w, sess.Token, s.deps.SessionTTL)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := s.deps.Sessions.Delete(r.Context(), cookie.Value); err != nil {
			slog.WarnContext(r.Context(), "Session delete failed", "error", err)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
