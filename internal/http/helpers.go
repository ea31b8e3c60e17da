package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// clientIP extracts the client address, honoring common proxy headers.
func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	if i := strings.IndexByte(ip, ','); i >= 0 {
		ip = ip[:i]
	}
	return strings.TrimSpace(ip)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "JSON encode failed", "error", err, "path", r.URL.Path)
	}
}

type apiError struct {
	Error string `json:"erro"`
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, apiError{Error: msg})
}

func formFloat(r *http.Request, field string) (float64, bool) {
	v := strings.TrimSpace(r.Form.Get(field))
	if v == "" {
		return 0, false
	}
	// Accept comma as the decimal separator
	v = strings.ReplaceAll(v, ",", ".")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formInt(r *http.Request, field string) (int, bool) {
	v := strings.TrimSpace(r.Form.Get(field))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formInt64(r *http.Request, field string) (int64, bool) {
	v := strings.TrimSpace(r.Form.Get(field))
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
