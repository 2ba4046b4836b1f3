package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/dbadmin/internal/errs"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	rawURL, err := urlParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	exists, err := s.admin.DatabaseExists(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Encoding string `json:"encoding"`
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "malformed request body", err))
		return
	}
	if req.URL == "" {
		writeError(w, errs.New(errs.ErrKindInvalidInput, "missing url field"))
		return
	}

	if err := s.admin.CreateDatabase(r.Context(), req.URL, req.Encoding, req.Template); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	rawURL, err := urlParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	force, err := boolParam(r, "force", true)
	if err != nil {
		writeError(w, err)
		return
	}
	diagnostics, err := boolParam(r, "diagnostics", true)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.admin.DropDatabase(r.Context(), rawURL, force, diagnostics); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	rawURL, err := urlParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.admin.Ping(r.Context(), rawURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	rawURL, err := urlParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tables, err := s.admin.ListTables(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}
	if tables == nil {
		tables = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": tables})
}

func (s *Server) handleInspectTable(w http.ResponseWriter, r *http.Request) {
	rawURL, err := urlParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	table, err := s.admin.InspectTable(r.Context(), rawURL, chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// --- Request plumbing ---

func urlParam(r *http.Request) (string, error) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "missing url query parameter")
	}
	return rawURL, nil
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.Wrap(errs.ErrKindInvalidInput, "invalid "+name+" query parameter", err)
	}
	return v, nil
}

// --- Response plumbing ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]map[string]string{
		"error": {
			"kind":    errKind(err),
			"message": err.Error(),
		},
	})
}

func errKind(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return errs.ErrKindUnknown.String()
}

// statusFor maps error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsAlreadyExists(err):
		return http.StatusConflict
	case errs.IsInvalidInput(err):
		return http.StatusBadRequest
	case errs.IsPermissionDenied(err):
		return http.StatusForbidden
	case errs.IsUnsupported(err):
		return http.StatusNotImplemented
	case errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
