package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/dispatch"
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/internal/rule"
)

type dispatchRequest struct {
	Arguments map[string]any `json:"arguments"`
}

type dispatchResponse struct {
	Class  string `json:"class"`
	Result any    `json:"result"`
}

type argumentResponse struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Required  bool   `json:"required,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
	Return    bool   `json:"return,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"classes": len(s.dispatcher.Classes()),
	})
}

func (s *Server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"classes": s.dispatcher.Classes()})
}

func (s *Server) handleDescribeClass(w http.ResponseWriter, r *http.Request) {
	class, err := classParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class", err)
		return
	}

	sig, err := s.dispatcher.Describe(r.Context(), class)
	if err != nil {
		respondError(w, statusFor(err), "describe failed", err)
		return
	}

	args := make([]argumentResponse, 0, len(sig))
	for _, a := range sig {
		args = append(args, argumentResponse{
			Name:      a.Name,
			Type:      a.Type.String(),
			Direction: string(a.Direction),
			Required:  a.Required,
			Prompt:    a.Prompt,
			Return:    a.IsReturnType,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"class": class, "arguments": args})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	class, err := classParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class", err)
		return
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := s.dispatcher.Dispatch(r.Context(), class, req.Arguments)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			ctxlog.FromContext(r.Context()).Error("Dispatch failed.", "class", class, "error", err)
		}
		respondError(w, status, "dispatch failed", err)
		return
	}
	respondJSON(w, http.StatusOK, dispatchResponse{Class: class, Result: result})
}

func classParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "*"))
}

// statusFor maps dispatch error kinds to HTTP status codes.
func statusFor(err error) int {
	var (
		missing  *dispatch.MissingRequiredArgumentError
		coercion *coerce.CoercionError
		mismatch *rule.TypeMismatchError
		exec     *dispatch.ExecutionError
	)
	switch {
	case errors.Is(err, dispatch.ErrInvalidSourceIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrClassNotFound):
		return http.StatusNotFound
	case errors.As(err, &missing), errors.As(err, &coercion):
		return http.StatusUnprocessableEntity
	case errors.As(err, &exec):
		if errors.As(err, &mismatch) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
		var de *dispatch.Error
		if errors.As(err, &de) {
			response["phase"] = de.Phase.String()
		}
	}
	respondJSON(w, status, response)
}
