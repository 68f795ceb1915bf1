package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitos/eth_take_profit/internal/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Index int    `json:"index,omitempty"`
	Token string `json:"token,omitempty"`
}

// statusCode maps an evaluation error onto an HTTP status and error body.
func statusCode(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	var specErr *domain.MalformedSpecError
	switch {
	case errors.As(err, &specErr):
		resp.Kind = "malformed_spec"
		resp.Index = specErr.Index
		resp.Token = specErr.Token
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrInvalidInput):
		resp.Kind = "invalid_input"
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrPriceUnavailable), errors.Is(err, domain.ErrFetch):
		resp.Kind = "price_unavailable"
		return http.StatusServiceUnavailable, resp
	}
	resp.Kind = "internal"
	return http.StatusInternalServerError, resp
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, body := statusCode(err)
	s.writeJSON(w, status, body)
}

func (s *Server) handleStatusJSON(w http.ResponseWriter, r *http.Request) {
	req, err := s.statusRequestFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.service.Status(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePriceJSON(w http.ResponseWriter, r *http.Request) {
	asset := s.defaults.Asset

	quote, err := s.service.CurrentPrice(r.Context(), asset)
	if err != nil {
		s.logger.Error("Failed to get price", zap.String("asset", asset), zap.Error(err))
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}
