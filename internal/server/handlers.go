// File: internal/server/handlers.go
package server

import (
	"errors"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"vulnserve/api/schemas"
	"vulnserve/internal/predictor"
	"vulnserve/internal/runtime"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Empty-batch messages, per endpoint family.
const (
	noFunctionsMsg = "No functions to process"
	noCodeMsg      = "No code to process"
)

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	provider, code, ok := s.decodeRequest(w, r, noFunctionsMsg)
	if !ok {
		return
	}
	resp, err := s.svc.Predict(r.Context(), provider, code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCWE(w http.ResponseWriter, r *http.Request) {
	provider, code, ok := s.decodeRequest(w, r, noCodeMsg)
	if !ok {
		return
	}
	resp, err := s.svc.CWE(r.Context(), provider, code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeverity(w http.ResponseWriter, r *http.Request) {
	provider, code, ok := s.decodeRequest(w, r, noCodeMsg)
	if !ok {
		return
	}
	resp, err := s.svc.Severity(r.Context(), provider, code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	provider, code, ok := s.decodeRequest(w, r, noCodeMsg)
	if !ok {
		return
	}
	resp, err := s.svc.Repair(r.Context(), provider, code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// decodeRequest validates the provider segment and decodes the batch body.
// On failure the response has already been written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, emptyMsg string) (runtime.Provider, []string, bool) {
	provider := runtime.Provider(r.PathValue("provider"))
	if !provider.Valid() {
		http.NotFound(w, r)
		return "", nil, false
	}

	var code []string
	if err := json.NewDecoder(r.Body).Decode(&code); err != nil {
		s.writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{Error: "malformed request body"})
		return "", nil, false
	}
	if len(code) == 0 {
		s.writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{Error: emptyMsg})
		return "", nil, false
	}
	if s.cfg.MaxBatchSize > 0 && len(code) > s.cfg.MaxBatchSize {
		msg := fmt.Sprintf("batch of %d exceeds limit of %d", len(code), s.cfg.MaxBatchSize)
		s.writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{Error: msg})
		return "", nil, false
	}
	return provider, code, true
}

// writeError maps prediction failures onto status codes: bad input is the
// caller's fault, an unreachable runtime is a gateway problem, everything
// else is ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var emptyErr *predictor.EmptyInputError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &emptyErr):
		status = http.StatusBadRequest
	case errors.Is(err, runtime.ErrUnavailable):
		status = http.StatusBadGateway
	}

	log := s.logger.With(
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		log.Error("prediction failed")
	} else {
		log.Warn("request rejected")
	}
	s.writeJSON(w, status, schemas.ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
	}
}
