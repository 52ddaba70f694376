package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sanonone/kektorrag/pkg/rag"
)

func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /chunk", s.handleChunk)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, HealthResponse{Status: "healthy", Service: "rag"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, InfoResponse{
		Service:        ServiceName,
		Version:        Version,
		Status:         "running",
		EmbeddingModel: s.cfg.EmbeddingModel,
	})
}

// handleChunk splits the request content, embeds every chunk and returns them in order.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	var req rag.Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	// The body must hold exactly one JSON value.
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the JSON object")
		}
		s.writeDecodeError(w, err)
		return
	}

	res, err := s.pipeline.Process(r.Context(), req)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, res)
}

func (s *Server) writeDecodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &maxErr):
		s.writeHTTPError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	case errors.As(err, &typeErr):
		s.writeHTTPError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type))
	default:
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
}

// writePipelineError maps the pipeline error kind to an HTTP status.
func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	kind := rag.KindOf(err)
	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err),
	}

	switch kind {
	case rag.KindValidation:
		s.writeHTTPError(w, http.StatusUnprocessableEntity, err.Error())
	case rag.KindProvider:
		s.logger.Warn("Chunk request failed", fields...)
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("Chunk request failed", fields...)
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, ErrorResponse{Detail: message})
}
