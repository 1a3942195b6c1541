// Package api serves the command handler as a JSON HTTP API under
// /api/commands.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"cmdapi/handler"
	"cmdapi/model"

	"github.com/google/uuid"
)

const (
	basePath        = "/api/commands"
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

type Server struct {
	h      *handler.Handler
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(h *handler.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{h: h, logger: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET "+basePath, s.listCommands)
	s.mux.HandleFunc("GET "+basePath+"/{id}", s.getCommand)
	s.mux.HandleFunc("POST "+basePath, s.createCommand)
	s.mux.HandleFunc("PUT "+basePath+"/{id}", s.replaceCommand)
	s.mux.HandleFunc("DELETE "+basePath+"/{id}", s.deleteCommand)

	return s
}

// ServeHTTP tags the request with an id, dispatches it and logs the outcome.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get(requestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, reqID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)

	s.logger.Info("request",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start),
	)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) listCommands(w http.ResponseWriter, r *http.Request) {
	s.write(w, s.h.ListCommands())
}

func (s *Server) getCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.write(w, s.h.GetCommand(id))
}

func (s *Server) createCommand(w http.ResponseWriter, r *http.Request) {
	var c model.Command
	if !decode(w, r, &c) {
		return
	}
	s.write(w, s.h.CreateCommand(c))
}

func (s *Server) replaceCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var c model.Command
	if !decode(w, r, &c) {
		return
	}
	s.write(w, s.h.ReplaceCommand(id, c))
}

func (s *Server) deleteCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.write(w, s.h.DeleteCommand(id))
}

// write encodes a handler result as an HTTP response.
func (s *Server) write(w http.ResponseWriter, res handler.Result) {
	switch res.Status {
	case handler.StatusOK:
		if res.Command != nil {
			writeJSON(w, http.StatusOK, res.Command)
		} else {
			writeJSON(w, http.StatusOK, res.Commands)
		}
	case handler.StatusCreated:
		if res.Route != nil {
			w.Header().Set("Location", routePath(*res.Route))
		}
		writeJSON(w, http.StatusCreated, res.Command)
	case handler.StatusNoContent:
		w.WriteHeader(http.StatusNoContent)
	case handler.StatusNotFound:
		w.WriteHeader(http.StatusNotFound)
	case handler.StatusBadRequest:
		writeError(w, http.StatusBadRequest, res.Err)
	default:
		writeError(w, http.StatusInternalServerError, errors.New("storage unavailable"))
	}
}

func routePath(rt handler.Route) string {
	switch rt.Name {
	case handler.RouteGetCommand:
		return basePath + "/" + strconv.FormatInt(rt.ID, 10)
	default:
		return basePath
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid id %q", r.PathValue("id")))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
