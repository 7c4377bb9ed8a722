package mcpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"

	"github.com/oveku/mnemosyne/internal/tenant"
)

// Server is the Tool Dispatcher's HTTP front door: a single /mcp POST
// route, CORS + structured-logging middleware, and a 404 for anything
// else (§6.2).
type Server struct {
	router *mux.Router
	dsp    *Dispatcher
	logger logr.Logger
}

// NewServer wires dispatcher behind the routes and middleware §6.2 names.
func NewServer(dispatcher *Dispatcher, log logr.Logger) *Server {
	s := &Server{dsp: dispatcher, logger: log}

	router := mux.NewRouter()
	router.Use(requestLogger, corsAndContentTypeMiddleware)
	router.HandleFunc("/mcp", s.handleMCP).Methods(http.MethodPost, http.MethodOptions)
	router.NotFoundHandler = http.HandlerFunc(notFound)
	s.router = router

	return s
}

// ServeHTTP lets Server be used directly as an http.Handler (e.g. passed
// to http.Server.Handler).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusInternalServerError, errResponse(nil, codeInvalidParams, "malformed JSON-RPC body: "+err.Error()))
		return
	}

	reqCtx := tenant.FromHeaders(r.Header.Get("X-User-Id"), r.Header.Get("X-Space-Id"))

	resp := s.dsp.Handle(r.Context(), reqCtx, req)

	status := http.StatusOK
	if resp.Error != nil && resp.Error.Code == codeInternalError {
		status = http.StatusInternalServerError
	}
	writeResponse(w, status, resp)
}

func writeResponse(w http.ResponseWriter, status int, resp rpcResponse) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
