package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	electionindexer "ballotbox/contexts/election-core/election-indexer"
	indexerhttp "ballotbox/contexts/election-core/election-indexer/transport/http"
	electionledger "ballotbox/contexts/election-core/election-ledger"
	ledgererrors "ballotbox/contexts/election-core/election-ledger/domain/errors"
	ledgerhttp "ballotbox/contexts/election-core/election-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "ballotbox/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	ledger  electionledger.Module
	indexer electionindexer.Module
}

func New(
	ledger electionledger.Module,
	indexer electionindexer.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		ledger:  ledger,
		indexer: indexer,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the route table for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/election/sessions", s.handleCreateSession)
	s.mux.HandleFunc("POST /v1/election/sessions/current/end", s.handleEndSession)
	s.mux.HandleFunc("POST /v1/election/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/election/voters", s.handleAuthorizeVoter)
	s.mux.HandleFunc("POST /v1/election/voters/batch", s.handleAuthorizeVoters)
	s.mux.HandleFunc("GET /v1/election/results", s.handleResults)
	s.mux.HandleFunc("GET /v1/election/candidates", s.handleCandidates)
	s.mux.HandleFunc("GET /v1/election/session", s.handleSessionInfo)
	s.mux.HandleFunc("GET /v1/election/events", s.handleEventFeed)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req ledgerhttp.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.CreateSessionHandler(r.Context(), userID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.ledger.Handler.EndSessionHandler(r.Context(), userID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req ledgerhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.CastVoteHandler(r.Context(), userID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAuthorizeVoter(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req ledgerhttp.AuthorizeVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.AuthorizeVoterHandler(r.Context(), userID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthorizeVoters(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req ledgerhttp.AuthorizeVotersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.AuthorizeVotersHandler(r.Context(), userID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ResultsHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.CandidatesHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.ledger.Handler.SessionInfoHandler(r.Context(), userID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEventFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var afterSeq uint64
	if raw := query.Get("after_seq"); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeIndexerError(w, http.StatusBadRequest, "invalid_after_seq", "after_seq must be a non-negative integer")
			return
		}
		afterSeq = value
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeIndexerError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}

	resp, err := s.indexer.Handler.ListEventsHandler(r.Context(), afterSeq, limit)
	if err != nil {
		writeIndexerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrUnauthorized):
		writeLedgerError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, ledgererrors.ErrSessionAlreadyActive):
		writeLedgerError(w, http.StatusConflict, "session_already_active", err.Error())
	case errors.Is(err, ledgererrors.ErrNoActiveSession):
		writeLedgerError(w, http.StatusConflict, "no_active_session", err.Error())
	case errors.Is(err, ledgererrors.ErrVotingNotStarted):
		writeLedgerError(w, http.StatusConflict, "voting_not_started", err.Error())
	case errors.Is(err, ledgererrors.ErrVotingEnded):
		writeLedgerError(w, http.StatusConflict, "voting_ended", err.Error())
	case errors.Is(err, ledgererrors.ErrAlreadyVoted):
		writeLedgerError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, ledgererrors.ErrCandidateNotFound):
		writeLedgerError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientCandidates):
		writeLedgerError(w, http.StatusBadRequest, "insufficient_candidates", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidDuration):
		writeLedgerError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, ledgererrors.ErrNoCandidates):
		writeLedgerError(w, http.StatusNotFound, "no_candidates", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeIndexerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, indexerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
