package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/driftboat/internal/loginlimit"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. Failures carry the caller's lockout state
// so the sign-in form can show the remaining attempts.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	session, err := s.Auth.Login(r.Context(), clientKey(r), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err, "session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// GetLockout handles GET /auth/lockout. With ?watch=1 the response is a
// server-sent event stream that pushes the status once per tick until the
// lockout ends or the client disconnects.
func (s *Server) GetLockout(w http.ResponseWriter, r *http.Request) {
	watch := false
	if v := r.URL.Query().Get("watch"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "bad_request", `"watch" must be a boolean`)
			return
		}
		watch = b
	}

	if !watch {
		st, err := s.Auth.Lockout(r.Context(), clientKey(r))
		if err != nil {
			s.fail(w, r, err, "lockout")
			return
		}
		writeJSON(w, http.StatusOK, st)
		return
	}

	updates, err := s.Auth.WatchLockout(r.Context(), clientKey(r))
	if err != nil {
		s.fail(w, r, err, "lockout")
		return
	}
	s.streamLockout(w, r, updates)
}

func (s *Server) streamLockout(w http.ResponseWriter, r *http.Request, updates <-chan loginlimit.Status) {
	rc := http.NewResponseController(w)
	// The server-wide write timeout would cut the stream short.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	for st := range updates {
		data, err := json.Marshal(st)
		if err != nil {
			s.log.ErrorContext(r.Context(), "encode lockout event", "error", err)
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
