package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
	"github.com/baiyuheniao/BaiyuSpace/middleware"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Success:   true,
		Message:   "server is running",
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: "invalid request body"})
		return
	}

	res, err := s.engine.Register(r.Context(), baiyuspace.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "registration successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: "invalid request body"})
		return
	}

	// The username field may carry a username or an email address.
	res, err := s.engine.Login(r.Context(), baiyuspace.LoginRequest{
		Identifier: req.Username,
		Password:   req.Password,
	})
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		// Unreachable behind Require; kept so the handler stands alone.
		writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: "no token provided"})
		return
	}

	profile, err := s.engine.CurrentUser(r.Context(), identity.ID)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: profile})
}
