package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    baiyuspace.Profile `json:"user"`
}

type userResponse struct {
	Success bool               `json:"success"`
	User    baiyuspace.Profile `json:"user"`
}

type statusResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// engineError maps the error taxonomy onto status codes. Anything
// unrecognized is a server fault: logged, and reported with a generic
// message unless dev mode is on.
func (s *Server) engineError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch {
	case errors.Is(err, baiyuspace.ErrMissingFields):
		status = http.StatusBadRequest
	case errors.Is(err, baiyuspace.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, baiyuspace.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, baiyuspace.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, baiyuspace.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, baiyuspace.ErrTokenInvalid):
		status = http.StatusForbidden
	case errors.Is(err, baiyuspace.ErrLoginRateLimited):
		status = http.StatusTooManyRequests
	default:
		s.log.Error("internal error",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		body := errorResponse{Success: false, Message: "internal server error"}
		if s.dev {
			body.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	writeJSON(w, status, errorResponse{Success: false, Message: err.Error()})
}
