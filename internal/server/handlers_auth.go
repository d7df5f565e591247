package server

import (
	"net/http"
	"time"

	"github.com/anjali918/Student-Management-System/internal/auth"
)

type loginResp struct {
	Message   string           `json:"message"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *auth.PublicUser `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.rlSignupIP.allow(getClientIP(r)) {
		tooMany(w, 60)
		return
	}

	var req auth.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.authsvc.Signup(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    u.Public(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.rlLoginIP.allow(getClientIP(r)) {
		tooMany(w, 60)
		return
	}

	var req auth.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email != "" && !s.rlLoginID.allow(auth.NormalizeEmail(req.Email)) {
		tooMany(w, 60)
		return
	}

	res, err := s.authsvc.Login(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, loginResp{
		Message:   "Login successful",
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User.Public(),
	})
}
