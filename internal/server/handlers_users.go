package server

import (
	"fmt"
	"net/http"

	"github.com/anjali918/Student-Management-System/internal/auth"
)

func publicUsers(users []auth.User) []*auth.PublicUser {
	out := make([]*auth.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return out
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"users": publicUsers(users)})
}

func (s *Server) handleListPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListPending(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"users": publicUsers(users)})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"user": u.Public()})
}

// handleCreateUser is the admin-only path that may assign elevated roles.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.authsvc.CreateUser(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user":    u.Public(),
	})
}

type userUpdateReq struct {
	Name     *string    `json:"name"`
	Email    *string    `json:"email"`
	Role     *auth.Role `json:"role"`
	Approved *bool      `json:"approved"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateReq
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role != nil && !auth.ValidRole(*req.Role) {
		s.respondError(w, r, fmt.Errorf("%w: unknown role %q", auth.ErrValidation, *req.Role))
		return
	}

	u, err := s.users.Update(r.Context(), r.PathValue("id"), auth.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Approved: req.Approved,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"message": "User updated successfully",
		"user":    u.Public(),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "User deleted successfully"})
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.MustClaims(r)
	if err != nil {
		apiError(w, http.StatusUnauthorized, "access token required")
		return
	}
	u, err := s.users.Approve(r.Context(), r.PathValue("id"), claims.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"message": "User approved successfully",
		"user":    u.Public(),
	})
}

type bulkApproveReq struct {
	UserIDs []string `json:"userIds"`
}

func (s *Server) handleBulkApproveUsers(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.MustClaims(r)
	if err != nil {
		apiError(w, http.StatusUnauthorized, "access token required")
		return
	}
	var req bulkApproveReq
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserIDs == nil {
		apiError(w, http.StatusBadRequest, "User IDs array is required")
		return
	}
	n, err := s.users.BulkApprove(r.Context(), req.UserIDs, claims.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"message":       fmt.Sprintf("%d users approved successfully", n),
		"modifiedCount": n,
	})
}
