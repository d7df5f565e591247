package server

import (
	"net/http"

	"github.com/anjali918/Student-Management-System/internal/auth"
)

// Role policy sets. Membership is flat: a set that should admit admins names
// RoleAdmin explicitly.
var (
	anyRole   = []auth.Role{auth.RoleAdmin, auth.RoleTeacher, auth.RoleStudent}
	staffOnly = []auth.Role{auth.RoleAdmin, auth.RoleTeacher}
	adminOnly = []auth.Role{auth.RoleAdmin}
)

// routes is the declarative route-to-policy table. Authentication for all
// protected routes happens once in ServeHTTP; each entry here adds the
// route's authorization stage.
func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.protect("GET /api/users", adminOnly, s.handleListUsers)
	s.protect("POST /api/users", adminOnly, s.handleCreateUser)
	s.protect("GET /api/users/pending/all", adminOnly, s.handleListPendingUsers)
	s.protect("POST /api/users/bulk-approve", adminOnly, s.handleBulkApproveUsers)
	s.protect("GET /api/users/{id}", adminOnly, s.handleGetUser)
	s.protect("PUT /api/users/{id}", adminOnly, s.handleUpdateUser)
	s.protect("DELETE /api/users/{id}", adminOnly, s.handleDeleteUser)
	s.protect("PATCH /api/users/{id}/approve", adminOnly, s.handleApproveUser)

	s.protect("GET /api/students", anyRole, s.handleListStudents)
	s.protect("POST /api/students", staffOnly, s.handleCreateStudent)
	s.protect("GET /api/students/{id}", anyRole, s.handleGetStudent)
	s.protect("PUT /api/students/{id}", staffOnly, s.handleUpdateStudent)
	s.protect("DELETE /api/students/{id}", staffOnly, s.handleDeleteStudent)

	s.protect("GET /api/courses", anyRole, s.handleListCourses)
	s.protect("POST /api/courses", staffOnly, s.handleCreateCourse)
	s.protect("GET /api/courses/{id}", anyRole, s.handleGetCourse)
	s.protect("PUT /api/courses/{id}", staffOnly, s.handleUpdateCourse)
	s.protect("DELETE /api/courses/{id}", staffOnly, s.handleDeleteCourse)
}

func (s *Server) protect(pattern string, roles []auth.Role, h http.HandlerFunc) {
	s.mux.Handle(pattern, auth.RequireAnyRole(roles...)(h))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "OK", "message": "EduManage Backend is running"})
}
