package server

import (
	"errors"
	"net/http"

	"github.com/anjali918/Student-Management-System/internal/storage"
)

type studentReq struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Phone  string  `json:"phone"`
	Course string  `json:"course"`
	GPA    float64 `json:"gpa"`
	Status string  `json:"status"`
}

func (req *studentReq) validate() string {
	if req.Name == "" || req.Email == "" {
		return "Name and email are required"
	}
	if req.GPA < 0 || req.GPA > 4 {
		return "GPA must be between 0 and 4"
	}
	if req.Status != "" && !storage.ValidStudentStatus(req.Status) {
		return "Status must be one of active, inactive, graduated"
	}
	return ""
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.students.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"students": students})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := s.students.FindByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		apiError(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"student": st})
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentReq
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		apiError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Status == "" {
		req.Status = storage.StudentActive
	}

	st := &storage.Student{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Course: req.Course,
		GPA:    req.GPA,
		Status: req.Status,
	}
	err := s.students.Insert(r.Context(), st)
	if errors.Is(err, storage.ErrDuplicate) {
		apiError(w, http.StatusBadRequest, "Email already exists")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"message": "Student created successfully",
		"student": st,
	})
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentReq
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		apiError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Status == "" {
		req.Status = storage.StudentActive
	}

	st, err := s.students.Update(r.Context(), r.PathValue("id"), &storage.Student{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Course: req.Course,
		GPA:    req.GPA,
		Status: req.Status,
	})
	if errors.Is(err, storage.ErrNotFound) {
		apiError(w, http.StatusNotFound, "Student not found")
		return
	}
	if errors.Is(err, storage.ErrDuplicate) {
		apiError(w, http.StatusBadRequest, "Email already exists")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"message": "Student updated successfully",
		"student": st,
	})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	err := s.students.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		apiError(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Student deleted successfully"})
}
