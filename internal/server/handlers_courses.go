package server

import (
	"errors"
	"net/http"

	"github.com/anjali918/Student-Management-System/internal/storage"
)

type courseReq struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Credits     int    `json:"credits"`
	Duration    int    `json:"duration"`
	Status      string `json:"status"`
}

func (req *courseReq) validate() string {
	if req.Name == "" || req.Code == "" {
		return "Name and code are required"
	}
	if req.Credits < 0 {
		return "Credits must be at least 1"
	}
	if req.Duration < 0 {
		return "Duration must be at least 1"
	}
	if req.Status != "" && !storage.ValidCourseStatus(req.Status) {
		return "Status must be one of active, inactive, completed"
	}
	return ""
}

// applyDefaults fills the catalog defaults for omitted numeric fields.
func (req *courseReq) applyDefaults() {
	if req.Credits == 0 {
		req.Credits = 3
	}
	if req.Duration == 0 {
		req.Duration = 12
	}
	if req.Status == "" {
		req.Status = storage.CourseActive
	}
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.courses.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"courses": courses})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.courses.FindByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		apiError(w, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"course": c})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseReq
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		apiError(w, http.StatusBadRequest, msg)
		return
	}
	req.applyDefaults()

	c := &storage.Course{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Instructor:  req.Instructor,
		Credits:     req.Credits,
		Duration:    req.Duration,
		Status:      req.Status,
	}
	err := s.courses.Insert(r.Context(), c)
	if errors.Is(err, storage.ErrDuplicate) {
		apiError(w, http.StatusBadRequest, "Course code already exists")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"message": "Course created successfully",
		"course":  c,
	})
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseReq
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		apiError(w, http.StatusBadRequest, msg)
		return
	}
	req.applyDefaults()

	c, err := s.courses.Update(r.Context(), r.PathValue("id"), &storage.Course{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Instructor:  req.Instructor,
		Credits:     req.Credits,
		Duration:    req.Duration,
		Status:      req.Status,
	})
	if errors.Is(err, storage.ErrNotFound) {
		apiError(w, http.StatusNotFound, "Course not found")
		return
	}
	if errors.Is(err, storage.ErrDuplicate) {
		apiError(w, http.StatusBadRequest, "Course code already exists")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"message": "Course updated successfully",
		"course":  c,
	})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := s.courses.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		apiError(w, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Course deleted successfully"})
}
