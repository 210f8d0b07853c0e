package rest

import (
	"encoding/json"
	"net/http"

	"feedesk/internal/domain"

	"github.com/go-chi/chi/v5"
)

type studentRequest struct {
	FirstName           string                    `json:"first_name"`
	LastName            string                    `json:"last_name"`
	Email               string                    `json:"email"`
	DegreeType          string                    `json:"degree_type"`
	DegreeDurationYears int                       `json:"degree_duration_years"`
	Courses             []domain.CourseEnrollment `json:"courses"`
	LegacyCourse        string                    `json:"course,omitempty"`
	LegacyAcademicYear  string                    `json:"academic_year,omitempty"`
}

type studentResponse struct {
	ID                  string                    `json:"id"`
	FirstName           string                    `json:"first_name"`
	LastName            string                    `json:"last_name"`
	Email               string                    `json:"email"`
	DegreeType          string                    `json:"degree_type"`
	DegreeDurationYears int                       `json:"degree_duration_years"`
	Courses             []domain.CourseEnrollment `json:"courses"`
	EffectiveCourses    []domain.CourseEnrollment `json:"effective_courses"`
}

func toStudentResponse(s domain.Student) studentResponse {
	return studentResponse{
		ID:                  s.ID,
		FirstName:           s.FirstName,
		LastName:            s.LastName,
		Email:               s.Email,
		DegreeType:          s.DegreeType,
		DegreeDurationYears: s.DegreeDurationYears,
		Courses:             s.Courses,
		EffectiveCourses:    s.EffectiveCourses(),
	}
}

func (req studentRequest) toDomain() domain.Student {
	return domain.Student{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		DegreeType:          req.DegreeType,
		DegreeDurationYears: req.DegreeDurationYears,
		Courses:             req.Courses,
		LegacyCourse:        req.LegacyCourse,
		LegacyAcademicYear:  req.LegacyAcademicYear,
	}
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	student, err := h.students.Create(r.Context(), req.toDomain())
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	SuccessCreated(w, "student created", toStudentResponse(student))
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}

	out := make([]studentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentResponse(s))
	}
	Success(w, "", out)
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toStudentResponse(student))
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	student, err := h.students.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "student updated", toStudentResponse(student))
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.students.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "student deleted", nil)
}
