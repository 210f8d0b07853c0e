package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"feedesk/internal/domain"

	"github.com/go-chi/chi/v5"
)

type feePlanRequest struct {
	Course       string  `json:"course"`
	AcademicYear string  `json:"academic_year"`
	Tuition      float64 `json:"tuition"`
	Hostel       float64 `json:"hostel"`
	Library      float64 `json:"library"`
	Lab          float64 `json:"lab"`
	Sports       float64 `json:"sports"`
}

type feePlanResponse struct {
	ID           string     `json:"id"`
	Course       string     `json:"course"`
	AcademicYear string     `json:"academic_year"`
	Tuition      float64    `json:"tuition"`
	Hostel       float64    `json:"hostel"`
	Library      float64    `json:"library"`
	Lab          float64    `json:"lab"`
	Sports       float64    `json:"sports"`
	Total        float64    `json:"total"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func toFeePlanResponse(p domain.FeePlan) feePlanResponse {
	return feePlanResponse{
		ID:           p.ID,
		Course:       p.Course,
		AcademicYear: p.AcademicYear,
		Tuition:      p.Tuition,
		Hostel:       p.Hostel,
		Library:      p.Library,
		Lab:          p.Lab,
		Sports:       p.Sports,
		Total:        p.Total(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toFeePlanResponses(plans []domain.FeePlan) []feePlanResponse {
	out := make([]feePlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toFeePlanResponse(p))
	}
	return out
}

func (req feePlanRequest) toDomain() domain.FeePlan {
	return domain.FeePlan{
		Course:       req.Course,
		AcademicYear: req.AcademicYear,
		Tuition:      req.Tuition,
		Hostel:       req.Hostel,
		Library:      req.Library,
		Lab:          req.Lab,
		Sports:       req.Sports,
	}
}

func (h *Handler) createFeePlan(w http.ResponseWriter, r *http.Request) {
	var req feePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	plan, err := h.plans.Create(r.Context(), req.toDomain())
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	SuccessCreated(w, "fee plan created", toFeePlanResponse(plan))
}

func (h *Handler) listFeePlans(w http.ResponseWriter, r *http.Request) {
	var course, academicYear *string
	if v := r.URL.Query().Get("course"); v != "" {
		course = &v
	}
	if v := r.URL.Query().Get("academic_year"); v != "" {
		academicYear = &v
	}

	plans, err := h.plans.List(r.Context(), course, academicYear)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toFeePlanResponses(plans))
}

func (h *Handler) getFeePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toFeePlanResponse(plan))
}

func (h *Handler) updateFeePlan(w http.ResponseWriter, r *http.Request) {
	var req feePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	plan, err := h.plans.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "fee plan updated", toFeePlanResponse(plan))
}

func (h *Handler) deleteFeePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "fee plan deleted", nil)
}
