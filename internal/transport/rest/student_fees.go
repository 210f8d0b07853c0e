package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"feedesk/internal/domain"

	"github.com/go-chi/chi/v5"
)

type assignFeeRequest struct {
	StudentID string `json:"student_id"`
	FeePlanID string `json:"fee_plan_id"`
	DueDate   string `json:"due_date"` // YYYY-MM-DD
}

type dueDateRequest struct {
	DueDate string `json:"due_date"` // YYYY-MM-DD
}

type studentFeeResponse struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	FeePlanID      string    `json:"fee_plan_id"`
	Course         string    `json:"course"`
	AcademicYear   string    `json:"academic_year"`
	Tuition        float64   `json:"tuition"`
	Hostel         float64   `json:"hostel"`
	Library        float64   `json:"library"`
	Lab            float64   `json:"lab"`
	Sports         float64   `json:"sports"`
	AmountAssigned float64   `json:"amount_assigned"`
	AmountPaid     float64   `json:"amount_paid"`
	Balance        float64   `json:"balance"`
	Status         string    `json:"status"`
	AssignedAt     time.Time `json:"assigned_at"`
	DueDate        time.Time `json:"due_date"`
}

func toStudentFeeResponse(f domain.StudentFee) studentFeeResponse {
	return studentFeeResponse{
		ID:             f.ID,
		StudentID:      f.StudentID,
		FeePlanID:      f.FeePlanID,
		Course:         f.Course,
		AcademicYear:   f.AcademicYear,
		Tuition:        f.Tuition,
		Hostel:         f.Hostel,
		Library:        f.Library,
		Lab:            f.Lab,
		Sports:         f.Sports,
		AmountAssigned: f.AmountAssigned,
		AmountPaid:     f.AmountPaid,
		Balance:        f.Balance(),
		Status:         string(f.Status),
		AssignedAt:     f.AssignedAt,
		DueDate:        f.DueDate,
	}
}

func toStudentFeeResponses(fees []domain.StudentFee) []studentFeeResponse {
	out := make([]studentFeeResponse, 0, len(fees))
	for _, f := range fees {
		out = append(out, toStudentFeeResponse(f))
	}
	return out
}

func (h *Handler) assignStudentFee(w http.ResponseWriter, r *http.Request) {
	var req assignFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.StudentID == "" || req.FeePlanID == "" {
		ErrorBadRequest(w, "student_id and fee_plan_id are required")
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			ErrorBadRequest(w, "due_date must be YYYY-MM-DD")
			return
		}
		dueDate = parsed
	}

	fee, err := h.fees.Assign(r.Context(), req.StudentID, req.FeePlanID, dueDate)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	SuccessCreated(w, "fee assigned", toStudentFeeResponse(fee))
}

func (h *Handler) listStudentFees(w http.ResponseWriter, r *http.Request) {
	var (
		fees []domain.StudentFee
		err  error
	)
	if studentID := r.URL.Query().Get("student_id"); studentID != "" {
		fees, err = h.fees.ListByStudent(r.Context(), studentID)
	} else {
		fees, err = h.fees.ListAll(r.Context())
	}
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toStudentFeeResponses(fees))
}

func (h *Handler) getStudentFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.fees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toStudentFeeResponse(fee))
}

func (h *Handler) updateStudentFeeDueDate(w http.ResponseWriter, r *http.Request) {
	var req dueDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		ErrorBadRequest(w, "due_date must be YYYY-MM-DD")
		return
	}

	fee, err := h.fees.UpdateDueDate(r.Context(), chi.URLParam(r, "id"), dueDate)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "due date updated", toStudentFeeResponse(fee))
}

func (h *Handler) deleteStudentFee(w http.ResponseWriter, r *http.Request) {
	cascade := r.URL.Query().Get("cascade") == "true"

	if err := h.fees.Delete(r.Context(), chi.URLParam(r, "id"), cascade); err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "student fee deleted", nil)
}
