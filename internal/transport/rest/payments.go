package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"feedesk/internal/domain"
	"feedesk/internal/transport/auth"

	"github.com/go-chi/chi/v5"
)

type recordPaymentRequest struct {
	StudentFeeID string  `json:"student_fee_id"`
	Method       string  `json:"method"`
	Amount       float64 `json:"amount"`
	ReferenceNo  string  `json:"reference_no"`
	Notes        string  `json:"notes"`
}

type paymentResponse struct {
	ID           string    `json:"id"`
	StudentFeeID string    `json:"student_fee_id"`
	StudentID    string    `json:"student_id"`
	PayerUserID  string    `json:"payer_user_id,omitempty"`
	Method       string    `json:"method"`
	Amount       float64   `json:"amount"`
	PaidAt       time.Time `json:"paid_at"`
	ReferenceNo  string    `json:"reference_no,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

func toPaymentResponse(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:           p.ID,
		StudentFeeID: p.StudentFeeID,
		StudentID:    p.StudentID,
		PayerUserID:  p.PayerUserID,
		Method:       string(p.Method),
		Amount:       p.Amount,
		PaidAt:       p.PaidAt,
		ReferenceNo:  p.ReferenceNo,
		Notes:        p.Notes,
	}
}

func toPaymentResponses(payments []domain.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if req.StudentFeeID == "" {
		ErrorBadRequest(w, "student_fee_id is required")
		return
	}

	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	var payerUserID string
	if userID, err := auth.GetUserID(r.Context()); err == nil {
		payerUserID = strconv.FormatInt(userID, 10)
	}

	payment, err := h.payments.RecordPayment(r.Context(), payerUserID, req.StudentFeeID, method, req.Amount, req.ReferenceNo, req.Notes)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	SuccessCreated(w, "payment recorded", toPaymentResponse(payment))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var method *domain.PaymentMethod
	if raw := q.Get("method"); raw != "" {
		m, err := domain.ParsePaymentMethod(raw)
		if err != nil {
			ErrorBadRequest(w, err.Error())
			return
		}
		method = &m
	}

	from, err := toDatePtr(q.Get("from"))
	if err != nil {
		ErrorBadRequest(w, "from must be YYYY-MM-DD")
		return
	}
	to, err := toDatePtr(q.Get("to"))
	if err != nil {
		ErrorBadRequest(w, "to must be YYYY-MM-DD")
		return
	}
	if (from == nil) != (to == nil) {
		ErrorBadRequest(w, "from and to must be provided together")
		return
	}

	payments, err := h.payments.List(r.Context(), method, from, to)
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toPaymentResponses(payments))
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toPaymentResponse(payment))
}

func (h *Handler) reversePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.payments.Reverse(r.Context(), chi.URLParam(r, "id")); err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "payment reversed", nil)
}

func (h *Handler) listPaymentsByStudentFee(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListByStudentFee(r.Context(), chi.URLParam(r, "studentFeeId"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toPaymentResponses(payments))
}

func (h *Handler) listPaymentsByStudent(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListByStudent(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		ErrorFromDomain(w, err)
		return
	}
	Success(w, "", toPaymentResponses(payments))
}
