package rest

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"feedesk/internal/repository"
	"feedesk/internal/transport/auth"
)

type PaymentsReportRequest struct {
	Fields       []string
	Method       *string
	From         *string
	To           *string
	StudentFeeID *string
	StudentID    *string
}

type rawPaymentsReportRequest struct {
	Fields       []string    `json:"fields"`
	Method       interface{} `json:"method"`
	From         interface{} `json:"from"`
	To           interface{} `json:"to"`
	StudentFeeID interface{} `json:"student_fee_id"`
	StudentID    interface{} `json:"student_id"`
}

func ValidatePaymentsReportRequest(r *http.Request) (*PaymentsReportRequest, error) {
	var raw rawPaymentsReportRequest

	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}

	if len(raw.Fields) == 0 {
		return nil, &ValidationError{Field: "fields", Message: "fields is required and must be an array"}
	}

	method, err := toStringPtr(raw.Method)
	if err != nil {
		return nil, &ValidationError{Field: "method", Message: "method must be string or empty"}
	}

	from, err := toStringPtr(raw.From)
	if err != nil {
		return nil, &ValidationError{Field: "from", Message: "from must be a YYYY-MM-DD string or empty"}
	}

	to, err := toStringPtr(raw.To)
	if err != nil {
		return nil, &ValidationError{Field: "to", Message: "to must be a YYYY-MM-DD string or empty"}
	}

	studentFeeID, err := toStringPtr(raw.StudentFeeID)
	if err != nil {
		return nil, &ValidationError{Field: "student_fee_id", Message: "student_fee_id must be string or empty"}
	}

	studentID, err := toStringPtr(raw.StudentID)
	if err != nil {
		return nil, &ValidationError{Field: "student_id", Message: "student_id must be string or empty"}
	}

	return &PaymentsReportRequest{
		Fields:       raw.Fields,
		Method:       method,
		From:         from,
		To:           to,
		StudentFeeID: studentFeeID,
		StudentID:    studentID,
	}, nil
}

func (req *PaymentsReportRequest) ToRepositoryFilter() (repository.PaymentsFilter, error) {
	f := repository.PaymentsFilter{
		Method:       req.Method,
		StudentFeeID: req.StudentFeeID,
		StudentID:    req.StudentID,
	}

	if req.From != nil {
		from, err := toDatePtr(*req.From)
		if err != nil {
			return f, &ValidationError{Field: "from", Message: "from must be YYYY-MM-DD"}
		}
		f.PaidAtFrom = from
	}
	if req.To != nil {
		to, err := toDatePtr(*req.To)
		if err != nil {
			return f, &ValidationError{Field: "to", Message: "to must be YYYY-MM-DD"}
		}
		f.PaidAtTo = to
	}

	return f, nil
}

func (h *Handler) exportPayments(w http.ResponseWriter, r *http.Request) {
	req, err := ValidatePaymentsReportRequest(r)
	if err != nil {
		if _, ok := err.(*ValidationError); ok {
			ErrorBadRequest(w, err.Error())
			return
		}
		ErrorBadRequest(w, "invalid JSON")
		return
	}

	filter, err := req.ToRepositoryFilter()
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID, err := h.reports.StartPaymentsReport(r.Context(), req.Fields, filter, userID)
	if err != nil {
		log.Printf("[HTTP] startPaymentsReport error: %v", err)
		ErrorInternal(w, "failed to start report")
		return
	}

	SuccessAccepted(w, "Report queued", map[string]interface{}{
		"export_id": exportID,
	})
}

func (h *Handler) exportStudentFees(w http.ResponseWriter, r *http.Request) {
	var raw struct {
		Fields []string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		ErrorBadRequest(w, "invalid JSON")
		return
	}
	if len(raw.Fields) == 0 {
		ErrorBadRequest(w, "fields is required and must be an array")
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID, err := h.reports.StartFeesReport(r.Context(), raw.Fields, userID)
	if err != nil {
		log.Printf("[HTTP] startFeesReport error: %v", err)
		ErrorInternal(w, "failed to start report")
		return
	}

	SuccessAccepted(w, "Report queued", map[string]interface{}{
		"export_id": exportID,
	})
}
