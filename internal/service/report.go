package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"feedesk/internal/clients"
	"feedesk/internal/domain"
	"feedesk/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type ReportPaymentSource interface {
	List(ctx context.Context, f repository.PaymentsFilter) ([]domain.Payment, error)
}

type ReportFeeSource interface {
	ListAll(ctx context.Context) ([]domain.StudentFee, error)
}

type ReportStorage interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	GetURL(fileName string) string
}

type ReportNotifier interface {
	NotifyReportProgress(ctx context.Context, userID int64, reportID string, progress float64, stage string) error
	NotifyReportComplete(ctx context.Context, userID int64, reportID string, url, filename string) error
	NotifyReportFailed(ctx context.Context, userID int64, reportID string, errMsg string) error
}

type paymentColumn struct {
	Header string
	Value  func(p domain.Payment) any
}

var paymentReportColumns = map[string]paymentColumn{
	"id":             {Header: "ID", Value: func(p domain.Payment) any { return p.ID }},
	"student_fee_id": {Header: "Student fee", Value: func(p domain.Payment) any { return p.StudentFeeID }},
	"student_id":     {Header: "Student", Value: func(p domain.Payment) any { return p.StudentID }},
	"payer_user_id":  {Header: "Payer", Value: func(p domain.Payment) any { return p.PayerUserID }},
	"method":         {Header: "Method", Value: func(p domain.Payment) any { return string(p.Method) }},
	"amount":         {Header: "Amount", Value: func(p domain.Payment) any { return p.Amount }},
	"paid_at":        {Header: "Paid at", Value: func(p domain.Payment) any { return p.PaidAt }},
	"reference_no":   {Header: "Reference", Value: func(p domain.Payment) any { return p.ReferenceNo }},
	"notes":          {Header: "Notes", Value: func(p domain.Payment) any { return p.Notes }},
}

var defaultPaymentReportFields = []string{
	"paid_at", "id", "student_fee_id", "student_id", "payer_user_id",
	"method", "amount", "reference_no", "notes",
}

type feeColumn struct {
	Header string
	Value  func(f domain.StudentFee) any
}

var feeReportColumns = map[string]feeColumn{
	"id":              {Header: "ID", Value: func(f domain.StudentFee) any { return f.ID }},
	"student_id":      {Header: "Student", Value: func(f domain.StudentFee) any { return f.StudentID }},
	"course":          {Header: "Course", Value: func(f domain.StudentFee) any { return f.Course }},
	"academic_year":   {Header: "Academic year", Value: func(f domain.StudentFee) any { return f.AcademicYear }},
	"amount_assigned": {Header: "Assigned", Value: func(f domain.StudentFee) any { return f.AmountAssigned }},
	"amount_paid":     {Header: "Paid", Value: func(f domain.StudentFee) any { return f.AmountPaid }},
	"balance":         {Header: "Balance", Value: func(f domain.StudentFee) any { return f.Balance() }},
	"status":          {Header: "Status", Value: func(f domain.StudentFee) any { return string(f.Status) }},
	"assigned_at":     {Header: "Assigned at", Value: func(f domain.StudentFee) any { return f.AssignedAt }},
	"due_date":        {Header: "Due date", Value: func(f domain.StudentFee) any { return f.DueDate }},
}

var defaultFeeReportFields = []string{
	"student_id", "course", "academic_year", "amount_assigned",
	"amount_paid", "balance", "status", "due_date",
}

// ReportService generates XLSX reports of payments and fee balances in
// the background, tracking progress in Redis and pushing completion over
// the websocket hub.
type ReportService struct {
	payments ReportPaymentSource
	fees     ReportFeeSource
	redis    *clients.RedisClient
	store    ReportStorage
	ws       ReportNotifier
}

func NewReportService(payments ReportPaymentSource, fees ReportFeeSource, redis *clients.RedisClient, store ReportStorage, ws ReportNotifier) *ReportService {
	return &ReportService{payments: payments, fees: fees, redis: redis, store: store, ws: ws}
}

func (s *ReportService) StartPaymentsReport(ctx context.Context, selected []string, filter repository.PaymentsFilter, userID int64) (string, error) {
	if len(selected) == 0 {
		selected = defaultPaymentReportFields
	}

	reportID := fmt.Sprintf("exports:%s", uuid.NewString())
	status := &ExportStatus{
		Key:     reportID,
		Type:    "payments",
		UserID:  userID,
		Filters: paymentsFiltersMap(filter, selected),
		Created: time.Now(),
	}
	_ = saveExportStatus(ctx, s.redis, status)

	go s.runPaymentsReport(context.Background(), status, selected, filter)

	return reportID, nil
}

func (s *ReportService) runPaymentsReport(ctx context.Context, status *ExportStatus, selected []string, filter repository.PaymentsFilter) {
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("list payments failed: %v", err))
		return
	}

	f := excelize.NewFile()
	sheet := "Payments"
	f.SetSheetName(f.GetSheetName(0), sheet)

	var cols []paymentColumn
	for _, key := range selected {
		if col, ok := paymentReportColumns[key]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		s.fail(ctx, status, "no known fields selected")
		return
	}

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	total := len(payments)
	for i, p := range payments {
		for colIdx, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, i+2)
			_ = f.SetCellValue(sheet, cell, col.Value(p))
		}
		if (i+1)%1000 == 0 || i == total-1 {
			s.progress(ctx, status, rowProgress(i+1, total), "generating")
		}
	}

	s.finish(ctx, status, f, fmt.Sprintf("payments_%s.xlsx", time.Now().Format("20060102_150405")))
}

func (s *ReportService) StartFeesReport(ctx context.Context, selected []string, userID int64) (string, error) {
	if len(selected) == 0 {
		selected = defaultFeeReportFields
	}

	reportID := fmt.Sprintf("exports:%s", uuid.NewString())
	status := &ExportStatus{
		Key:     reportID,
		Type:    "student_fees",
		UserID:  userID,
		Filters: map[string]interface{}{"fields": selected},
		Created: time.Now(),
	}
	_ = saveExportStatus(ctx, s.redis, status)

	go s.runFeesReport(context.Background(), status, selected)

	return reportID, nil
}

func (s *ReportService) runFeesReport(ctx context.Context, status *ExportStatus, selected []string) {
	fees, err := s.fees.ListAll(ctx)
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("list student fees failed: %v", err))
		return
	}

	f := excelize.NewFile()
	sheet := "Student fees"
	f.SetSheetName(f.GetSheetName(0), sheet)

	var cols []feeColumn
	for _, key := range selected {
		if col, ok := feeReportColumns[key]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		s.fail(ctx, status, "no known fields selected")
		return
	}

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	total := len(fees)
	for i, fee := range fees {
		for colIdx, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, i+2)
			_ = f.SetCellValue(sheet, cell, col.Value(fee))
		}
		if (i+1)%1000 == 0 || i == total-1 {
			s.progress(ctx, status, rowProgress(i+1, total), "generating")
		}
	}

	s.finish(ctx, status, f, fmt.Sprintf("student_fees_%s.xlsx", time.Now().Format("20060102_150405")))
}

func (s *ReportService) finish(ctx context.Context, status *ExportStatus, f *excelize.File, fileName string) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("write workbook failed: %v", err))
		return
	}

	if s.store == nil {
		s.fail(ctx, status, "report storage not configured")
		return
	}

	s.progress(ctx, status, 95, "uploading")

	savedName, err := s.store.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("save report failed: %v", err))
		return
	}

	url := s.store.GetURL(savedName)
	status.FileURL = &url
	status.Progress = 100
	_ = saveExportStatus(ctx, s.redis, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, status.UserID, status.Key, 100, "ready")
		_ = s.ws.NotifyReportComplete(ctx, status.UserID, status.Key, url, fileName)
	}
}

func (s *ReportService) progress(ctx context.Context, status *ExportStatus, progress float64, stage string) {
	status.Progress = progress
	_ = saveExportStatus(ctx, s.redis, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportProgress(ctx, status.UserID, status.Key, progress, stage)
	}
}

func (s *ReportService) fail(ctx context.Context, status *ExportStatus, errMsg string) {
	log.Printf("[REPORTS] %s: %s", status.Key, errMsg)
	status.Error = &errMsg
	status.Progress = 100
	_ = saveExportStatus(ctx, s.redis, status)
	if s.ws != nil {
		_ = s.ws.NotifyReportFailed(ctx, status.UserID, status.Key, errMsg)
	}
}

// rowProgress caps generation progress at 95; the last 5 points belong to
// the upload stage.
func rowProgress(done, total int) float64 {
	if total == 0 {
		return 95
	}
	p := math.Round(float64(done) / float64(total) * 100.0)
	if p >= 100 {
		p = 95
	}
	return p
}

func paymentsFiltersMap(f repository.PaymentsFilter, fields []string) map[string]interface{} {
	m := map[string]interface{}{"fields": fields}
	if f.Method != nil {
		m["method"] = *f.Method
	} else {
		m["method"] = nil
	}
	if f.PaidAtFrom != nil {
		m["paid_at_from"] = f.PaidAtFrom.Format("2006-01-02")
	} else {
		m["paid_at_from"] = nil
	}
	if f.PaidAtTo != nil {
		m["paid_at_to"] = f.PaidAtTo.Format("2006-01-02")
	} else {
		m["paid_at_to"] = nil
	}
	if f.StudentID != nil {
		m["student_id"] = *f.StudentID
	} else {
		m["student_id"] = nil
	}
	return m
}
