package rest

import (
	"context"
	"net/http"
	"time"

	"feedesk/internal/domain"
	"feedesk/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type FeePlanService interface {
	Create(ctx context.Context, p domain.FeePlan) (domain.FeePlan, error)
	Get(ctx context.Context, id string) (domain.FeePlan, error)
	List(ctx context.Context, course, academicYear *string) ([]domain.FeePlan, error)
	Update(ctx context.Context, id string, p domain.FeePlan) (domain.FeePlan, error)
	Delete(ctx context.Context, id string) error
}

type StudentService interface {
	Create(ctx context.Context, s domain.Student) (domain.Student, error)
	Get(ctx context.Context, id string) (domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Update(ctx context.Context, id string, s domain.Student) (domain.Student, error)
	Delete(ctx context.Context, id string) error
}

type StudentFeeService interface {
	Assign(ctx context.Context, studentID, feePlanID string, dueDate time.Time) (domain.StudentFee, error)
	Get(ctx context.Context, id string) (domain.StudentFee, error)
	ListAll(ctx context.Context) ([]domain.StudentFee, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.StudentFee, error)
	UpdateDueDate(ctx context.Context, id string, dueDate time.Time) (domain.StudentFee, error)
	Delete(ctx context.Context, id string, cascade bool) error
}

type PaymentService interface {
	RecordPayment(ctx context.Context, payerUserID, studentFeeID string, method domain.PaymentMethod, amount float64, referenceNo, notes string) (domain.Payment, error)
	Reverse(ctx context.Context, paymentID string) error
	Get(ctx context.Context, id string) (domain.Payment, error)
	List(ctx context.Context, method *domain.PaymentMethod, from, to *time.Time) ([]domain.Payment, error)
	ListByStudentFee(ctx context.Context, studentFeeID string) ([]domain.Payment, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.Payment, error)
}

type ReportService interface {
	StartPaymentsReport(ctx context.Context, selected []string, filter repository.PaymentsFilter, userID int64) (string, error)
	StartFeesReport(ctx context.Context, selected []string, userID int64) (string, error)
}

type ExportListService interface {
	GetExports(ctx context.Context, userID int64) ([]interface{}, error)
	GetExport(ctx context.Context, exportID string, userID int64) (interface{}, error)
}

type Handler struct {
	plans    FeePlanService
	students StudentService
	fees     StudentFeeService
	payments PaymentService
	reports  ReportService
	exports  ExportListService
}

func NewHandler(plans FeePlanService, students StudentService, fees StudentFeeService, payments PaymentService, reports ReportService, exports ExportListService) *Handler {
	return &Handler{
		plans:    plans,
		students: students,
		fees:     fees,
		payments: payments,
		reports:  reports,
		exports:  exports,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/fee-plans", func(r chi.Router) {
			r.Post("/", h.createFeePlan)
			r.Get("/", h.listFeePlans)
			r.Get("/{id}", h.getFeePlan)
			r.Put("/{id}", h.updateFeePlan)
			r.Delete("/{id}", h.deleteFeePlan)
		})

		r.Route("/students", func(r chi.Router) {
			r.Post("/", h.createStudent)
			r.Get("/", h.listStudents)
			r.Get("/{id}", h.getStudent)
			r.Put("/{id}", h.updateStudent)
			r.Delete("/{id}", h.deleteStudent)
		})

		r.Route("/student-fees", func(r chi.Router) {
			r.Post("/", h.assignStudentFee)
			r.Get("/", h.listStudentFees)
			r.Get("/{id}", h.getStudentFee)
			r.Patch("/{id}/due-date", h.updateStudentFeeDueDate)
			r.Delete("/{id}", h.deleteStudentFee)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.recordPayment)
			r.Get("/", h.listPayments)
			r.Get("/{id}", h.getPayment)
			r.Delete("/{id}", h.reversePayment)
			r.Get("/student-fee/{studentFeeId}", h.listPaymentsByStudentFee)
			r.Get("/student/{studentId}", h.listPaymentsByStudent)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/payments", h.exportPayments)
			r.Post("/student-fees", h.exportStudentFees)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/", h.listExports)
			r.Get("/{export_id}", h.getExport)
		})
	})

	return r
}
