package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"feedesk/internal/domain"

	"github.com/google/uuid"
)

type FeePlanStore interface {
	GetByID(ctx context.Context, id string) (domain.FeePlan, error)
}

type StudentStore interface {
	GetByID(ctx context.Context, id string) (domain.Student, error)
}

type StudentFeeStore interface {
	GetByID(ctx context.Context, id string) (domain.StudentFee, error)
	ListAll(ctx context.Context) ([]domain.StudentFee, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.StudentFee, error)
	ExistsAssignment(ctx context.Context, studentID, feePlanID, academicYear string) (bool, error)
	Insert(ctx context.Context, f domain.StudentFee) error
	UpdateDueDate(ctx context.Context, id string, dueDate sql.NullTime) error
	Delete(ctx context.Context, id string) error
}

type FeePaymentStore interface {
	ListByStudentFee(ctx context.Context, studentFeeID string) ([]domain.Payment, error)
	DeleteByStudentFee(ctx context.Context, studentFeeID string) error
}

// StudentFeeService is the fee assignment engine: it binds a fee plan to
// the right enrollment of a student and materializes the billable record.
type StudentFeeService struct {
	fees     StudentFeeStore
	plans    FeePlanStore
	students StudentStore
	payments FeePaymentStore
}

func NewStudentFeeService(fees StudentFeeStore, plans FeePlanStore, students StudentStore, payments FeePaymentStore) *StudentFeeService {
	return &StudentFeeService{fees: fees, plans: plans, students: students, payments: payments}
}

// Assign validates the (student, plan) pairing and creates the StudentFee
// snapshot. Checks run in a fixed order and each failure is reported
// before anything is written:
//
//  1. the plan must exist,
//  2. its academic year label must parse,
//  3. the triple (student, plan, year) must not be bound yet,
//  4. the plan's course must match one of the student's courses
//     case-insensitively,
//  5. the first matching enrollment whose year span contains the plan's
//     span becomes the binding enrollment.
func (s *StudentFeeService) Assign(ctx context.Context, studentID, feePlanID string, dueDate time.Time) (domain.StudentFee, error) {
	plan, err := s.plans.GetByID(ctx, feePlanID)
	if err != nil {
		return domain.StudentFee{}, err
	}

	planStart, planEnd, err := domain.ParseAcademicYear(plan.AcademicYear)
	if err != nil {
		return domain.StudentFee{}, &domain.ValidationError{Message: "fee plan academic year is invalid"}
	}

	assigned, err := s.fees.ExistsAssignment(ctx, studentID, plan.ID, plan.AcademicYear)
	if err != nil {
		return domain.StudentFee{}, err
	}
	if assigned {
		return domain.StudentFee{}, &domain.ConflictError{
			Message: "fee plan already assigned to this student for the same academic year",
		}
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return domain.StudentFee{}, err
	}
	courses := student.EffectiveCourses()

	nameMatches := false
	for _, c := range courses {
		if strings.EqualFold(c.CourseName, plan.Course) {
			nameMatches = true
			break
		}
	}
	if !nameMatches {
		return domain.StudentFee{}, &domain.ValidationError{
			Message: fmt.Sprintf(
				"fee plan course must match one of the student's enrolled courses. Student courses: %s",
				courseNames(courses),
			),
		}
	}

	// A dual-degree student can hold several enrollments with matching
	// names; the binding enrollment is the first whose duration contains
	// the plan's span, so later duration checks line up with the right
	// degree.
	var binding *domain.CourseEnrollment
	for i, c := range courses {
		if planStart >= c.StartYear && planEnd <= c.EndYear {
			binding = &courses[i]
			break
		}
	}
	if binding == nil {
		return domain.StudentFee{}, &domain.ValidationError{
			Message: "fee plan academic year must fall within the student's course duration",
		}
	}

	fee := domain.StudentFee{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		FeePlanID:      plan.ID,
		Course:         binding.CourseName,
		AcademicYear:   plan.AcademicYear,
		Tuition:        plan.Tuition,
		Hostel:         plan.Hostel,
		Library:        plan.Library,
		Lab:            plan.Lab,
		Sports:         plan.Sports,
		AmountAssigned: plan.Total(),
		AmountPaid:     0,
		Status:         domain.FeeStatusPending,
		AssignedAt:     time.Now(),
		DueDate:        dueDate,
	}

	if err := s.fees.Insert(ctx, fee); err != nil {
		return domain.StudentFee{}, err
	}

	log.Printf("[FEES] assigned plan %s to student %s (fee %s, amount %.2f)", plan.ID, studentID, fee.ID, fee.AmountAssigned)
	return fee, nil
}

func courseNames(courses []domain.CourseEnrollment) string {
	seen := map[string]bool{}
	var names []string
	for _, c := range courses {
		if c.CourseName == "" || seen[c.CourseName] {
			continue
		}
		seen[c.CourseName] = true
		names = append(names, c.CourseName)
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func (s *StudentFeeService) Get(ctx context.Context, id string) (domain.StudentFee, error) {
	return s.fees.GetByID(ctx, id)
}

func (s *StudentFeeService) ListAll(ctx context.Context) ([]domain.StudentFee, error) {
	return s.fees.ListAll(ctx)
}

func (s *StudentFeeService) ListByStudent(ctx context.Context, studentID string) ([]domain.StudentFee, error) {
	return s.fees.ListByStudent(ctx, studentID)
}

func (s *StudentFeeService) UpdateDueDate(ctx context.Context, id string, dueDate time.Time) (domain.StudentFee, error) {
	if err := s.fees.UpdateDueDate(ctx, id, sql.NullTime{Time: dueDate, Valid: !dueDate.IsZero()}); err != nil {
		return domain.StudentFee{}, err
	}
	return s.fees.GetByID(ctx, id)
}

// Delete removes a student fee. Without cascade it refuses when payments
// reference the fee; with cascade it deletes those payments first (no
// balance recomputation, the fee itself is going away).
func (s *StudentFeeService) Delete(ctx context.Context, id string, cascade bool) error {
	if _, err := s.fees.GetByID(ctx, id); err != nil {
		return err
	}

	payments, err := s.payments.ListByStudentFee(ctx, id)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		if !cascade {
			return &domain.ConflictError{
				Message: fmt.Sprintf("student fee has %d payment(s); delete them first or request a cascade delete", len(payments)),
			}
		}
		if err := s.payments.DeleteByStudentFee(ctx, id); err != nil {
			return err
		}
		log.Printf("[FEES] cascade-deleted %d payment(s) for fee %s", len(payments), id)
	}

	return s.fees.Delete(ctx, id)
}
