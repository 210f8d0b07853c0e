package service

import (
	"context"
	"database/sql"

	"feedesk/internal/domain"
	"feedesk/internal/repository"
)

// In-memory stores backing the service tests. They keep the same
// consistency rules as the SQL repositories: CreateWithFee and
// ReverseWithFee apply the payment and the fee update together.

type fakePlans struct {
	plans map[string]domain.FeePlan
}

func newFakePlans(plans ...domain.FeePlan) *fakePlans {
	f := &fakePlans{plans: map[string]domain.FeePlan{}}
	for _, p := range plans {
		f.plans[p.ID] = p
	}
	return f
}

func (f *fakePlans) GetByID(ctx context.Context, id string) (domain.FeePlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return domain.FeePlan{}, &domain.NotFoundError{Entity: "fee plan", ID: id}
	}
	return p, nil
}

func (f *fakePlans) List(ctx context.Context, filter repository.FeePlansFilter) ([]domain.FeePlan, error) {
	var out []domain.FeePlan
	for _, p := range f.plans {
		if filter.Course != nil && p.Course != *filter.Course {
			continue
		}
		if filter.AcademicYear != nil && p.AcademicYear != *filter.AcademicYear {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlans) ExistsByCourseAndYear(ctx context.Context, course, academicYear string) (bool, error) {
	for _, p := range f.plans {
		if p.Course == course && p.AcademicYear == academicYear {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePlans) Insert(ctx context.Context, p domain.FeePlan) error {
	f.plans[p.ID] = p
	return nil
}

func (f *fakePlans) Update(ctx context.Context, p domain.FeePlan) error {
	if _, ok := f.plans[p.ID]; !ok {
		return &domain.NotFoundError{Entity: "fee plan", ID: p.ID}
	}
	f.plans[p.ID] = p
	return nil
}

func (f *fakePlans) Delete(ctx context.Context, id string) error {
	if _, ok := f.plans[id]; !ok {
		return &domain.NotFoundError{Entity: "fee plan", ID: id}
	}
	delete(f.plans, id)
	return nil
}

type fakeStudents struct {
	students map[string]domain.Student
}

func newFakeStudents(students ...domain.Student) *fakeStudents {
	f := &fakeStudents{students: map[string]domain.Student{}}
	for _, s := range students {
		f.students[s.ID] = s
	}
	return f
}

func (f *fakeStudents) GetByID(ctx context.Context, id string) (domain.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return domain.Student{}, &domain.NotFoundError{Entity: "student", ID: id}
	}
	return s, nil
}

func (f *fakeStudents) List(ctx context.Context) ([]domain.Student, error) {
	var out []domain.Student
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStudents) Insert(ctx context.Context, s domain.Student) error {
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudents) Update(ctx context.Context, s domain.Student) error {
	if _, ok := f.students[s.ID]; !ok {
		return &domain.NotFoundError{Entity: "student", ID: s.ID}
	}
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudents) Delete(ctx context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return &domain.NotFoundError{Entity: "student", ID: id}
	}
	delete(f.students, id)
	return nil
}

type fakeFees struct {
	fees map[string]domain.StudentFee
}

func newFakeFees(fees ...domain.StudentFee) *fakeFees {
	f := &fakeFees{fees: map[string]domain.StudentFee{}}
	for _, fee := range fees {
		f.fees[fee.ID] = fee
	}
	return f
}

func (f *fakeFees) GetByID(ctx context.Context, id string) (domain.StudentFee, error) {
	fee, ok := f.fees[id]
	if !ok {
		return domain.StudentFee{}, &domain.NotFoundError{Entity: "student fee", ID: id}
	}
	return fee, nil
}

func (f *fakeFees) ListAll(ctx context.Context) ([]domain.StudentFee, error) {
	var out []domain.StudentFee
	for _, fee := range f.fees {
		out = append(out, fee)
	}
	return out, nil
}

func (f *fakeFees) ListByStudent(ctx context.Context, studentID string) ([]domain.StudentFee, error) {
	var out []domain.StudentFee
	for _, fee := range f.fees {
		if fee.StudentID == studentID {
			out = append(out, fee)
		}
	}
	return out, nil
}

func (f *fakeFees) ExistsAssignment(ctx context.Context, studentID, feePlanID, academicYear string) (bool, error) {
	for _, fee := range f.fees {
		if fee.StudentID == studentID && fee.FeePlanID == feePlanID && fee.AcademicYear == academicYear {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFees) Insert(ctx context.Context, fee domain.StudentFee) error {
	f.fees[fee.ID] = fee
	return nil
}

func (f *fakeFees) UpdateDueDate(ctx context.Context, id string, dueDate sql.NullTime) error {
	fee, ok := f.fees[id]
	if !ok {
		return &domain.NotFoundError{Entity: "student fee", ID: id}
	}
	fee.DueDate = dueDate.Time
	f.fees[id] = fee
	return nil
}

func (f *fakeFees) Delete(ctx context.Context, id string) error {
	if _, ok := f.fees[id]; !ok {
		return &domain.NotFoundError{Entity: "student fee", ID: id}
	}
	delete(f.fees, id)
	return nil
}

type fakePayments struct {
	payments map[string]domain.Payment
	fees     *fakeFees

	lastFilter *repository.PaymentsFilter
	stale      bool
}

func newFakePayments(fees *fakeFees) *fakePayments {
	return &fakePayments{payments: map[string]domain.Payment{}, fees: fees}
}

func (f *fakePayments) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return domain.Payment{}, &domain.NotFoundError{Entity: "payment", ID: id}
	}
	return p, nil
}

func (f *fakePayments) List(ctx context.Context, filter repository.PaymentsFilter) ([]domain.Payment, error) {
	f.lastFilter = &filter

	var out []domain.Payment
	for _, p := range f.payments {
		if filter.Method != nil && string(p.Method) != *filter.Method {
			continue
		}
		if filter.PaidAtFrom != nil && p.PaidAt.Before(*filter.PaidAtFrom) {
			continue
		}
		if filter.PaidAtTo != nil && p.PaidAt.After(*filter.PaidAtTo) {
			continue
		}
		if filter.StudentFeeID != nil && p.StudentFeeID != *filter.StudentFeeID {
			continue
		}
		if filter.StudentID != nil && p.StudentID != *filter.StudentID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePayments) ListByStudentFee(ctx context.Context, studentFeeID string) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range f.payments {
		if p.StudentFeeID == studentFeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) CreateWithFee(ctx context.Context, p domain.Payment, fee domain.StudentFee) error {
	if f.stale {
		return domain.ErrStaleFee
	}
	f.payments[p.ID] = p
	f.fees.fees[fee.ID] = fee
	return nil
}

func (f *fakePayments) ReverseWithFee(ctx context.Context, paymentID string, fee domain.StudentFee) error {
	if f.stale {
		return domain.ErrStaleFee
	}
	if _, ok := f.payments[paymentID]; !ok {
		return &domain.NotFoundError{Entity: "payment", ID: paymentID}
	}
	f.fees.fees[fee.ID] = fee
	delete(f.payments, paymentID)
	return nil
}

func (f *fakePayments) DeleteByStudentFee(ctx context.Context, studentFeeID string) error {
	for id, p := range f.payments {
		if p.StudentFeeID == studentFeeID {
			delete(f.payments, id)
		}
	}
	return nil
}
