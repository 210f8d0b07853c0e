package service

import (
	"context"
	"strings"

	"feedesk/internal/domain"

	"github.com/google/uuid"
)

type StudentDirectoryStore interface {
	GetByID(ctx context.Context, id string) (domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
	Insert(ctx context.Context, s domain.Student) error
	Update(ctx context.Context, s domain.Student) error
	Delete(ctx context.Context, id string) error
}

type StudentService struct {
	students StudentDirectoryStore
}

func NewStudentService(students StudentDirectoryStore) *StudentService {
	return &StudentService{students: students}
}

func (s *StudentService) Create(ctx context.Context, st domain.Student) (domain.Student, error) {
	if err := validateStudent(st); err != nil {
		return domain.Student{}, err
	}
	st.ID = uuid.NewString()
	if err := s.students.Insert(ctx, st); err != nil {
		return domain.Student{}, err
	}
	return st, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (domain.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *StudentService) List(ctx context.Context) ([]domain.Student, error) {
	return s.students.List(ctx)
}

func (s *StudentService) Update(ctx context.Context, id string, st domain.Student) (domain.Student, error) {
	if err := validateStudent(st); err != nil {
		return domain.Student{}, err
	}
	st.ID = id
	if err := s.students.Update(ctx, st); err != nil {
		return domain.Student{}, err
	}
	return st, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.students.Delete(ctx, id)
}

func validateStudent(st domain.Student) error {
	if st.FirstName == "" || st.LastName == "" {
		return &domain.ValidationError{Message: "first and last name are required"}
	}
	if !strings.Contains(st.Email, "@") {
		return &domain.ValidationError{Message: "email must be valid"}
	}

	primaries := 0
	for _, c := range st.Courses {
		if c.CourseName == "" {
			return &domain.ValidationError{Message: "course name is required for every enrollment"}
		}
		if c.EndYear <= c.StartYear {
			return &domain.ValidationError{Message: "enrollment end year must be after start year"}
		}
		if c.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return &domain.ValidationError{Message: "at most one enrollment may be marked primary"}
	}
	return nil
}
