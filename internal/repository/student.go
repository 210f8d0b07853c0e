package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"feedesk/internal/domain"
)

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, first_name, last_name, email, degree_type, degree_duration_years, courses, legacy_course, legacy_academic_year, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (domain.Student, error) {
	var s domain.Student
	var coursesJSON []byte
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.DegreeType,
		&s.DegreeDurationYears,
		&coursesJSON,
		&s.LegacyCourse,
		&s.LegacyAcademicYear,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.Student{}, err
	}
	if len(coursesJSON) > 0 {
		if err := json.Unmarshal(coursesJSON, &s.Courses); err != nil {
			return domain.Student{}, fmt.Errorf("decode enrollments for student %s: %w", s.ID, err)
		}
	}
	return s, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id string) (domain.Student, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, &domain.NotFoundError{Entity: "student", ID: id}
	}
	return s, err
}

func (r *StudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StudentRepository) Insert(ctx context.Context, s domain.Student) error {
	coursesJSON, err := json.Marshal(s.Courses)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO students (id, first_name, last_name, email, degree_type, degree_duration_years, courses, legacy_course, legacy_academic_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.FirstName, s.LastName, s.Email, s.DegreeType, s.DegreeDurationYears, coursesJSON, s.LegacyCourse, s.LegacyAcademicYear,
	)
	return err
}

func (r *StudentRepository) Update(ctx context.Context, s domain.Student) error {
	coursesJSON, err := json.Marshal(s.Courses)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET first_name = $1, last_name = $2, email = $3, degree_type = $4, degree_duration_years = $5, courses = $6, legacy_course = $7, legacy_academic_year = $8, updated_at = now()
		WHERE id = $9`,
		s.FirstName, s.LastName, s.Email, s.DegreeType, s.DegreeDurationYears, coursesJSON, s.LegacyCourse, s.LegacyAcademicYear, s.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "student", ID: s.ID}
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "student", ID: id}
	}
	return nil
}
