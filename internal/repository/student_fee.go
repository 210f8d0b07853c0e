package repository

import (
	"context"
	"database/sql"
	"errors"

	"feedesk/internal/domain"
)

type StudentFeeRepository struct {
	db *sql.DB
}

func NewStudentFeeRepository(db *sql.DB) *StudentFeeRepository {
	return &StudentFeeRepository{db: db}
}

const studentFeeColumns = `id, student_id, fee_plan_id, course, academic_year, tuition, hostel, library, lab, sports, amount_assigned, amount_paid, status, assigned_at, due_date, version`

func scanStudentFee(row interface{ Scan(...any) error }) (domain.StudentFee, error) {
	var f domain.StudentFee
	var status string
	var dueDate sql.NullTime
	err := row.Scan(
		&f.ID,
		&f.StudentID,
		&f.FeePlanID,
		&f.Course,
		&f.AcademicYear,
		&f.Tuition,
		&f.Hostel,
		&f.Library,
		&f.Lab,
		&f.Sports,
		&f.AmountAssigned,
		&f.AmountPaid,
		&status,
		&f.AssignedAt,
		&dueDate,
		&f.Version,
	)
	if err != nil {
		return domain.StudentFee{}, err
	}
	f.Status = domain.FeeStatus(status)
	if dueDate.Valid {
		f.DueDate = dueDate.Time
	}
	return f, nil
}

func (r *StudentFeeRepository) GetByID(ctx context.Context, id string) (domain.StudentFee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+studentFeeColumns+` FROM student_fees WHERE id = $1`, id)
	f, err := scanStudentFee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StudentFee{}, &domain.NotFoundError{Entity: "student fee", ID: id}
	}
	return f, err
}

func (r *StudentFeeRepository) ListAll(ctx context.Context) ([]domain.StudentFee, error) {
	return r.list(ctx, `SELECT `+studentFeeColumns+` FROM student_fees ORDER BY assigned_at DESC`)
}

func (r *StudentFeeRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.StudentFee, error) {
	return r.list(ctx, `SELECT `+studentFeeColumns+` FROM student_fees WHERE student_id = $1 ORDER BY assigned_at DESC`, studentID)
}

func (r *StudentFeeRepository) list(ctx context.Context, query string, args ...any) ([]domain.StudentFee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StudentFee
	for rows.Next() {
		f, err := scanStudentFee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ExistsAssignment reports whether the (student, plan, year) triple is
// already bound, which is how double assignment is refused.
func (r *StudentFeeRepository) ExistsAssignment(ctx context.Context, studentID, feePlanID, academicYear string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM student_fees
			WHERE student_id = $1 AND fee_plan_id = $2 AND academic_year = $3
		)`,
		studentID, feePlanID, academicYear,
	).Scan(&exists)
	return exists, err
}

func (r *StudentFeeRepository) Insert(ctx context.Context, f domain.StudentFee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO student_fees (id, student_id, fee_plan_id, course, academic_year, tuition, hostel, library, lab, sports, amount_assigned, amount_paid, status, assigned_at, due_date, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		f.ID, f.StudentID, f.FeePlanID, f.Course, f.AcademicYear,
		f.Tuition, f.Hostel, f.Library, f.Lab, f.Sports,
		f.AmountAssigned, f.AmountPaid, string(f.Status), f.AssignedAt, f.DueDate, f.Version,
	)
	return err
}

func (r *StudentFeeRepository) UpdateDueDate(ctx context.Context, id string, dueDate sql.NullTime) error {
	res, err := r.db.ExecContext(ctx, `UPDATE student_fees SET due_date = $1 WHERE id = $2`, dueDate, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "student fee", ID: id}
	}
	return nil
}

func (r *StudentFeeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_fees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "student fee", ID: id}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// updateFeeBalance persists a recomputed balance guarded by the version
// the caller read. Zero rows affected means a concurrent writer got there
// first and the caller must abort with ErrStaleFee.
func updateFeeBalance(ctx context.Context, q execer, f domain.StudentFee) error {
	res, err := q.ExecContext(ctx, `
		UPDATE student_fees
		SET amount_paid = $1, status = $2, version = version + 1
		WHERE id = $3 AND version = $4`,
		f.AmountPaid, string(f.Status), f.ID, f.Version,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrStaleFee
	}
	return nil
}
