package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"feedesk/internal/domain"
)

type FeePlansFilter struct {
	Course       *string
	AcademicYear *string
}

type FeePlanRepository struct {
	db *sql.DB
}

func NewFeePlanRepository(db *sql.DB) *FeePlanRepository {
	return &FeePlanRepository{db: db}
}

const feePlanColumns = `id, course, academic_year, tuition, hostel, library, lab, sports, created_at, updated_at`

func scanFeePlan(row interface{ Scan(...any) error }) (domain.FeePlan, error) {
	var p domain.FeePlan
	err := row.Scan(
		&p.ID,
		&p.Course,
		&p.AcademicYear,
		&p.Tuition,
		&p.Hostel,
		&p.Library,
		&p.Lab,
		&p.Sports,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *FeePlanRepository) GetByID(ctx context.Context, id string) (domain.FeePlan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+feePlanColumns+` FROM fee_plans WHERE id = $1`, id)
	p, err := scanFeePlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FeePlan{}, &domain.NotFoundError{Entity: "fee plan", ID: id}
	}
	return p, err
}

func (r *FeePlanRepository) List(ctx context.Context, f FeePlansFilter) ([]domain.FeePlan, error) {
	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.Course != nil && *f.Course != "" {
		where = append(where, fmt.Sprintf("course = $%d", i))
		args = append(args, *f.Course)
		i++
	}
	if f.AcademicYear != nil && *f.AcademicYear != "" {
		where = append(where, fmt.Sprintf("academic_year = $%d", i))
		args = append(args, *f.AcademicYear)
		i++
	}

	query := `SELECT ` + feePlanColumns + ` FROM fee_plans WHERE ` + strings.Join(where, " AND ") + ` ORDER BY course, academic_year`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FeePlan
	for rows.Next() {
		p, err := scanFeePlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *FeePlanRepository) ExistsByCourseAndYear(ctx context.Context, course, academicYear string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM fee_plans WHERE course = $1 AND academic_year = $2)`,
		course, academicYear,
	).Scan(&exists)
	return exists, err
}

func (r *FeePlanRepository) Insert(ctx context.Context, p domain.FeePlan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fee_plans (id, course, academic_year, tuition, hostel, library, lab, sports)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Course, p.AcademicYear, p.Tuition, p.Hostel, p.Library, p.Lab, p.Sports,
	)
	return err
}

func (r *FeePlanRepository) Update(ctx context.Context, p domain.FeePlan) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE fee_plans
		SET course = $1, academic_year = $2, tuition = $3, hostel = $4, library = $5, lab = $6, sports = $7, updated_at = now()
		WHERE id = $8`,
		p.Course, p.AcademicYear, p.Tuition, p.Hostel, p.Library, p.Lab, p.Sports, p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "fee plan", ID: p.ID}
	}
	return nil
}

func (r *FeePlanRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fee_plans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "fee plan", ID: id}
	}
	return nil
}
