package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"feedesk/internal/domain"
)

type PaymentsFilter struct {
	Method       *string
	PaidAtFrom   *time.Time
	PaidAtTo     *time.Time
	StudentFeeID *string
	StudentID    *string
}

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, student_fee_id, student_id, payer_user_id, method, amount, paid_at, reference_no, notes`

func scanPayment(row interface{ Scan(...any) error }) (domain.Payment, error) {
	var p domain.Payment
	var method string
	err := row.Scan(
		&p.ID,
		&p.StudentFeeID,
		&p.StudentID,
		&p.PayerUserID,
		&method,
		&p.Amount,
		&p.PaidAt,
		&p.ReferenceNo,
		&p.Notes,
	)
	if err != nil {
		return domain.Payment{}, err
	}
	p.Method = domain.PaymentMethod(method)
	return p, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, &domain.NotFoundError{Entity: "payment", ID: id}
	}
	return p, err
}

func (r *PaymentRepository) List(ctx context.Context, f PaymentsFilter) ([]domain.Payment, error) {
	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.Method != nil && *f.Method != "" {
		where = append(where, fmt.Sprintf("method = $%d", i))
		args = append(args, *f.Method)
		i++
	}
	if f.PaidAtFrom != nil {
		where = append(where, fmt.Sprintf("paid_at >= $%d", i))
		args = append(args, *f.PaidAtFrom)
		i++
	}
	if f.PaidAtTo != nil {
		where = append(where, fmt.Sprintf("paid_at <= $%d", i))
		args = append(args, *f.PaidAtTo)
		i++
	}
	if f.StudentFeeID != nil && *f.StudentFeeID != "" {
		where = append(where, fmt.Sprintf("student_fee_id = $%d", i))
		args = append(args, *f.StudentFeeID)
		i++
	}
	if f.StudentID != nil && *f.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", i))
		args = append(args, *f.StudentID)
		i++
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + strings.Join(where, " AND ") + ` ORDER BY paid_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) ListByStudentFee(ctx context.Context, studentFeeID string) ([]domain.Payment, error) {
	return r.List(ctx, PaymentsFilter{StudentFeeID: &studentFeeID})
}

// CreateWithFee inserts the payment and persists the recomputed fee
// balance as one transaction. Either both land or neither does; a stale
// fee version rolls the payment back and surfaces domain.ErrStaleFee.
func (r *PaymentRepository) CreateWithFee(ctx context.Context, p domain.Payment, f domain.StudentFee) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, student_fee_id, student_id, payer_user_id, method, amount, paid_at, reference_no, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.StudentFeeID, p.StudentID, p.PayerUserID, string(p.Method), p.Amount, p.PaidAt, p.ReferenceNo, p.Notes,
	)
	if err != nil {
		return err
	}

	if err := updateFeeBalance(ctx, tx, f); err != nil {
		return err
	}

	return tx.Commit()
}

// ReverseWithFee persists the rolled-back fee balance and then deletes
// the payment, in that order, inside one transaction: the fee reaches its
// consistent state before the payment row disappears.
func (r *PaymentRepository) ReverseWithFee(ctx context.Context, paymentID string, f domain.StudentFee) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateFeeBalance(ctx, tx, f); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: "payment", ID: paymentID}
	}

	return tx.Commit()
}

func (r *PaymentRepository) DeleteByStudentFee(ctx context.Context, studentFeeID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE student_fee_id = $1`, studentFeeID)
	return err
}
