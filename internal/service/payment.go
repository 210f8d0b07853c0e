package service

import (
	"context"
	"log"
	"time"

	"feedesk/internal/domain"
	"feedesk/internal/repository"

	"github.com/google/uuid"
)

type PaymentStore interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	List(ctx context.Context, f repository.PaymentsFilter) ([]domain.Payment, error)
	ListByStudentFee(ctx context.Context, studentFeeID string) ([]domain.Payment, error)
	CreateWithFee(ctx context.Context, p domain.Payment, f domain.StudentFee) error
	ReverseWithFee(ctx context.Context, paymentID string, f domain.StudentFee) error
}

type PaymentFeeStore interface {
	GetByID(ctx context.Context, id string) (domain.StudentFee, error)
}

// PaymentService is the reconciliation engine: it applies and reverses
// payments against student fees, keeping amountPaid and status consistent
// with the surviving payment rows.
type PaymentService struct {
	payments PaymentStore
	fees     PaymentFeeStore
}

func NewPaymentService(payments PaymentStore, fees PaymentFeeStore) *PaymentService {
	return &PaymentService{payments: payments, fees: fees}
}

// RecordPayment creates a payment against a student fee and moves the fee
// forward through the balance lifecycle. The payment insert and the fee
// update land in one transaction; a concurrent balance write surfaces as
// domain.ErrStaleFee and nothing is persisted.
func (s *PaymentService) RecordPayment(ctx context.Context, payerUserID, studentFeeID string, method domain.PaymentMethod, amount float64, referenceNo, notes string) (domain.Payment, error) {
	amount = domain.RoundMoney(amount)
	if amount <= 0 {
		return domain.Payment{}, &domain.ValidationError{Message: "payment amount must be greater than 0"}
	}

	fee, err := s.fees.GetByID(ctx, studentFeeID)
	if err != nil {
		return domain.Payment{}, err
	}

	p := domain.Payment{
		ID:           uuid.NewString(),
		StudentFeeID: fee.ID,
		StudentID:    fee.StudentID,
		PayerUserID:  payerUserID,
		Method:       method,
		Amount:       amount,
		PaidAt:       time.Now(),
		ReferenceNo:  referenceNo,
		Notes:        notes,
	}

	fee.AmountPaid = domain.RoundMoney(fee.AmountPaid + amount)
	fee.Status = domain.StatusFor(fee.AmountPaid, fee.AmountAssigned)

	if err := s.payments.CreateWithFee(ctx, p, fee); err != nil {
		return domain.Payment{}, err
	}

	log.Printf("[PAYMENTS] recorded %.2f against fee %s (paid %.2f of %.2f, %s)",
		amount, fee.ID, fee.AmountPaid, fee.AmountAssigned, fee.Status)
	return p, nil
}

// Reverse rolls a payment back out of its student fee and deletes the
// payment row. The fee is clamped at zero paid and re-derives its status,
// so a fully reversed fee returns to PENDING.
func (s *PaymentService) Reverse(ctx context.Context, paymentID string) error {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	fee, err := s.fees.GetByID(ctx, p.StudentFeeID)
	if err != nil {
		// The fee vanished under an existing payment. Surface it instead
		// of deleting the payment and losing the evidence.
		return err
	}

	fee.AmountPaid = domain.RoundMoney(fee.AmountPaid - p.Amount)
	if fee.AmountPaid < 0 {
		fee.AmountPaid = 0
	}
	fee.Status = domain.StatusFor(fee.AmountPaid, fee.AmountAssigned)

	if err := s.payments.ReverseWithFee(ctx, p.ID, fee); err != nil {
		return err
	}

	log.Printf("[PAYMENTS] reversed %s (%.2f) on fee %s (paid %.2f, %s)",
		p.ID, p.Amount, fee.ID, fee.AmountPaid, fee.Status)
	return nil
}

func (s *PaymentService) Get(ctx context.Context, id string) (domain.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) ListByStudentFee(ctx context.Context, studentFeeID string) ([]domain.Payment, error) {
	return s.payments.ListByStudentFee(ctx, studentFeeID)
}

func (s *PaymentService) ListByStudent(ctx context.Context, studentID string) ([]domain.Payment, error) {
	return s.payments.List(ctx, repository.PaymentsFilter{StudentID: &studentID})
}

// List dispatches to the narrowest predicate available: method plus date
// range wins over method alone, which wins over range alone.
func (s *PaymentService) List(ctx context.Context, method *domain.PaymentMethod, from, to *time.Time) ([]domain.Payment, error) {
	var f repository.PaymentsFilter
	switch {
	case method != nil && from != nil && to != nil:
		m := string(*method)
		f = repository.PaymentsFilter{Method: &m, PaidAtFrom: from, PaidAtTo: to}
	case method != nil:
		m := string(*method)
		f = repository.PaymentsFilter{Method: &m}
	case from != nil && to != nil:
		f = repository.PaymentsFilter{PaidAtFrom: from, PaidAtTo: to}
	default:
		f = repository.PaymentsFilter{}
	}
	return s.payments.List(ctx, f)
}
