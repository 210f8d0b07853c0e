package domain

import "time"

type FeeStatus string

const (
	FeeStatusPending FeeStatus = "PENDING"
	FeeStatusPartial FeeStatus = "PARTIAL"
	FeeStatusPaid    FeeStatus = "PAID"
)

// statusEpsilon keeps the paid-vs-assigned comparison stable against
// float accumulation; amounts are rounded to cents at intake, so half a
// cent is safely below any real difference.
const statusEpsilon = 0.005

// StudentFee is a billable record created by binding a FeePlan to one of
// a student's enrollments. It carries its own copy of the plan's line
// items, so the plan can change or disappear without touching it.
type StudentFee struct {
	ID        string
	StudentID string
	FeePlanID string

	// Course is copied from the matched enrollment, not the plan; the two
	// agree case-insensitively but may differ in casing.
	Course       string
	AcademicYear string

	Tuition float64
	Hostel  float64
	Library float64
	Lab     float64
	Sports  float64

	AmountAssigned float64
	AmountPaid     float64
	Status         FeeStatus

	AssignedAt time.Time
	DueDate    time.Time

	// Version guards the read-modify-write of AmountPaid; every persisted
	// update bumps it and a stale write must fail with ErrStaleFee.
	Version int64
}

func (f StudentFee) Balance() float64 {
	return f.AmountAssigned - f.AmountPaid
}

// StatusFor derives the fee status from the paid and assigned amounts
// alone. Recomputing it from the same pair always yields the same result,
// whatever sequence of payments and reversals led there.
func StatusFor(amountPaid, amountAssigned float64) FeeStatus {
	switch {
	case amountPaid <= statusEpsilon:
		return FeeStatusPending
	case amountPaid >= amountAssigned-statusEpsilon:
		return FeeStatusPaid
	default:
		return FeeStatusPartial
	}
}
