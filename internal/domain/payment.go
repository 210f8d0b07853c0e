package domain

import (
	"fmt"
	"math"
	"time"
)

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodCard       PaymentMethod = "CARD"
	MethodUPI        PaymentMethod = "UPI"
	MethodNetBanking PaymentMethod = "NET_BANKING"
	MethodOther      PaymentMethod = "OTHER"
)

// ParsePaymentMethod validates a wire value against the closed method set.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCash, MethodCard, MethodUPI, MethodNetBanking, MethodOther:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type Payment struct {
	ID           string
	StudentFeeID string
	StudentID    string
	PayerUserID  string

	Method PaymentMethod
	Amount float64
	PaidAt time.Time

	ReferenceNo string
	Notes       string
}

// RoundMoney truncates monetary noise down to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
