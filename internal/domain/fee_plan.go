package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FeePlan defines fee line items for one (course, academic year) pair.
// Unique per pair. StudentFee records copy the line items at assignment
// time, so editing a plan never changes fees already assigned from it.
type FeePlan struct {
	ID           string
	Course       string
	AcademicYear string // "YYYY-YYYY"

	Tuition float64
	Hostel  float64
	Library float64
	Lab     float64
	Sports  float64

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

func (p FeePlan) Total() float64 {
	return p.Tuition + p.Hostel + p.Library + p.Lab + p.Sports
}

// ParseAcademicYear splits a "YYYY-YYYY" label into its start and end
// years. Whitespace around either year is tolerated.
func ParseAcademicYear(s string) (start, end int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("academic year %q is not in YYYY-YYYY format", s)
	}
	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("academic year %q is not in YYYY-YYYY format", s)
	}
	end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("academic year %q is not in YYYY-YYYY format", s)
	}
	return start, end, nil
}
